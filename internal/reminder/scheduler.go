package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/motominder/motominder/internal/compliance"
	"github.com/motominder/motominder/internal/models"
)

const (
	// Cap on individual overdue reminders per batch, to avoid
	// notification fatigue.
	maxIndividualReminders = 3

	// Local time the daily overdue reminders repeat at.
	dailyReminderTime = "09:00"
)

// documentReminderOffsets are the days-before-expiry marks a document
// reminder is scheduled at. Marks already in the past at scheduling time are
// skipped, not fired immediately.
var documentReminderOffsets = []int{30, 14, 7, 3, 1}

// Scheduler converts classified obligations and upcoming document expiries
// into reminder registrations. Every run is a full replace: all previously
// registered reminders for the owner are cancelled first, then the current
// set is registered from scratch.
type Scheduler struct {
	notifier Notifier
}

// NewScheduler creates a scheduler over the given notification service.
func NewScheduler(notifier Notifier) *Scheduler {
	return &Scheduler{notifier: notifier}
}

// Reschedule replaces the owner's reminders with a fresh set derived from
// the current obligations and documents. A single failed registration is
// logged and skipped; it never aborts the batch. Missing notification
// permission makes the whole call a silent no-op.
func (s *Scheduler) Reschedule(ctx context.Context, ownerID string, obligations []compliance.Obligation, docs []models.ComplianceDocument, now time.Time) error {
	if err := s.notifier.CancelAll(ctx, ownerID); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return nil
		}
		// Cancellation is best-effort; registration still proceeds.
		log.WithError(err).WithField("owner_id", ownerID).Warn("failed to cancel existing reminders")
	}

	if denied := s.scheduleOverdue(ctx, ownerID, obligations); denied {
		return nil
	}
	s.scheduleDocumentMarks(ctx, ownerID, docs, now)
	return nil
}

// scheduleOverdue registers the overdue-maintenance reminders: one summary
// fired immediately plus up to three daily-repeating individual reminders.
// Returns true when the notifier reported missing permission.
func (s *Scheduler) scheduleOverdue(ctx context.Context, ownerID string, obligations []compliance.Obligation) bool {
	var overdue []compliance.Obligation
	for _, o := range obligations {
		if o.Classification == compliance.ClassOverdue && compliance.IsMaintenance(o.Category) {
			overdue = append(overdue, o)
		}
	}
	if len(overdue) == 0 {
		return false
	}

	summary := Payload{Category: "summary", Count: len(overdue)}
	body := fmt.Sprintf("You have %d overdue services", len(overdue))
	if len(overdue) == 1 {
		body = "You have 1 overdue service"
	}
	if _, err := s.notifier.ScheduleImmediate(ctx, ownerID, "Overdue services", body, summary); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return true
		}
		log.WithError(err).WithField("owner_id", ownerID).Warn("failed to schedule overdue summary")
	}

	for i, o := range overdue {
		if i >= maxIndividualReminders {
			break
		}
		payload := Payload{
			Category:  string(o.Category),
			VehicleID: o.VehicleID,
			DueDate:   o.NextDueDate,
			Urgency:   string(o.Severity),
		}
		if _, err := s.notifier.ScheduleDailyRepeating(ctx, ownerID, o.Title+" overdue", overdueBody(o), payload, dailyReminderTime); err != nil {
			if errors.Is(err, ErrPermissionDenied) {
				return true
			}
			log.WithError(err).WithFields(log.Fields{
				"owner_id":   ownerID,
				"vehicle_id": o.VehicleID,
				"category":   o.Category,
			}).Warn("failed to schedule overdue reminder")
		}
	}
	return false
}

// scheduleDocumentMarks registers the fixed look-ahead reminders for every
// document with a future expiry: one per remaining {30,14,7,3,1}-day mark,
// plus an "expired" reminder the day after expiry. docs spans all of the
// owner's vehicles, so only the first document of each type per vehicle is
// considered.
func (s *Scheduler) scheduleDocumentMarks(ctx context.Context, ownerID string, docs []models.ComplianceDocument, now time.Time) {
	type docKey struct {
		vehicleID string
		docType   string
	}
	seen := make(map[docKey]bool)
	for i := range docs {
		doc := &docs[i]
		key := docKey{vehicleID: doc.VehicleID, docType: doc.DocType}
		if !models.IsValidDocType(doc.DocType) || seen[key] {
			continue
		}
		seen[key] = true

		if !doc.ExpireDate.After(now) {
			continue
		}

		for _, offset := range documentReminderOffsets {
			when := doc.ExpireDate.AddDate(0, 0, -offset)
			if !when.After(now) {
				continue
			}
			expire := doc.ExpireDate
			payload := Payload{
				Category:  doc.DocType,
				VehicleID: doc.VehicleID,
				DueDate:   &expire,
				Urgency:   markUrgency(offset),
				Reference: doc.Reference(),
			}
			title := fmt.Sprintf("%s expiring", docTitle(doc.DocType))
			body := fmt.Sprintf("%s for your vehicle expires in %d days", docTitle(doc.DocType), offset)
			if offset == 1 {
				body = fmt.Sprintf("%s for your vehicle expires tomorrow", docTitle(doc.DocType))
			}
			if _, err := s.notifier.ScheduleAt(ctx, ownerID, title, body, payload, when); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"owner_id":   ownerID,
					"vehicle_id": doc.VehicleID,
					"doc_type":   doc.DocType,
				}).Warn("failed to schedule expiry reminder")
			}
		}

		expire := doc.ExpireDate
		payload := Payload{
			Category:  doc.DocType,
			VehicleID: doc.VehicleID,
			DueDate:   &expire,
			Urgency:   "expired",
			Reference: doc.Reference(),
		}
		when := doc.ExpireDate.AddDate(0, 0, 1)
		title := fmt.Sprintf("%s expired", docTitle(doc.DocType))
		body := fmt.Sprintf("%s for your vehicle has expired", docTitle(doc.DocType))
		if _, err := s.notifier.ScheduleAt(ctx, ownerID, title, body, payload, when); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"owner_id":   ownerID,
				"vehicle_id": doc.VehicleID,
				"doc_type":   doc.DocType,
			}).Warn("failed to schedule expired reminder")
		}
	}
}

// markUrgency is the display tier for a days-before-expiry mark. This is a
// separate vocabulary from obligation severity: it depends only on which
// mark the reminder belongs to.
func markUrgency(daysBefore int) string {
	switch daysBefore {
	case 1:
		return "urgent"
	case 3, 7:
		return "high"
	case 14:
		return "medium"
	default:
		return "low"
	}
}

func overdueBody(o compliance.Obligation) string {
	if o.Basis == compliance.BasisMileage {
		return fmt.Sprintf("%s is overdue by %d km", o.Title, -o.RemainingKm)
	}
	return fmt.Sprintf("%s is overdue by %d days", o.Title, -o.DaysRemaining)
}

func docTitle(docType string) string {
	if docType == models.DocTypeInsurance {
		return "Insurance"
	}
	return "License"
}
