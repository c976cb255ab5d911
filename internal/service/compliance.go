package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/motominder/motominder/internal/compliance"
	"github.com/motominder/motominder/internal/db"
	"github.com/motominder/motominder/internal/models"
	"github.com/motominder/motominder/internal/reminder"
)

var (
	ErrMissingOwner     = errors.New("owner id is required")
	ErrUnknownCategory  = errors.New("unknown maintenance category")
	ErrDocumentCategory = errors.New("documents are renewed by updating the document, not marked done")
	ErrNegativeMileage  = errors.New("mileage must not be negative")
)

// ComplianceService runs the evaluate-and-reschedule pipeline over an
// owner's vehicles and applies mark-as-done mutations. State is never
// cached: every pass re-reads the store and recomputes obligations from
// scratch.
type ComplianceService struct {
	vehicles  db.VehicleCollection
	documents db.DocumentCollection
	scheduler *reminder.Scheduler
}

// NewComplianceService wires the pipeline over the given store and
// scheduler.
func NewComplianceService(vehicles db.VehicleCollection, documents db.DocumentCollection, scheduler *reminder.Scheduler) *ComplianceService {
	return &ComplianceService{
		vehicles:  vehicles,
		documents: documents,
		scheduler: scheduler,
	}
}

// RefreshOwner evaluates every vehicle the owner has, replaces the owner's
// reminders with a fresh set, and returns the aggregated obligations in
// vehicle iteration order. A failure on one vehicle is logged and skipped;
// the remaining vehicles still evaluate.
func (s *ComplianceService) RefreshOwner(ctx context.Context, ownerID string, asOf time.Time) ([]compliance.Obligation, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	vehicles, err := s.vehicles.ListVehicles(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}

	var obligations []compliance.Obligation
	var docs []models.ComplianceDocument
	for _, v := range vehicles {
		vehicleDocs, err := s.documents.ListDocuments(ctx, ownerID, v.ID.Hex(), "")
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"owner_id":   ownerID,
				"vehicle_id": v.ID.Hex(),
			}).Error("failed to load documents, skipping vehicle")
			continue
		}
		obligations = append(obligations, compliance.EvaluateVehicle(v, vehicleDocs, asOf)...)
		docs = append(docs, vehicleDocs...)
	}

	if err := s.scheduler.Reschedule(ctx, ownerID, obligations, docs, asOf); err != nil {
		// Reminder registration never blocks the data path.
		log.WithError(err).WithField("owner_id", ownerID).Error("failed to reschedule reminders")
	}
	return obligations, nil
}

// EvaluateVehicle re-reads one vehicle and returns its current obligations.
func (s *ComplianceService) EvaluateVehicle(ctx context.Context, ownerID, vehicleID string, asOf time.Time) ([]compliance.Obligation, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	v, err := s.vehicles.FindVehicleByID(ctx, ownerID, vehicleID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListDocuments(ctx, ownerID, vehicleID, "")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return compliance.EvaluateVehicle(*v, docs, asOf), nil
}

// MarkDone records a maintenance category as just performed. For mileage
// categories the last-service marker resets to the vehicle's mileage as it
// is now, not as it was when the obligation was computed; mileage only
// increases, so a stale classification is harmless. The mutation is a
// partial update, and the owner's obligations and reminders are refreshed
// before returning.
func (s *ComplianceService) MarkDone(ctx context.Context, ownerID, vehicleID string, category compliance.Category, now time.Time) ([]compliance.Obligation, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	switch category {
	case compliance.CategoryLicense, compliance.CategoryInsurance:
		return nil, ErrDocumentCategory
	}
	def := compliance.Definition(category)
	if def == nil {
		return nil, ErrUnknownCategory
	}

	v, err := s.vehicles.FindVehicleByID(ctx, ownerID, vehicleID)
	if err != nil {
		return nil, err
	}

	fields := markDoneFields(category, v.CurrentMileage, now)
	if err := s.vehicles.UpdateVehicleFields(ctx, ownerID, vehicleID, fields); err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}

	// Stale obligations must never outlive the mutation: recompute for
	// the whole owner so the scheduler sees the new state too.
	return s.RefreshOwner(ctx, ownerID, now)
}

// markDoneFields builds the partial update for one category. Mileage
// categories reset both their mileage marker and their informational date;
// date categories reset only the date.
func markDoneFields(category compliance.Category, currentMileage int, now time.Time) bson.M {
	switch category {
	case compliance.CategoryOilService:
		return bson.M{"oil_service_mileage": currentMileage, "oil_service_date": now}
	case compliance.CategoryFullService:
		return bson.M{"full_service_mileage": currentMileage, "full_service_date": now}
	case compliance.CategoryTyreChange:
		return bson.M{"tyre_change_mileage": currentMileage, "tyre_change_date": now}
	case compliance.CategoryBrakeOil:
		return bson.M{"brake_oil_date": now}
	case compliance.CategoryBatteryCheck:
		return bson.M{"battery_check_date": now}
	default:
		return bson.M{}
	}
}

// UpdateMileage records a new odometer reading. The value is externally
// supplied and trusted as-is; the store keeps the latest write.
func (s *ComplianceService) UpdateMileage(ctx context.Context, ownerID, vehicleID string, mileage int) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	if mileage < 0 {
		return ErrNegativeMileage
	}
	return s.vehicles.UpdateVehicleFields(ctx, ownerID, vehicleID, bson.M{"current_mileage": mileage})
}
