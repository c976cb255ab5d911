package compliance

import (
	"math"
	"time"

	"github.com/motominder/motominder/internal/models"
)

// Thresholds for classification. The overdue cutoffs are absolute constants
// carried over from the original reminder policy; they are not scaled to the
// interval of each category.
const (
	dueSoonKm           = 1000
	criticalOverdueKm   = 2000
	dueSoonDays         = 30
	criticalOverdueDays = 30

	// Assumed average daily use, for converting a km distance into an
	// approximate number of days for display.
	kmPerDay = 50

	// Document expiry tiers.
	docUrgentDays  = 7
	docRenewalDays = 30
)

// EvaluateVehicle classifies every maintenance category and compliance
// document for one vehicle as of the given time. It is pure and
// deterministic: the same inputs always produce the same output, and it
// never fails. Missing mileage fields are treated as 0; date categories with
// no recorded date and document types with no record are skipped.
//
// Output order is fixed: mileage categories, then date categories, then
// license and insurance.
func EvaluateVehicle(v models.Vehicle, docs []models.ComplianceDocument, asOf time.Time) []Obligation {
	obligations := make([]Obligation, 0, len(MileageServices)+len(DateServices)+len(DocumentCategories))

	for _, def := range MileageServices {
		obligations = append(obligations, evaluateMileage(v, def))
	}

	for _, def := range DateServices {
		last := lastServiceDate(v, def.Category)
		if last == nil {
			continue
		}
		obligations = append(obligations, evaluateDate(v, def, *last, asOf))
	}

	for _, category := range DocumentCategories {
		doc := firstDocument(docs, string(category))
		if doc == nil {
			continue
		}
		if o, ok := evaluateDocument(v, category, doc, asOf); ok {
			obligations = append(obligations, o)
		}
	}

	return obligations
}

// evaluateMileage classifies one odometer-tracked category.
func evaluateMileage(v models.Vehicle, def ServiceDefinition) Obligation {
	nextDue := lastServiceMileage(v, def.Category) + def.IntervalKm
	remaining := nextDue - v.CurrentMileage

	o := Obligation{
		VehicleID:      v.ID.Hex(),
		Category:       def.Category,
		Basis:          BasisMileage,
		Title:          def.Title,
		NextDueMileage: nextDue,
		RemainingKm:    remaining,
		EstimatedDays:  estimateDays(remaining),
	}

	switch {
	case remaining <= 0:
		o.Classification = ClassOverdue
		if -remaining > criticalOverdueKm {
			o.Severity = SeverityCritical
		} else {
			o.Severity = SeverityHigh
		}
	case remaining <= dueSoonKm:
		o.Classification = ClassDueSoon
		o.Severity = SeverityMedium
	default:
		o.Classification = ClassCurrent
		o.Severity = SeverityLow
	}
	return o
}

// evaluateDate classifies one calendar-tracked maintenance category.
func evaluateDate(v models.Vehicle, def ServiceDefinition, last time.Time, asOf time.Time) Obligation {
	nextDue := last.AddDate(0, def.IntervalMonths, 0)
	days := daysUntil(nextDue, asOf)

	o := Obligation{
		VehicleID:     v.ID.Hex(),
		Category:      def.Category,
		Basis:         BasisDate,
		Title:         def.Title,
		NextDueDate:   &nextDue,
		DaysRemaining: days,
	}

	switch {
	case days <= 0:
		o.Classification = ClassOverdue
		if -days > criticalOverdueDays {
			o.Severity = SeverityCritical
		} else {
			o.Severity = SeverityHigh
		}
	case days <= dueSoonDays:
		o.Classification = ClassDueSoon
		o.Severity = SeverityMedium
	default:
		o.Classification = ClassCurrent
		o.Severity = SeverityLow
	}
	return o
}

// evaluateDocument classifies a license or insurance document. Documents
// more than 30 days from expiry produce no obligation at all; they are
// suppressed rather than reported as current.
func evaluateDocument(v models.Vehicle, category Category, doc *models.ComplianceDocument, asOf time.Time) (Obligation, bool) {
	expire := doc.ExpireDate
	days := daysUntil(expire, asOf)

	if days > docRenewalDays {
		return Obligation{}, false
	}

	o := Obligation{
		VehicleID:     v.ID.Hex(),
		Category:      category,
		Basis:         BasisDate,
		Title:         documentTitle(category),
		NextDueDate:   &expire,
		DaysRemaining: days,
		Reference:     doc.Reference(),
	}

	switch {
	case days <= 0:
		o.Classification = ClassOverdue
		o.Severity = SeverityCritical
	case days <= docUrgentDays:
		o.Classification = ClassDueSoon
		o.Severity = SeverityHigh
	default:
		o.Classification = ClassDueSoon
		o.Severity = SeverityMedium
	}
	return o, true
}

// lastServiceMileage returns the recorded last-service odometer reading for
// a mileage category; 0 means never recorded.
func lastServiceMileage(v models.Vehicle, c Category) int {
	switch c {
	case CategoryOilService:
		return v.OilServiceMileage
	case CategoryFullService:
		return v.FullServiceMileage
	case CategoryTyreChange:
		return v.TyreChangeMileage
	default:
		return 0
	}
}

// lastServiceDate returns the recorded date for a date category, or nil if
// the service was never recorded.
func lastServiceDate(v models.Vehicle, c Category) *time.Time {
	switch c {
	case CategoryBrakeOil:
		return v.BrakeOilDate
	case CategoryBatteryCheck:
		return v.BatteryCheckDate
	default:
		return nil
	}
}

// firstDocument returns the first document of the given type in store
// iteration order, or nil. When a vehicle somehow has several documents of
// one type, only the first is evaluated.
func firstDocument(docs []models.ComplianceDocument, docType string) *models.ComplianceDocument {
	for i := range docs {
		if docs[i].DocType == docType {
			return &docs[i]
		}
	}
	return nil
}

// daysUntil returns the signed number of days from asOf to t, rounded up.
func daysUntil(t, asOf time.Time) int {
	return int(math.Ceil(t.Sub(asOf).Hours() / 24))
}

// estimateDays converts a km distance to an approximate day count assuming
// average daily use.
func estimateDays(remainingKm int) int {
	abs := remainingKm
	if abs < 0 {
		abs = -abs
	}
	return int(math.Ceil(float64(abs) / kmPerDay))
}

func documentTitle(c Category) string {
	if c == CategoryInsurance {
		return "Insurance"
	}
	return "License"
}
