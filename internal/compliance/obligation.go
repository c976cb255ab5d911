package compliance

import "time"

// Classification buckets an obligation by how close it is to its deadline.
type Classification string

const (
	ClassCurrent Classification = "current"
	ClassDueSoon Classification = "due_soon"
	ClassOverdue Classification = "overdue"
)

// Severity grades an obligation for display and prioritization.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Obligation is one classified maintenance or document deadline for a
// vehicle. It is recomputed from scratch on every evaluation pass and never
// persisted; (VehicleID, Category) is its only identity.
type Obligation struct {
	VehicleID string         `json:"vehicle_id"`
	Category  Category       `json:"category"`
	Basis     Basis          `json:"basis"`
	Title     string         `json:"title"`

	// Mileage basis. RemainingKm is signed; negative means overdue and
	// zero means due exactly now, so it must survive serialization.
	NextDueMileage int `json:"next_due_mileage,omitempty"`
	RemainingKm    int `json:"remaining_km"`

	// Date basis. DaysRemaining is signed; zero or negative means overdue.
	NextDueDate   *time.Time `json:"next_due_date,omitempty"`
	DaysRemaining int        `json:"days_remaining"`

	// EstimatedDays approximates RemainingKm as days of typical use for
	// display. It is a rough figure, not a forecast.
	EstimatedDays int `json:"estimated_days,omitempty"`

	// Reference carries the document number for license/insurance
	// obligations so notification payloads can show it.
	Reference string `json:"reference,omitempty"`

	Classification Classification `json:"classification"`
	Severity       Severity       `json:"severity"`
}

// Actionable filters out "current" obligations, leaving only the overdue and
// due-soon items most screens and the scheduler care about.
func Actionable(obligations []Obligation) []Obligation {
	out := make([]Obligation, 0, len(obligations))
	for _, o := range obligations {
		if o.Classification != ClassCurrent {
			out = append(out, o)
		}
	}
	return out
}

// Overdue filters to overdue obligations only.
func Overdue(obligations []Obligation) []Obligation {
	out := make([]Obligation, 0, len(obligations))
	for _, o := range obligations {
		if o.Classification == ClassOverdue {
			out = append(out, o)
		}
	}
	return out
}
