package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Vehicle represents a vehicle owned by a single user, together with the
// odometer and last-service markers the compliance evaluator reads.
type Vehicle struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID string             `bson:"owner_id" json:"owner_id"`
	Brand   string             `bson:"brand" json:"brand"`
	Model   string             `bson:"model" json:"model"`
	Type    string             `bson:"type" json:"type"` // "car", "motorcycle", "van", ...
	Plate   string             `bson:"plate" json:"plate"`

	// CurrentMileage is externally supplied and trusted as-is. A missing
	// value decodes to 0, which the evaluator treats as "odometer at zero".
	CurrentMileage int `bson:"current_mileage" json:"current_mileage"`

	// Last-performed markers for the mileage-based services. 0 means the
	// service was never recorded.
	OilServiceMileage  int `bson:"oil_service_mileage" json:"oil_service_mileage"`
	FullServiceMileage int `bson:"full_service_mileage" json:"full_service_mileage"`
	TyreChangeMileage  int `bson:"tyre_change_mileage" json:"tyre_change_mileage"`

	// Dates the mileage-based services were last confirmed. Informational;
	// classification for those categories is driven by mileage alone.
	OilServiceDate  *time.Time `bson:"oil_service_date,omitempty" json:"oil_service_date,omitempty"`
	FullServiceDate *time.Time `bson:"full_service_date,omitempty" json:"full_service_date,omitempty"`
	TyreChangeDate  *time.Time `bson:"tyre_change_date,omitempty" json:"tyre_change_date,omitempty"`

	// Last-performed markers for the date-based services. A nil date means
	// the service was never recorded and no obligation exists for it.
	BrakeOilDate     *time.Time `bson:"brake_oil_date,omitempty" json:"brake_oil_date,omitempty"`
	BatteryCheckDate *time.Time `bson:"battery_check_date,omitempty" json:"battery_check_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
