package compliance

// Category identifies a maintenance service or compliance document tracked
// per vehicle.
type Category string

const (
	CategoryOilService   Category = "oil_service"
	CategoryFullService  Category = "full_service"
	CategoryTyreChange   Category = "tyre_change"
	CategoryBrakeOil     Category = "brake_oil"
	CategoryBatteryCheck Category = "battery_check"
	CategoryLicense      Category = "license"
	CategoryInsurance    Category = "insurance"
)

// Basis says whether a category is tracked by odometer or by calendar.
type Basis string

const (
	BasisMileage Basis = "mileage"
	BasisDate    Basis = "date"
)

// ServiceDefinition is the static configuration for one maintenance
// category. Intervals are constants, not user input, and are not validated.
type ServiceDefinition struct {
	Category       Category
	Basis          Basis
	IntervalKm     int
	IntervalMonths int
	Title          string
	Icon           string
	Color          string
}

// MileageServices are the odometer-tracked categories, in evaluation order.
var MileageServices = []ServiceDefinition{
	{Category: CategoryOilService, Basis: BasisMileage, IntervalKm: 5000, Title: "Oil Service", Icon: "oil-can", Color: "#f59e0b"},
	{Category: CategoryFullService, Basis: BasisMileage, IntervalKm: 10000, Title: "Full Service", Icon: "wrench", Color: "#3b82f6"},
	{Category: CategoryTyreChange, Basis: BasisMileage, IntervalKm: 40000, Title: "Tyre Change", Icon: "tire", Color: "#10b981"},
}

// DateServices are the calendar-tracked categories, in evaluation order.
var DateServices = []ServiceDefinition{
	{Category: CategoryBrakeOil, Basis: BasisDate, IntervalMonths: 24, Title: "Brake Oil", Icon: "brake-warning", Color: "#ef4444"},
	{Category: CategoryBatteryCheck, Basis: BasisDate, IntervalMonths: 6, Title: "Battery Check", Icon: "car-battery", Color: "#8b5cf6"},
}

// DocumentCategories maps a document type to its category, in evaluation
// order relative to each other.
var DocumentCategories = []Category{CategoryLicense, CategoryInsurance}

// Definition returns the static definition for a maintenance category, or
// nil for document categories and unknown values.
func Definition(c Category) *ServiceDefinition {
	for i := range MileageServices {
		if MileageServices[i].Category == c {
			return &MileageServices[i]
		}
	}
	for i := range DateServices {
		if DateServices[i].Category == c {
			return &DateServices[i]
		}
	}
	return nil
}

// IsMaintenance reports whether the category is one of the five service
// categories (as opposed to a compliance document).
func IsMaintenance(c Category) bool {
	return Definition(c) != nil
}
