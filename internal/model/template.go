package model

import "time"

// Frequency of a recurring contract template.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// DefaultHorizonDays is used when neither the template nor the caller
// specifies a generation horizon.
const DefaultHorizonDays = 30

// ServiceLine is one configured service on a template vehicle.
type ServiceLine struct {
	ServiceID       int64   `json:"service_id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	UnitPrice       float64 `json:"unit_price"`
	Quantity        int     `json:"quantity"`
}

// VehicleLine groups the services booked for one contract vehicle.
type VehicleLine struct {
	VehicleID    int64         `json:"vehicle_id"`
	Registration string        `json:"registration"`
	Services     []ServiceLine `json:"services"`
}

// Template is a recurring-booking rule owned by a business customer. It is
// expanded into concrete reservations over a rolling horizon; the only field
// the engine mutates is LastGeneratedAt.
type Template struct {
	ID              int64
	CustomerID      int64
	CustomerName    string
	Active          bool
	Frequency       Frequency
	DayOfWeek       time.Weekday // weekly templates
	DayOfMonth      int          // monthly templates, 1-31
	TimeOfDay       TimeOfDay
	HorizonDays     int
	DiscountPercent float64
	LastGeneratedAt *time.Time
	Vehicles        []VehicleLine
}

// TotalDurationMinutes sums the configured service durations across all
// vehicle lines.
func (t *Template) TotalDurationMinutes() int {
	total := 0
	for _, v := range t.Vehicles {
		for _, s := range v.Services {
			total += s.DurationMinutes
		}
	}
	return total
}

// GeneratedReservation is the output of template expansion, handed to the
// booking-creation collaborator.
type GeneratedReservation struct {
	ID            string        `json:"id"`
	TemplateID    int64         `json:"template_id"`
	CustomerID    int64         `json:"customer_id"`
	Date          time.Time     `json:"date"`
	Interval      TimeInterval  `json:"interval"`
	VehicleLines  []VehicleLine `json:"vehicle_lines"`
	TotalDuration int           `json:"total_duration"`
	TotalPrice    float64       `json:"total_price"`
}
