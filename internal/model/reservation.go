package model

import "time"

// Reservation lifecycle statuses. Only the first three occupy the wash bay;
// cancelled, completed and no-show bookings never block a slot.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCancelled  = "cancelled"
	StatusCompleted  = "completed"
	StatusNoShow     = "no_show"
)

// ActiveStatuses lists the statuses that participate in conflict checks.
var ActiveStatuses = []string{StatusPending, StatusConfirmed, StatusInProgress}

// ActiveReservation is the read-only projection of an existing booking used
// for conflict detection. The engine never mutates it.
type ActiveReservation struct {
	ID         int64        `json:"id"`
	CustomerID int64        `json:"customer_id"`
	Interval   TimeInterval `json:"interval"`
}

// ClosureKind classifies why a date is closed.
type ClosureKind string

const (
	ClosureWeekend       ClosureKind = "weekend"
	ClosurePublicHoliday ClosureKind = "public_holiday"
	ClosureManual        ClosureKind = "manual"
)

// ClosureRecord marks a whole calendar date as closed for business.
// Weekend and holiday entries are computed; manual entries come from storage.
type ClosureRecord struct {
	Date   time.Time   `json:"date"`
	Reason string      `json:"reason"`
	Kind   ClosureKind `json:"kind"`
}

// ExplicitSlot overrides the implicit half-hour grid for one date. When any
// explicit slots exist for a date, only they are considered as candidates.
type ExplicitSlot struct {
	Date        time.Time `json:"date"`
	Start       TimeOfDay `json:"start"`
	End         TimeOfDay `json:"end"`
	IsAvailable bool      `json:"is_available"`
	IsHoliday   bool      `json:"is_holiday"`
}

// ScheduleSettings is the per-request snapshot read from the settings store.
type ScheduleSettings struct {
	Hours           BusinessHours
	MinAdvanceHours int
}
