package application

import (
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// RoomType classifies a room for catalog display.
type RoomType string

const (
	// RoomTypeLaboratory marks a lab room.
	RoomTypeLaboratory RoomType = "laboratorio"
	// RoomTypeAuditorium marks an auditorium.
	RoomTypeAuditorium RoomType = "auditorio"
	// RoomTypeStandard marks a regular room. Default.
	RoomTypeStandard RoomType = "comum"
	// RoomTypeOther marks a room outside the predefined categories.
	RoomTypeOther RoomType = "outro"
)

// DefaultRoomCapacity applies when room input omits the capacity.
const DefaultRoomCapacity = 30

// Default operating window applied when room input omits both bounds.
const (
	DefaultOpenTime  booking.TimeOfDay = 8 * 60
	DefaultCloseTime booking.TimeOfDay = 18 * 60
)

// Room represents a bookable space with a capacity and a daily operating
// window.
type Room struct {
	ID        string
	Name      string
	Type      RoomType
	Capacity  int
	OpenTime  booking.TimeOfDay
	CloseTime booking.TimeOfDay
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name      string
	Type      RoomType
	Capacity  int
	OpenTime  booking.TimeOfDay
	CloseTime booking.TimeOfDay
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// Reservation represents a booked time interval in a room.
type Reservation struct {
	ID        string
	RoomID    string
	UserID    *string
	Start     time.Time
	End       time.Time
	PartySize int
	CheckedIn bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReservationInput captures caller provided reservation fields. PartySize
// zero defaults to one.
type ReservationInput struct {
	RoomID    string
	UserID    *string
	Start     time.Time
	End       time.Time
	PartySize int
}

// ValidateOptions tunes a validation pass. ExcludeID carries the identity of
// the reservation being edited so the overlap and per-user checks skip it.
type ValidateOptions struct {
	ExcludeID string
}

// CreateReservationParams wraps the data required to create a reservation.
type CreateReservationParams struct {
	Principal Principal
	Input     ReservationInput
}

// UpdateReservationParams wraps the data required to edit a reservation.
type UpdateReservationParams struct {
	Principal     Principal
	ReservationID string
	Input         ReservationInput
}

// RecurrenceRequest describes a weekly recurring booking. It is transient:
// only the expanded reservations are persisted.
type RecurrenceRequest struct {
	RoomID    string
	UserID    *string
	Weekday   time.Weekday
	StartTime booking.TimeOfDay
	EndTime   booking.TimeOfDay
	FirstDate time.Time
	WeekCount int
	PartySize int
}

// CreateRecurringParams wraps the data required to create a recurring series.
type CreateRecurringParams struct {
	Principal Principal
	Request   RecurrenceRequest
}

// RoomOccupancy is the dashboard snapshot of which rooms are currently in
// use. Room IDs appear in exactly one of the two sets.
type RoomOccupancy struct {
	Occupied  []string
	Available []string
}
