package persistence

import (
	"context"
	"time"
)

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	GetRoomByName(ctx context.Context, name string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// ReservationRepository stores reservations and answers the range queries the
// validation engine depends on.
type ReservationRepository interface {
	// InsertReservations persists the batch atomically. Inside the same
	// transaction each reservation's room interval is re-checked for overlap
	// against committed state; any overlap aborts the whole batch with
	// ErrConflict so nothing is partially applied.
	InsertReservations(ctx context.Context, reservations []Reservation) error
	// UpdateReservation rewrites an existing reservation, re-checking the
	// room interval for overlap in the same transaction.
	UpdateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	SetCheckedIn(ctx context.Context, id string, at time.Time) error

	// FindOverlapping returns reservations for the room whose half-open
	// interval overlaps [start, end), excluding excludeID when non-empty.
	FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]Reservation, error)
	// CountActiveForUser counts the user's reservations with End after now,
	// excluding excludeID when non-empty.
	CountActiveForUser(ctx context.Context, userID string, now time.Time, excludeID string) (int, error)
	// CountActiveForRoom counts reservations for the room with End after now.
	CountActiveForRoom(ctx context.Context, roomID string, now time.Time) (int, error)
	// ListForRoomInterval returns the room's reservations overlapping
	// [start, end), ordered by start time.
	ListForRoomInterval(ctx context.Context, roomID string, start, end time.Time) ([]Reservation, error)
	// ListActiveAt returns reservations whose inclusive window contains the
	// instant, across all rooms.
	ListActiveAt(ctx context.Context, at time.Time) ([]Reservation, error)
	// ListUpcomingForUser returns the user's reservations starting inside
	// (after, until], ordered by start time.
	ListUpcomingForUser(ctx context.Context, userID string, after, until time.Time) ([]Reservation, error)
}
