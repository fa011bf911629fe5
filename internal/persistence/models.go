package persistence

import "time"

// Room represents a bookable room catalog entry.
type Room struct {
	ID           string
	Name         string
	RoomType     string
	Capacity     int
	OpenMinutes  int
	CloseMinutes int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reservation represents a booked interval stored in persistence. UserID is
// nil for anonymous or legacy bookings.
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
