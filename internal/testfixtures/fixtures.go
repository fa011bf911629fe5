package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

var (
	roomCounter        uint64
	reservationCounter uint64
)

var referenceTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room record that can be materialised
// for application or persistence tests.
type RoomFixture struct {
	ID        string
	Name      string
	Type      application.RoomType
	Capacity  int
	OpenTime  booking.TimeOfDay
	CloseTime booking.TimeOfDay
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Sala %03d", idx),
		Type:      application.RoomTypeStandard,
		Capacity:  10,
		OpenTime:  application.DefaultOpenTime,
		CloseTime: application.DefaultCloseTime,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomType overrides the room type.
func WithRoomType(roomType application.RoomType) RoomOption {
	return func(f *RoomFixture) {
		f.Type = roomType
	}
}

// WithRoomCapacity overrides the capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomHours overrides the daily operating window.
func WithRoomHours(open, close booking.TimeOfDay) RoomOption {
	return func(f *RoomFixture) {
		f.OpenTime = open
		f.CloseTime = close
	}
}

// WithRoomTimestamps overrides both audit timestamps.
func WithRoomTimestamps(created, updated time.Time) RoomOption {
	return func(f *RoomFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application converts the fixture into the application layer model.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:        f.ID,
		Name:      f.Name,
		Type:      f.Type,
		Capacity:  f.Capacity,
		OpenTime:  f.OpenTime,
		CloseTime: f.CloseTime,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence converts the fixture into the persistence layer model.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:           f.ID,
		Name:         f.Name,
		RoomType:     string(f.Type),
		Capacity:     f.Capacity,
		OpenMinutes:  f.OpenTime.Minutes(),
		CloseMinutes: f.CloseTime.Minutes(),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input converts the fixture into caller supplied room input.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Name:      f.Name,
		Type:      f.Type,
		Capacity:  f.Capacity,
		OpenTime:  f.OpenTime,
		CloseTime: f.CloseTime,
	}
}

// -------------------------- Reservation fixtures --------------------------

// ReservationFixture represents a deterministic reservation record.
type ReservationFixture struct {
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

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture. Each
// fixture occupies its own one hour slot so fixtures never overlap unless a
// test asks them to.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	userID := fmt.Sprintf("user-%03d", idx)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	fixture := ReservationFixture{
		ID:        fmt.Sprintf("reservation-%03d", idx),
		RoomID:    fmt.Sprintf("room-%03d", idx),
		UserID:    &userID,
		Start:     start,
		End:       start.Add(time.Hour),
		PartySize: 1,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithReservationRoom overrides the referenced room.
func WithReservationRoom(roomID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.RoomID = roomID
	}
}

// WithReservationUser overrides the owning user.
func WithReservationUser(userID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.UserID = &userID
	}
}

// WithoutReservationUser clears the owning user.
func WithoutReservationUser() ReservationOption {
	return func(f *ReservationFixture) {
		f.UserID = nil
	}
}

// WithReservationInterval overrides the booked interval.
func WithReservationInterval(start, end time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.Start = start
		f.End = end
	}
}

// WithReservationPartySize overrides the party size.
func WithReservationPartySize(size int) ReservationOption {
	return func(f *ReservationFixture) {
		f.PartySize = size
	}
}

// WithReservationCheckedIn marks the fixture as attended.
func WithReservationCheckedIn() ReservationOption {
	return func(f *ReservationFixture) {
		f.CheckedIn = true
	}
}

// Application converts the fixture into the application layer model.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:        f.ID,
		RoomID:    f.RoomID,
		UserID:    cloneUserID(f.UserID),
		Start:     f.Start,
		End:       f.End,
		PartySize: f.PartySize,
		CheckedIn: f.CheckedIn,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence converts the fixture into the persistence layer model.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:        f.ID,
		RoomID:    f.RoomID,
		UserID:    cloneUserID(f.UserID),
		Start:     f.Start,
		End:       f.End,
		PartySize: f.PartySize,
		CheckedIn: f.CheckedIn,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input converts the fixture into caller supplied reservation input.
func (f ReservationFixture) Input() application.ReservationInput {
	return application.ReservationInput{
		RoomID:    f.RoomID,
		UserID:    cloneUserID(f.UserID),
		Start:     f.Start,
		End:       f.End,
		PartySize: f.PartySize,
	}
}

func cloneUserID(userID *string) *string {
	if userID == nil {
		return nil
	}
	clone := *userID
	return &clone
}
