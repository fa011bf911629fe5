package sqlite

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// Storage provides an in-memory persistence implementation with the same
// semantics as the SQLite repositories, including the transactional overlap
// re-check. Used by tests and as a fallback when no database file is wanted.
type Storage struct {
	mu           sync.RWMutex
	rooms        map[string]persistence.Room
	reservations map[string]persistence.Reservation
}

// Open returns a new Storage instance. The dsn is accepted for API
// compatibility with the file-backed store.
func Open(_ string) (*Storage, error) {
	return &Storage{
		rooms:        make(map[string]persistence.Room),
		reservations: make(map[string]persistence.Reservation),
	}, nil
}

// Close releases resources held by the storage. No-op for the in-memory
// implementation.
func (s *Storage) Close() error {
	return nil
}

// Migrate initialises the storage. No-op for the in-memory implementation.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// --- RoomRepository implementation ---

// CreateRoom stores a new room.
func (s *Storage) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueNameLocked(room.ID, room.Name); err != nil {
		return err
	}

	s.rooms[room.ID] = room
	return nil
}

// UpdateRoom updates an existing room.
func (s *Storage) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueNameLocked(room.ID, room.Name); err != nil {
		return err
	}

	s.rooms[room.ID] = room
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Storage) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// GetRoomByName retrieves a room by its unique name.
func (s *Storage) GetRoomByName(ctx context.Context, name string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, room := range s.rooms {
		if strings.EqualFold(room.Name, name) {
			return room, nil
		}
	}
	return persistence.Room{}, persistence.ErrNotFound
}

// ListRooms returns all rooms ordered by name then ID.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// DeleteRoom removes a room and its already-ended reservations.
func (s *Storage) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}

	now := time.Now().UTC()
	for resID, res := range s.reservations {
		if res.RoomID == id && !res.End.After(now) {
			delete(s.reservations, resID)
		}
	}
	for _, res := range s.reservations {
		if res.RoomID == id {
			return persistence.ErrForeignKeyViolation
		}
	}

	delete(s.rooms, id)
	return nil
}

func (s *Storage) ensureUniqueNameLocked(id, name string) error {
	for otherID, other := range s.rooms {
		if otherID == id {
			continue
		}
		if strings.EqualFold(other.Name, name) {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- ReservationRepository implementation ---

// InsertReservations persists the batch atomically with an overlap re-check.
func (s *Storage) InsertReservations(ctx context.Context, reservations []persistence.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	for _, res := range reservations {
		if res.ID == "" || res.RoomID == "" || !res.Start.Before(res.End) {
			return persistence.ErrConstraintViolation
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range reservations {
		if _, ok := s.rooms[res.RoomID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
		if _, ok := s.reservations[res.ID]; ok {
			return persistence.ErrDuplicate
		}
		if s.hasOverlapLocked(res.RoomID, res.Start, res.End, "") {
			return persistence.ErrConflict
		}
	}
	// The batch may not conflict with itself either.
	for i, a := range reservations {
		for _, b := range reservations[i+1:] {
			if a.RoomID == b.RoomID && a.Start.Before(b.End) && a.End.After(b.Start) {
				return persistence.ErrConflict
			}
		}
	}

	for _, res := range reservations {
		s.reservations[res.ID] = res
	}
	return nil
}

// UpdateReservation rewrites an existing reservation with an overlap re-check.
func (s *Storage) UpdateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.RoomID == "" || !reservation.Start.Before(reservation.End) {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[reservation.ID]; !ok {
		return persistence.ErrNotFound
	}
	if _, ok := s.rooms[reservation.RoomID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if s.hasOverlapLocked(reservation.RoomID, reservation.Start, reservation.End, reservation.ID) {
		return persistence.ErrConflict
	}

	s.reservations[reservation.ID] = reservation
	return nil
}

// GetReservation retrieves a reservation by ID.
func (s *Storage) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.reservations[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return res, nil
}

// DeleteReservation removes a reservation by ID.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

// SetCheckedIn marks a reservation as checked in.
func (s *Storage) SetCheckedIn(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[id]
	if !ok {
		return persistence.ErrNotFound
	}
	res.CheckedIn = true
	res.UpdatedAt = at
	s.reservations[id] = res
	return nil
}

// FindOverlapping returns reservations for the room overlapping [start, end).
func (s *Storage) FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []persistence.Reservation
	for _, res := range s.reservations {
		if res.RoomID != roomID || res.ID == excludeID {
			continue
		}
		if res.Start.Before(end) && res.End.After(start) {
			out = append(out, res)
		}
	}
	sortByStart(out)
	return out, nil
}

// CountActiveForUser counts the user's reservations with End after now.
func (s *Storage) CountActiveForUser(ctx context.Context, userID string, now time.Time, excludeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, res := range s.reservations {
		if res.ID == excludeID || res.UserID == nil || *res.UserID != userID {
			continue
		}
		if res.End.After(now) {
			count++
		}
	}
	return count, nil
}

// CountActiveForRoom counts the room's reservations with End after now.
func (s *Storage) CountActiveForRoom(ctx context.Context, roomID string, now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, res := range s.reservations {
		if res.RoomID == roomID && res.End.After(now) {
			count++
		}
	}
	return count, nil
}

// ListForRoomInterval returns the room's reservations overlapping [start, end).
func (s *Storage) ListForRoomInterval(ctx context.Context, roomID string, start, end time.Time) ([]persistence.Reservation, error) {
	return s.FindOverlapping(ctx, roomID, start, end, "")
}

// ListActiveAt returns reservations whose inclusive window contains the
// instant.
func (s *Storage) ListActiveAt(ctx context.Context, at time.Time) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []persistence.Reservation
	for _, res := range s.reservations {
		if !at.Before(res.Start) && !at.After(res.End) {
			out = append(out, res)
		}
	}
	sortByStart(out)
	return out, nil
}

// ListUpcomingForUser returns the user's reservations starting in (after, until].
func (s *Storage) ListUpcomingForUser(ctx context.Context, userID string, after, until time.Time) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []persistence.Reservation
	for _, res := range s.reservations {
		if res.UserID == nil || *res.UserID != userID {
			continue
		}
		if res.Start.After(after) && !res.Start.After(until) {
			out = append(out, res)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *Storage) hasOverlapLocked(roomID string, start, end time.Time, excludeID string) bool {
	for _, res := range s.reservations {
		if res.RoomID != roomID || res.ID == excludeID {
			continue
		}
		if res.Start.Before(end) && res.End.After(start) {
			return true
		}
	}
	return false
}

func sortByStart(reservations []persistence.Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		if reservations[i].Start.Equal(reservations[j].Start) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].Start.Before(reservations[j].Start)
	})
}
