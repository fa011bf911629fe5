package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/example/room-booking/internal/booking"
)

const (
	// NoShowGrace is how long after its start an unconfirmed reservation
	// still counts as occupying its room.
	NoShowGrace = 15 * time.Minute
	// ReminderWindow bounds how far ahead upcoming reservations are
	// surfaced for reminders.
	ReminderWindow = 2 * time.Hour
)

// AnalyticsRepository captures the read-only reservation queries needed for
// occupancy reporting.
type AnalyticsRepository interface {
	ListForRoomInterval(ctx context.Context, roomID string, start, end time.Time) ([]Reservation, error)
	ListActiveAt(ctx context.Context, at time.Time) ([]Reservation, error)
	FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]Reservation, error)
	ListUpcomingForUser(ctx context.Context, userID string, after, until time.Time) ([]Reservation, error)
}

// AnalyticsService computes occupancy figures from the reservation store.
// Results for pure interval queries are cached briefly; the cache is
// invalidated by callers whenever the store mutates.
type AnalyticsService struct {
	reservations AnalyticsRepository
	rooms        RoomRepository
	now          func() time.Time
	location     *time.Location
	cache        *analyticsCache
	logger       *slog.Logger
}

// NewAnalyticsService wires dependencies for occupancy reporting. A zero
// cacheTTL selects the default.
func NewAnalyticsService(reservations AnalyticsRepository, rooms RoomRepository, now func() time.Time, loc *time.Location, cacheTTL time.Duration, logger *slog.Logger) *AnalyticsService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		reservations: reservations,
		rooms:        rooms,
		now:          now,
		location:     loc,
		cache:        newAnalyticsCache(cacheTTL, 0, now),
		logger:       defaultLogger(logger),
	}
}

func (s *AnalyticsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AnalyticsService", operation, attrs...)
}

// InvalidateCache drops cached figures. Called after any reservation or room
// mutation.
func (s *AnalyticsService) InvalidateCache() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// OccupancyRate reports the percentage of a room's bookable minutes that are
// reserved over [start, end). Reservations straddling the window edges are
// clipped to it. Bookable minutes count only the room's daily operating
// window.
func (s *AnalyticsService) OccupancyRate(ctx context.Context, principal Principal, roomID string, start, end time.Time) (rate float64, err error) {
	if s == nil {
		err = fmt.Errorf("AnalyticsService is nil")
		return
	}
	if s.reservations == nil || s.rooms == nil {
		err = fmt.Errorf("analytics repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "OccupancyRate",
		"principal_id", principal.UserID,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute occupancy rate", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rate", rate).InfoContext(ctx, "occupancy rate computed")
	}()

	if !start.Before(end) {
		err = invalidInput("time_window", "end must be after start")
		return
	}

	key := buildOccupancyCacheKey(roomID, start, end)
	if cached, ok := s.cache.GetRate(key); ok {
		rate = cached
		return
	}

	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	reservations, err := s.reservations.ListForRoomInterval(ctx, roomID, start, end)
	if err != nil {
		return
	}

	reserved := 0
	for _, res := range reservations {
		reserved += booking.ClippedMinutes(res.Start, res.End, start, end)
	}

	days := int(end.Sub(start) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	available := days * (room.CloseTime.Minutes() - room.OpenTime.Minutes())
	if available <= 0 {
		rate = 0
	} else {
		rate = float64(reserved) * 100 / float64(available)
		if rate > 100 {
			rate = 100
		}
		rate = math.Round(rate*10) / 10
	}

	s.cache.StoreRate(key, rate)
	return
}

// CurrentlyOccupiedRooms partitions the catalog into rooms occupied right now
// and rooms free right now. A reservation occupies its room while its window
// covers the current instant, except when its party never checked in and the
// no-show grace has lapsed.
func (s *AnalyticsService) CurrentlyOccupiedRooms(ctx context.Context, principal Principal) (snapshot RoomOccupancy, err error) {
	if s == nil {
		err = fmt.Errorf("AnalyticsService is nil")
		return
	}
	if s.reservations == nil || s.rooms == nil {
		err = fmt.Errorf("analytics repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "CurrentlyOccupiedRooms",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to snapshot occupancy", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("occupied_count", len(snapshot.Occupied)).InfoContext(ctx, "occupancy snapshot computed")
	}()

	now := s.now()

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return
	}

	active, err := s.reservations.ListActiveAt(ctx, now)
	if err != nil {
		return
	}

	occupiedIDs := make(map[string]struct{}, len(active))
	for _, res := range active {
		if occupiesAt(res, now) {
			occupiedIDs[res.RoomID] = struct{}{}
		}
	}

	snapshot = RoomOccupancy{
		Occupied:  make([]string, 0, len(occupiedIDs)),
		Available: make([]string, 0, len(rooms)),
	}
	for _, room := range rooms {
		if _, ok := occupiedIDs[room.ID]; ok {
			snapshot.Occupied = append(snapshot.Occupied, room.ID)
			continue
		}
		snapshot.Available = append(snapshot.Available, room.ID)
	}
	sort.Strings(snapshot.Occupied)
	sort.Strings(snapshot.Available)
	return
}

// FindAvailableRooms lists rooms free for the whole requested window with
// capacity for the party, sorted by name.
func (s *AnalyticsService) FindAvailableRooms(ctx context.Context, principal Principal, start, end time.Time, partySize int) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("AnalyticsService is nil")
		return
	}
	if s.reservations == nil || s.rooms == nil {
		err = fmt.Errorf("analytics repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "FindAvailableRooms",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to find available rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).InfoContext(ctx, "available rooms listed")
	}()

	if !start.Before(end) {
		err = invalidInput("time_window", "end must be after start")
		return
	}
	if partySize < 1 {
		partySize = 1
	}

	key := buildAvailabilityCacheKey(start, end, partySize)
	if cached, ok := s.cache.GetRooms(key); ok {
		rooms = cached
		return
	}

	catalog, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return
	}

	startTOD := booking.TimeOfDayFrom(start.In(s.location))
	endTOD := booking.TimeOfDayFrom(end.In(s.location))

	rooms = make([]Room, 0, len(catalog))
	for _, room := range catalog {
		if room.Capacity < partySize {
			continue
		}
		if startTOD < room.OpenTime || endTOD > room.CloseTime || endTOD < startTOD {
			continue
		}
		overlapping, findErr := s.reservations.FindOverlapping(ctx, room.ID, start, end, "")
		if findErr != nil {
			err = findErr
			rooms = nil
			return
		}
		if len(overlapping) > 0 {
			continue
		}
		rooms = append(rooms, room)
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})

	s.cache.StoreRooms(key, rooms)
	return
}

// UpcomingReservations lists a user's reservations starting within the
// reminder window, soonest first.
func (s *AnalyticsService) UpcomingReservations(ctx context.Context, principal Principal, userID string) (upcoming []Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("AnalyticsService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("analytics repositories not configured")
		return
	}
	if userID == "" {
		userID = principal.UserID
	}
	if userID != principal.UserID && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "UpcomingReservations",
		"principal_id", principal.UserID,
		"user_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list upcoming reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(upcoming)).InfoContext(ctx, "upcoming reservations listed")
	}()

	now := s.now()
	upcoming, err = s.reservations.ListUpcomingForUser(ctx, userID, now, now.Add(ReminderWindow))
	if err != nil {
		return
	}

	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].Start.Equal(upcoming[j].Start) {
			return upcoming[i].ID < upcoming[j].ID
		}
		return upcoming[i].Start.Before(upcoming[j].Start)
	})
	return
}

// occupiesAt reports whether the reservation holds its room at the instant.
// The window is inclusive at both ends.
func occupiesAt(res Reservation, at time.Time) bool {
	if at.Before(res.Start) || at.After(res.End) {
		return false
	}
	if res.CheckedIn {
		return true
	}
	return at.Before(res.Start.Add(NoShowGrace))
}
