package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/logging"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
	"github.com/example/room-booking/internal/persistence/sqlite/migration"
	"github.com/example/room-booking/internal/recurrence"
)

func main() {
	// Populate the environment from a local .env when present.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.NewConnectionPool(migration.DefaultSQLiteConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := migration.NewManager(pool.DB()).Apply(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now
	location := cfg.Location()

	roomStore := sqlite.NewRoomRepository(pool)
	reservationStore := sqlite.NewReservationRepository(pool)

	roomRepo := newRoomRepositoryAdapter(roomStore, reservationStore)
	reservationRepo := newReservationRepositoryAdapter(reservationStore)
	roomDirectory := newRoomDirectoryAdapter(roomStore)
	analyticsRepo := newAnalyticsRepositoryAdapter(reservationStore)

	reservationService := application.NewReservationServiceWithLogger(reservationRepo, roomDirectory, recurrence.NewEngine(location), idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(roomRepo, idGenerator, now, logger)
	analyticsService := application.NewAnalyticsService(analyticsRepo, roomRepo, now, location, cfg.CacheTTL, logger)

	// Analytics caches interval queries; drop them whenever the store mutates.
	roomRepo.onMutate = analyticsService.InvalidateCache
	reservationRepo.onMutate = analyticsService.InvalidateCache

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Rooms:        httptransport.NewRoomHandler(roomService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, logger),
		Analytics:    httptransport.NewAnalyticsHandler(analyticsService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger),
			httptransport.RequirePrincipal(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("room booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type roomRepositoryAdapter struct {
	rooms        persistence.RoomRepository
	reservations persistence.ReservationRepository
	onMutate     func()
}

func newRoomRepositoryAdapter(rooms persistence.RoomRepository, reservations persistence.ReservationRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{rooms: rooms, reservations: reservations}
}

func (a *roomRepositoryAdapter) mutated() {
	if a.onMutate != nil {
		a.onMutate()
	}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.rooms.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.rooms.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	a.mutated()
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.rooms.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.rooms.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.rooms.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	a.mutated()
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) DeleteRoom(ctx context.Context, id string) error {
	if err := a.rooms.DeleteRoom(ctx, id); err != nil {
		return err
	}
	a.mutated()
	return nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

func (a *roomRepositoryAdapter) CountActiveForRoom(ctx context.Context, roomID string, now time.Time) (int, error) {
	return a.reservations.CountActiveForRoom(ctx, roomID, now)
}

type roomDirectoryAdapter struct {
	rooms persistence.RoomRepository
}

func newRoomDirectoryAdapter(rooms persistence.RoomRepository) *roomDirectoryAdapter {
	return &roomDirectoryAdapter{rooms: rooms}
}

func (a *roomDirectoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.rooms.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

type reservationRepositoryAdapter struct {
	reservations persistence.ReservationRepository
	onMutate     func()
}

func newReservationRepositoryAdapter(reservations persistence.ReservationRepository) *reservationRepositoryAdapter {
	return &reservationRepositoryAdapter{reservations: reservations}
}

func (a *reservationRepositoryAdapter) mutated() {
	if a.onMutate != nil {
		a.onMutate()
	}
}

func (a *reservationRepositoryAdapter) InsertReservations(ctx context.Context, reservations []application.Reservation) ([]application.Reservation, error) {
	models := make([]persistence.Reservation, 0, len(reservations))
	for _, reservation := range reservations {
		models = append(models, toPersistenceReservation(reservation))
	}
	if err := a.reservations.InsertReservations(ctx, models); err != nil {
		return nil, err
	}
	a.mutated()

	stored := make([]application.Reservation, 0, len(reservations))
	for _, reservation := range reservations {
		model, err := a.reservations.GetReservation(ctx, reservation.ID)
		if err != nil {
			return nil, err
		}
		stored = append(stored, toApplicationReservation(model))
	}
	return stored, nil
}

func (a *reservationRepositoryAdapter) UpdateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.reservations.UpdateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	a.mutated()
	stored, err := a.reservations.GetReservation(ctx, reservation.ID)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.reservations.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) DeleteReservation(ctx context.Context, id string) error {
	if err := a.reservations.DeleteReservation(ctx, id); err != nil {
		return err
	}
	a.mutated()
	return nil
}

func (a *reservationRepositoryAdapter) SetCheckedIn(ctx context.Context, id string, at time.Time) error {
	if err := a.reservations.SetCheckedIn(ctx, id, at); err != nil {
		return err
	}
	a.mutated()
	return nil
}

func (a *reservationRepositoryAdapter) FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]application.Reservation, error) {
	models, err := a.reservations.FindOverlapping(ctx, roomID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *reservationRepositoryAdapter) CountActiveForUser(ctx context.Context, userID string, now time.Time, excludeID string) (int, error) {
	return a.reservations.CountActiveForUser(ctx, userID, now, excludeID)
}

type analyticsRepositoryAdapter struct {
	reservations persistence.ReservationRepository
}

func newAnalyticsRepositoryAdapter(reservations persistence.ReservationRepository) *analyticsRepositoryAdapter {
	return &analyticsRepositoryAdapter{reservations: reservations}
}

func (a *analyticsRepositoryAdapter) ListForRoomInterval(ctx context.Context, roomID string, start, end time.Time) ([]application.Reservation, error) {
	models, err := a.reservations.ListForRoomInterval(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *analyticsRepositoryAdapter) ListActiveAt(ctx context.Context, at time.Time) ([]application.Reservation, error) {
	models, err := a.reservations.ListActiveAt(ctx, at)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *analyticsRepositoryAdapter) FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]application.Reservation, error) {
	models, err := a.reservations.FindOverlapping(ctx, roomID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *analyticsRepositoryAdapter) ListUpcomingForUser(ctx context.Context, userID string, after, until time.Time) ([]application.Reservation, error) {
	models, err := a.reservations.ListUpcomingForUser(ctx, userID, after, until)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:        model.ID,
		Name:      model.Name,
		Type:      application.RoomType(model.RoomType),
		Capacity:  model.Capacity,
		OpenTime:  booking.TimeOfDay(model.OpenMinutes),
		CloseTime: booking.TimeOfDay(model.CloseMinutes),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:           room.ID,
		Name:         room.Name,
		RoomType:     string(room.Type),
		Capacity:     room.Capacity,
		OpenMinutes:  room.OpenTime.Minutes(),
		CloseMinutes: room.CloseTime.Minutes(),
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
}

func toApplicationReservation(model persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:        model.ID,
		RoomID:    model.RoomID,
		UserID:    cloneString(model.UserID),
		Start:     model.Start,
		End:       model.End,
		PartySize: model.PartySize,
		CheckedIn: model.CheckedIn,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toApplicationReservations(models []persistence.Reservation) []application.Reservation {
	if len(models) == 0 {
		return nil
	}
	reservations := make([]application.Reservation, 0, len(models))
	for _, model := range models {
		reservations = append(reservations, toApplicationReservation(model))
	}
	return reservations
}

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		UserID:    cloneString(reservation.UserID),
		Start:     reservation.Start,
		End:       reservation.End,
		PartySize: reservation.PartySize,
		CheckedIn: reservation.CheckedIn,
		CreatedAt: reservation.CreatedAt,
		UpdatedAt: reservation.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
