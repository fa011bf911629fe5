package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

const (
	// MinLeadTime is the minimum notice required when creating a reservation.
	MinLeadTime = 15 * time.Minute
	// MinDuration is the shortest admissible reservation.
	MinDuration = 30 * time.Minute
	// MaxDuration is the longest admissible reservation.
	MaxDuration = 4 * time.Hour
	// MaxActivePerUser caps how many unexpired reservations a user may hold.
	MaxActivePerUser = 3
	// CancelLeadTime is the minimum notice required to cancel a reservation.
	CancelLeadTime = time.Hour
)

// ReservationRepository captures the persistence interactions needed by the
// service.
type ReservationRepository interface {
	InsertReservations(ctx context.Context, reservations []Reservation) ([]Reservation, error)
	UpdateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	GetReservation(ctx context.Context, id string) (Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	SetCheckedIn(ctx context.Context, id string, at time.Time) error
	FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]Reservation, error)
	CountActiveForUser(ctx context.Context, userID string, now time.Time, excludeID string) (int, error)
}

// RoomDirectory exposes room lookup operations.
type RoomDirectory interface {
	GetRoom(ctx context.Context, id string) (Room, error)
}

// ReservationService runs the validation engine and orchestrates reservation
// state transitions. It never reads ambient time: every rule compares against
// the single instant supplied by the injected clock at the moment of the call.
type ReservationService struct {
	reservations ReservationRepository
	rooms        RoomDirectory
	expander     *recurrence.Engine
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService wires dependencies for reservation operations.
func NewReservationService(reservations ReservationRepository, rooms RoomDirectory, expander *recurrence.Engine, idGenerator func() string, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(reservations, rooms, expander, idGenerator, now, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with a
// specified logger.
func NewReservationServiceWithLogger(reservations ReservationRepository, rooms RoomDirectory, expander *recurrence.Engine, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if expander == nil {
		expander = recurrence.NewEngine(nil)
	}
	return &ReservationService{
		reservations: reservations,
		rooms:        rooms,
		expander:     expander,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// ValidateReservation runs the ordered rule sequence against a candidate.
// Rules accumulate: every failing rule appends a violation instead of
// short-circuiting, except where a later rule's precondition is unmet. A
// candidate whose room reference does not resolve is a caller bug and yields
// InvalidInputError rather than a rule violation.
func (s *ReservationService) ValidateReservation(ctx context.Context, input ReservationInput, opts ValidateOptions) error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}

	room, err := s.resolveRoom(ctx, input.RoomID)
	if err != nil {
		return err
	}

	vErr := &ValidationError{}
	if err := s.runRules(ctx, input, opts, room, vErr); err != nil {
		return err
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// CreateReservation validates the candidate and persists it atomically.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		"principal_id", params.Principal.UserID,
		"room_id", params.Input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation created")
	}()

	input := normalizeReservationInput(params.Input, params.Principal)

	if err = s.ValidateReservation(ctx, input, ValidateOptions{}); err != nil {
		return
	}

	createdAt := s.now()
	candidate := Reservation{
		ID:        s.idGenerator(),
		RoomID:    input.RoomID,
		UserID:    cloneStringPtr(input.UserID),
		Start:     input.Start,
		End:       input.End,
		PartySize: input.PartySize,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	persisted, err := s.reservations.InsertReservations(ctx, []Reservation{candidate})
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}
	if len(persisted) != 1 {
		err = fmt.Errorf("expected one persisted reservation, got %d", len(persisted))
		return
	}

	reservation = persisted[0]
	return
}

// UpdateReservation re-runs the rule checks for an edited reservation,
// excluding its own prior identity from the overlap and per-user counts.
func (s *ReservationService) UpdateReservation(ctx context.Context, params UpdateReservationParams) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateReservation",
		"principal_id", params.Principal.UserID,
		"reservation_id", params.ReservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation updated")
	}()

	existing, err := s.reservations.GetReservation(ctx, params.ReservationID)
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}

	if !canAct(params.Principal, existing.UserID) {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	if input.UserID == nil {
		input.UserID = existing.UserID
	}
	input = normalizeReservationInput(input, params.Principal)

	if err = s.ValidateReservation(ctx, input, ValidateOptions{ExcludeID: existing.ID}); err != nil {
		return
	}

	updated := existing
	updated.RoomID = input.RoomID
	updated.UserID = cloneStringPtr(input.UserID)
	updated.Start = input.Start
	updated.End = input.End
	updated.PartySize = input.PartySize
	updated.UpdatedAt = s.now()

	reservation, err = s.reservations.UpdateReservation(ctx, updated)
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}
	return
}

// CancelReservation deletes a reservation when requested by its owner or an
// administrator with at least one hour of notice.
func (s *ReservationService) CancelReservation(ctx context.Context, principal Principal, reservationID string) error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return fmt.Errorf("reservation repository not configured")
	}

	logger := s.loggerWith(ctx, "CancelReservation",
		"principal_id", principal.UserID,
		"reservation_id", reservationID,
	)

	existing, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		err = mapReservationRepoError(err)
		logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if !canAct(principal, existing.UserID) {
		logger.ErrorContext(ctx, "failed to cancel reservation", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	if s.now().After(existing.Start.Add(-CancelLeadTime)) {
		logger.ErrorContext(ctx, "failed to cancel reservation", "error", ErrTooLateToCancel, "error_kind", ErrorKind(ErrTooLateToCancel))
		return ErrTooLateToCancel
	}

	if err := s.reservations.DeleteReservation(ctx, reservationID); err != nil {
		err = mapReservationRepoError(err)
		logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "reservation cancelled")
	return nil
}

// CheckIn sets the one-way checked-in flag. Permitted to the owner or an
// administrator any time before the reservation window ends.
func (s *ReservationService) CheckIn(ctx context.Context, principal Principal, reservationID string) error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return fmt.Errorf("reservation repository not configured")
	}

	logger := s.loggerWith(ctx, "CheckIn",
		"principal_id", principal.UserID,
		"reservation_id", reservationID,
	)

	existing, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		err = mapReservationRepoError(err)
		logger.ErrorContext(ctx, "failed to check in", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if !canAct(principal, existing.UserID) {
		logger.ErrorContext(ctx, "failed to check in", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	now := s.now()
	if now.After(existing.End) {
		vErr := &ValidationError{}
		vErr.add("checked_in", "reservation has already ended")
		logger.ErrorContext(ctx, "failed to check in", "error", vErr, "error_kind", ErrorKind(vErr))
		return vErr
	}

	if existing.CheckedIn {
		logger.InfoContext(ctx, "reservation already checked in")
		return nil
	}

	if err := s.reservations.SetCheckedIn(ctx, reservationID, now); err != nil {
		err = mapReservationRepoError(err)
		logger.ErrorContext(ctx, "failed to check in", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "reservation checked in")
	return nil
}

// CreateRecurringReservations expands a weekly request, validates the shared
// window once plus every occurrence's interval, and on full acceptance
// persists all occurrences atomically. Any conflicting or past occurrence
// rejects the whole batch with one violation per offending date, in the order
// the occurrences were generated.
func (s *ReservationService) CreateRecurringReservations(ctx context.Context, params CreateRecurringParams) (reservations []Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	req := params.Request

	logger := s.loggerWith(ctx, "CreateRecurringReservations",
		"principal_id", params.Principal.UserID,
		"room_id", req.RoomID,
		"week_count", req.WeekCount,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create recurring reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reservations)).InfoContext(ctx, "recurring reservations created")
	}()

	room, err := s.resolveRoom(ctx, req.RoomID)
	if err != nil {
		return
	}

	if req.UserID == nil && params.Principal.UserID != "" {
		userID := params.Principal.UserID
		req.UserID = &userID
	}
	if req.PartySize <= 0 {
		req.PartySize = 1
	}

	now := s.now()
	loc := s.expander.Location()

	// Shared time-of-day checks run once: every occurrence carries the same
	// weekday window, so repeating them per occurrence would only duplicate
	// the violations.
	vErr := &ValidationError{}
	if req.WeekCount < 1 || req.WeekCount > recurrence.MaxWeeks {
		vErr.addf("week_count", "week count must be between 1 and %d", recurrence.MaxWeeks)
	}
	if req.Weekday < time.Sunday || req.Weekday > time.Saturday {
		vErr.add("weekday", "weekday must be between 0 (Sunday) and 6 (Saturday)")
	}
	if req.EndTime <= req.StartTime {
		vErr.add("end_time", "end time must be after start time")
	} else {
		duration := time.Duration(req.EndTime-req.StartTime) * time.Minute
		if duration < MinDuration || duration > MaxDuration {
			vErr.addf("duration", "duration must be between %d minutes and %d hours", int(MinDuration.Minutes()), int(MaxDuration.Hours()))
		}
		if req.StartTime < room.OpenTime || req.EndTime > room.CloseTime {
			vErr.addf("time_window", "reservation must fall within the room operating hours (%s to %s)", room.OpenTime, room.CloseTime)
		}
	}
	if req.PartySize > room.Capacity {
		vErr.addf("party_size", "party size (%d) exceeds the room capacity (%d)", req.PartySize, room.Capacity)
	}
	if anchorDate(req.FirstDate, loc).Before(startOfDay(now, loc)) {
		vErr.add("first_date", "first date cannot be in the past")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	occurrences, expandErr := s.expander.Expand(recurrence.Request{
		Weekday:   req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		FirstDate: req.FirstDate,
		WeekCount: req.WeekCount,
	})
	if expandErr != nil {
		err = invalidInput("request", expandErr.Error())
		return
	}

	// The overlap check runs independently for every occurrence so the
	// caller sees every conflicting date in a single report.
	for _, occ := range occurrences {
		date := occ.Date.Format("2006-01-02")
		if occ.Start.Before(now) {
			vErr.addf("occurrences", "occurrence on %s is in the past", date)
			continue
		}
		overlapping, findErr := s.reservations.FindOverlapping(ctx, req.RoomID, occ.Start, occ.End, "")
		if findErr != nil {
			err = findErr
			return
		}
		if len(overlapping) > 0 {
			vErr.addf("occurrences", "the room is already reserved on %s", date)
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	batch := make([]Reservation, 0, len(occurrences))
	for _, occ := range occurrences {
		batch = append(batch, Reservation{
			ID:        s.idGenerator(),
			RoomID:    req.RoomID,
			UserID:    cloneStringPtr(req.UserID),
			Start:     occ.Start,
			End:       occ.End,
			PartySize: req.PartySize,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		})
	}

	reservations, err = s.reservations.InsertReservations(ctx, batch)
	if err != nil {
		err = mapReservationRepoError(err)
		reservations = nil
		return
	}
	return
}

func (s *ReservationService) resolveRoom(ctx context.Context, roomID string) (Room, error) {
	if roomID == "" {
		return Room{}, invalidInput("room_id", "room reference is required")
	}
	if s.rooms == nil {
		return Room{}, fmt.Errorf("room directory not configured")
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			return Room{}, invalidInput("room_id", "room does not exist")
		}
		return Room{}, err
	}
	return room, nil
}

// runRules evaluates the ordered rule sequence, appending violations to vErr.
// Returns a non-nil error only for repository failures.
func (s *ReservationService) runRules(ctx context.Context, input ReservationInput, opts ValidateOptions, room Room, vErr *ValidationError) error {
	now := s.now()
	hasInterval := !input.Start.IsZero() && !input.End.IsZero()
	ordered := hasInterval && input.Start.Before(input.End)

	// 1. Temporal order.
	if !input.Start.IsZero() && !input.End.IsZero() && !input.Start.Before(input.End) {
		vErr.add("end_at", "end must be after start")
	}
	if input.Start.IsZero() {
		vErr.add("start_at", "start is required")
	}
	if input.End.IsZero() {
		vErr.add("end_at", "end is required")
	}

	// 2. Non-past start.
	if !input.Start.IsZero() && input.Start.Before(now) {
		vErr.add("start_at", "start cannot be in the past")
	}

	// 3. Minimum lead time, new reservations only.
	if opts.ExcludeID == "" && !input.Start.IsZero() && input.Start.Before(now.Add(MinLeadTime)) {
		vErr.addf("start_at", "reservations require at least %d minutes of notice", int(MinLeadTime.Minutes()))
	}

	// 4. Duration bounds.
	if ordered {
		duration := input.End.Sub(input.Start)
		if duration < MinDuration || duration > MaxDuration {
			vErr.addf("duration", "duration must be between %d minutes and %d hours", int(MinDuration.Minutes()), int(MaxDuration.Hours()))
		}
	}

	// 5. Capacity.
	if input.PartySize > room.Capacity {
		vErr.addf("party_size", "party size (%d) exceeds the room capacity (%d)", input.PartySize, room.Capacity)
	}
	if input.PartySize <= 0 {
		vErr.add("party_size", "party size must be positive")
	}

	// 6. Overlap. Skipped when the interval is absent or inverted: there is
	// nothing meaningful to compare against the store.
	if ordered && s.reservations != nil {
		overlapping, err := s.reservations.FindOverlapping(ctx, input.RoomID, input.Start, input.End, opts.ExcludeID)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			vErr.add("room_id", "the room is already reserved in the requested period")
		}
	}

	// 7. Within operating hours.
	if ordered {
		loc := s.expander.Location()
		startTOD := booking.TimeOfDayFrom(input.Start.In(loc))
		endTOD := booking.TimeOfDayFrom(input.End.In(loc))
		if startTOD < room.OpenTime || endTOD > room.CloseTime || endTOD < startTOD {
			vErr.addf("time_window", "reservation must fall within the room operating hours (%s to %s)", room.OpenTime, room.CloseTime)
		}
	}

	// 8. Per-user active cap.
	if input.UserID != nil && *input.UserID != "" && s.reservations != nil {
		count, err := s.reservations.CountActiveForUser(ctx, *input.UserID, now, opts.ExcludeID)
		if err != nil {
			return err
		}
		if count >= MaxActivePerUser {
			vErr.addf("user", "users may hold at most %d active reservations", MaxActivePerUser)
		}
	}

	return nil
}

func normalizeReservationInput(input ReservationInput, principal Principal) ReservationInput {
	if input.UserID == nil && principal.UserID != "" {
		userID := principal.UserID
		input.UserID = &userID
	}
	if input.PartySize == 0 {
		input.PartySize = 1
	}
	return input
}

func canAct(principal Principal, ownerID *string) bool {
	if principal.IsAdmin {
		return true
	}
	if ownerID == nil {
		return false
	}
	return principal.UserID != "" && principal.UserID == *ownerID
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// anchorDate pins t's calendar date to midnight in loc without converting the
// instant first. First dates arrive date-only; their calendar fields are the
// requested date regardless of the zone they were parsed in.
func anchorDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func mapReservationRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConflict) {
		return ErrStoreConflict
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return invalidInput("room_id", "room does not exist")
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("end_at", "end must be after start")
		return vErr
	}
	return err
}
