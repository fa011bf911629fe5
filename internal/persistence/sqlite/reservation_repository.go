package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using
// SQLite. All writes that can race with concurrent bookings run inside a
// single transaction that re-checks overlap against committed state.
type ReservationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const reservationColumns = "id, room_id, user_id, start_at, end_at, party_size, checked_in, created_at, updated_at"

// InsertReservations persists the batch atomically. Each reservation's
// interval is re-checked for overlap inside the transaction; any hit aborts
// the whole batch with ErrConflict.
func (r *ReservationRepository) InsertReservations(ctx context.Context, reservations []persistence.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	for _, res := range reservations {
		if res.ID == "" || res.RoomID == "" || !res.Start.Before(res.End) {
			return persistence.ErrConstraintViolation
		}
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, res := range reservations {
				if err := r.checkOverlapTx(tx, res.RoomID, res.Start, res.End, ""); err != nil {
					return err
				}
			}
			for _, res := range reservations {
				if err := r.insertTx(tx, res); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// UpdateReservation rewrites an existing reservation, re-checking its
// interval for overlap in the same transaction.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.RoomID == "" || !reservation.Start.Before(reservation.End) {
		return persistence.ErrConstraintViolation
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := r.checkOverlapTx(tx, reservation.RoomID, reservation.Start, reservation.End, reservation.ID); err != nil {
				return err
			}

			result, err := r.helper.ExecTx(tx, `
				UPDATE reservations
				SET room_id = ?, user_id = ?, start_at = ?, end_at = ?, party_size = ?, checked_in = ?, updated_at = ?
				WHERE id = ?
			`,
				reservation.RoomID,
				nullableString(reservation.UserID),
				formatTime(reservation.Start),
				formatTime(reservation.End),
				reservation.PartySize,
				boolToInt(reservation.CheckedIn),
				formatTime(reservation.UpdatedAt),
				reservation.ID,
			)
			if err != nil {
				return r.mapper.MapError(err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return persistence.ErrNotFound
			}
			return nil
		})
	})
}

// GetReservation retrieves a reservation by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id)
	return scanReservationRow(row, r.mapper)
}

// DeleteReservation removes a reservation by ID.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// SetCheckedIn marks a reservation as checked in.
func (r *ReservationRepository) SetCheckedIn(ctx context.Context, id string, at time.Time) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx,
		"UPDATE reservations SET checked_in = 1, updated_at = ? WHERE id = ?",
		formatTime(at), id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// FindOverlapping returns reservations for the room whose half-open interval
// overlaps [start, end), excluding excludeID when non-empty.
func (r *ReservationRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]persistence.Reservation, error) {
	query := "SELECT " + reservationColumns + ` FROM reservations
		WHERE room_id = ? AND start_at < ? AND end_at > ? AND id != ?
		ORDER BY start_at ASC, id ASC`
	return r.queryReservations(ctx, query, roomID, formatTime(end), formatTime(start), excludeID)
}

// CountActiveForUser counts the user's reservations still in progress or in
// the future, excluding excludeID when non-empty.
func (r *ReservationRepository) CountActiveForUser(ctx context.Context, userID string, now time.Time, excludeID string) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx,
		"SELECT COUNT(*) FROM reservations WHERE user_id = ? AND end_at > ? AND id != ?",
		userID, formatTime(now), excludeID,
	).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// CountActiveForRoom counts the room's reservations still in progress or in
// the future.
func (r *ReservationRepository) CountActiveForRoom(ctx context.Context, roomID string, now time.Time) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx,
		"SELECT COUNT(*) FROM reservations WHERE room_id = ? AND end_at > ?",
		roomID, formatTime(now),
	).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// ListForRoomInterval returns the room's reservations overlapping [start, end).
func (r *ReservationRepository) ListForRoomInterval(ctx context.Context, roomID string, start, end time.Time) ([]persistence.Reservation, error) {
	query := "SELECT " + reservationColumns + ` FROM reservations
		WHERE room_id = ? AND start_at < ? AND end_at > ?
		ORDER BY start_at ASC, id ASC`
	return r.queryReservations(ctx, query, roomID, formatTime(end), formatTime(start))
}

// ListActiveAt returns reservations whose inclusive window contains the
// instant.
func (r *ReservationRepository) ListActiveAt(ctx context.Context, at time.Time) ([]persistence.Reservation, error) {
	query := "SELECT " + reservationColumns + ` FROM reservations
		WHERE start_at <= ? AND end_at >= ?
		ORDER BY room_id ASC, start_at ASC`
	instant := formatTime(at)
	return r.queryReservations(ctx, query, instant, instant)
}

// ListUpcomingForUser returns the user's reservations starting in
// (after, until], ordered by start time.
func (r *ReservationRepository) ListUpcomingForUser(ctx context.Context, userID string, after, until time.Time) ([]persistence.Reservation, error) {
	query := "SELECT " + reservationColumns + ` FROM reservations
		WHERE user_id = ? AND start_at > ? AND start_at <= ?
		ORDER BY start_at ASC, id ASC`
	return r.queryReservations(ctx, query, userID, formatTime(after), formatTime(until))
}

func (r *ReservationRepository) checkOverlapTx(tx *sql.Tx, roomID string, start, end time.Time, excludeID string) error {
	var count int
	err := r.helper.QueryRowTx(tx,
		"SELECT COUNT(*) FROM reservations WHERE room_id = ? AND start_at < ? AND end_at > ? AND id != ?",
		roomID, formatTime(end), formatTime(start), excludeID,
	).Scan(&count)
	if err != nil {
		return r.mapper.MapError(err)
	}
	if count > 0 {
		return persistence.ErrConflict
	}
	return nil
}

func (r *ReservationRepository) insertTx(tx *sql.Tx, res persistence.Reservation) error {
	_, err := r.helper.ExecTx(tx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		res.ID,
		res.RoomID,
		nullableString(res.UserID),
		formatTime(res.Start),
		formatTime(res.End),
		res.PartySize,
		boolToInt(res.CheckedIn),
		formatTime(res.CreatedAt),
		formatTime(res.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

func (r *ReservationRepository) queryReservations(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		res, err := scanReservationRows(rows, r.mapper)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return reservations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(scanner rowScanner) (persistence.Reservation, error) {
	var res persistence.Reservation
	var userID sql.NullString
	var startStr, endStr, createdAtStr, updatedAtStr string
	var checkedIn int

	err := scanner.Scan(
		&res.ID,
		&res.RoomID,
		&userID,
		&startStr,
		&endStr,
		&res.PartySize,
		&checkedIn,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Reservation{}, err
	}

	if userID.Valid {
		value := userID.String
		res.UserID = &value
	}
	res.CheckedIn = checkedIn != 0

	if res.Start, err = parseTime(startStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse start_at: %w", err)
	}
	if res.End, err = parseTime(endStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse end_at: %w", err)
	}
	if res.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if res.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return res, nil
}

func scanReservationRow(row *sql.Row, mapper *ErrorMapper) (persistence.Reservation, error) {
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Reservation{}, persistence.ErrNotFound
		}
		return persistence.Reservation{}, mapper.MapError(err)
	}
	return res, nil
}

func scanReservationRows(rows *sql.Rows, mapper *ErrorMapper) (persistence.Reservation, error) {
	res, err := scanReservation(rows)
	if err != nil {
		return persistence.Reservation{}, mapper.MapError(err)
	}
	return res, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
