package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
)

type analyticsService interface {
	OccupancyRate(ctx context.Context, principal application.Principal, roomID string, start, end time.Time) (float64, error)
	CurrentlyOccupiedRooms(ctx context.Context, principal application.Principal) (application.RoomOccupancy, error)
	FindAvailableRooms(ctx context.Context, principal application.Principal, start, end time.Time, partySize int) ([]application.Room, error)
	UpcomingReservations(ctx context.Context, principal application.Principal, userID string) ([]application.Reservation, error)
}

var (
	errInvalidInterval  = errors.New("parâmetros start e end devem ser instantes RFC 3339 válidos")
	errInvalidPartySize = errors.New("o parâmetro party_size deve ser um inteiro positivo")
)

type AnalyticsHandler struct {
	service   analyticsService
	responder responder
	logger    *slog.Logger
}

func NewAnalyticsHandler(service analyticsService, logger *slog.Logger) *AnalyticsHandler {
	base := defaultLogger(logger)
	return &AnalyticsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AnalyticsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AnalyticsHandler", operation, attrs...)
}

// OccupancyRate serves GET /rooms/{id}/occupancy?start=...&end=...
func (h *AnalyticsHandler) OccupancyRate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	start, end, err := parseInterval(r)
	if err != nil {
		h.log(r.Context(), "OccupancyRate", "principal_id", principal.UserID, "room_id", roomID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid occupancy interval", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "OccupancyRate", "principal_id", principal.UserID, "room_id", roomID)

	rate, err := h.service.OccupancyRate(r.Context(), principal, roomID, start, end)
	if err != nil {
		logger.ErrorContext(r.Context(), "occupancy rate failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, occupancyRateResponse{
		RoomID:        roomID,
		StartAt:       start.UTC().Format(time.RFC3339),
		EndAt:         end.UTC().Format(time.RFC3339),
		OccupancyRate: rate,
	})
}

// Occupancy serves GET /occupancy, the dashboard snapshot.
func (h *AnalyticsHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Occupancy", "principal_id", principal.UserID)

	snapshot, err := h.service.CurrentlyOccupiedRooms(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "occupancy snapshot failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, occupancySnapshotResponse{
		Occupied:  snapshot.Occupied,
		Available: snapshot.Available,
	})
}

// Availability serves GET /availability?start=...&end=...&party_size=N.
func (h *AnalyticsHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	start, end, err := parseInterval(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	partySize := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("party_size")); raw != "" {
		partySize, err = strconv.Atoi(raw)
		if err != nil || partySize < 1 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPartySize)
			return
		}
	}

	logger := h.log(r.Context(), "Availability", "principal_id", principal.UserID, "party_size", partySize)

	rooms, err := h.service.FindAvailableRooms(r.Context(), principal, start, end, partySize)
	if err != nil {
		logger.ErrorContext(r.Context(), "availability search failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(rooms)).InfoContext(r.Context(), "availability searched")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: toRoomDTOs(rooms)})
}

// Reminders serves GET /reminders?user_id=..., defaulting to the caller.
func (h *AnalyticsHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		userID = principal.UserID
	}

	logger := h.log(r.Context(), "Reminders", "principal_id", principal.UserID, "user_id", userID)

	upcoming, err := h.service.UpcomingReservations(r.Context(), principal, userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "reminder lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(upcoming)})
}

func parseInterval(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(query.Get("start")))
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidInterval
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(query.Get("end")))
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidInterval
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errInvalidInterval
	}
	return start, end, nil
}

type occupancyRateResponse struct {
	RoomID        string  `json:"room_id"`
	StartAt       string  `json:"start_at"`
	EndAt         string  `json:"end_at"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type occupancySnapshotResponse struct {
	Occupied  []string `json:"occupied"`
	Available []string `json:"available"`
}
