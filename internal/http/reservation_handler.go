package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

type reservationService interface {
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error)
	UpdateReservation(ctx context.Context, params application.UpdateReservationParams) (application.Reservation, error)
	CancelReservation(ctx context.Context, principal application.Principal, reservationID string) error
	CheckIn(ctx context.Context, principal application.Principal, reservationID string) error
	CreateRecurringReservations(ctx context.Context, params application.CreateRecurringParams) ([]application.Reservation, error)
}

type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	input, err := decodeReservationRequest(r)
	if err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", input.RoomID)

	reservation, err := h.service.CreateReservation(r.Context(), application.CreateReservationParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", reservation.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	input, err := decodeReservationRequest(r)
	if err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "reservation_id", reservationID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "reservation_id", reservationID)

	reservation, err := h.service.UpdateReservation(r.Context(), application.UpdateReservationParams{
		Principal:     principal,
		ReservationID: reservationID,
		Input:         input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Cancel", "principal_id", principal.UserID, "reservation_id", reservationID)

	if err := h.service.CancelReservation(r.Context(), principal, reservationID); err != nil {
		logger.ErrorContext(r.Context(), "reservation cancel failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "CheckIn", "principal_id", principal.UserID, "reservation_id", reservationID)

	if err := h.service.CheckIn(r.Context(), principal, reservationID); err != nil {
		logger.ErrorContext(r.Context(), "check-in failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation checked in")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	request, err := decodeRecurringRequest(r)
	if err != nil {
		h.log(r.Context(), "CreateRecurring", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode recurring request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "CreateRecurring",
		"principal_id", principal.UserID,
		"room_id", request.RoomID,
		"week_count", request.WeekCount,
	)

	reservations, err := h.service.CreateRecurringReservations(r.Context(), application.CreateRecurringParams{
		Principal: principal,
		Request:   request,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "recurring creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(reservations)).InfoContext(r.Context(), "recurring reservations created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

type reservationRequest struct {
	RoomID    string  `json:"room_id"`
	StartAt   string  `json:"start_at"`
	EndAt     string  `json:"end_at"`
	PartySize int     `json:"party_size"`
	UserID    *string `json:"user_id"`
}

func decodeReservationRequest(r *http.Request) (application.ReservationInput, error) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return application.ReservationInput{}, errBadRequestBody
	}

	input := application.ReservationInput{
		RoomID:    strings.TrimSpace(req.RoomID),
		UserID:    req.UserID,
		PartySize: req.PartySize,
	}

	if value := strings.TrimSpace(req.StartAt); value != "" {
		start, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return application.ReservationInput{}, errBadRequestBody
		}
		input.Start = start
	}
	if value := strings.TrimSpace(req.EndAt); value != "" {
		end, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return application.ReservationInput{}, errBadRequestBody
		}
		input.End = end
	}

	return input, nil
}

type recurringRequest struct {
	RoomID    string  `json:"room_id"`
	Weekday   int     `json:"weekday"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	FirstDate string  `json:"first_date"`
	WeekCount int     `json:"week_count"`
	PartySize int     `json:"party_size"`
	UserID    *string `json:"user_id"`
}

func decodeRecurringRequest(r *http.Request) (application.RecurrenceRequest, error) {
	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return application.RecurrenceRequest{}, errBadRequestBody
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		return application.RecurrenceRequest{}, errBadRequestBody
	}

	request := application.RecurrenceRequest{
		RoomID:    strings.TrimSpace(req.RoomID),
		UserID:    req.UserID,
		Weekday:   time.Weekday(req.Weekday),
		WeekCount: req.WeekCount,
		PartySize: req.PartySize,
	}

	if value := strings.TrimSpace(req.StartTime); value != "" {
		tod, err := booking.ParseTimeOfDay(value)
		if err != nil {
			return application.RecurrenceRequest{}, errBadRequestBody
		}
		request.StartTime = tod
	}
	if value := strings.TrimSpace(req.EndTime); value != "" {
		tod, err := booking.ParseTimeOfDay(value)
		if err != nil {
			return application.RecurrenceRequest{}, errBadRequestBody
		}
		request.EndTime = tod
	}
	if value := strings.TrimSpace(req.FirstDate); value != "" {
		first, err := time.Parse("2006-01-02", value)
		if err != nil {
			return application.RecurrenceRequest{}, errBadRequestBody
		}
		request.FirstDate = first
	}

	return request, nil
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type reservationDTO struct {
	ID        string  `json:"id"`
	RoomID    string  `json:"room_id"`
	UserID    *string `json:"user_id,omitempty"`
	StartAt   string  `json:"start_at"`
	EndAt     string  `json:"end_at"`
	PartySize int     `json:"party_size"`
	CheckedIn bool    `json:"checked_in"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toReservationDTO(reservation application.Reservation) reservationDTO {
	return reservationDTO{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		UserID:    reservation.UserID,
		StartAt:   reservation.Start.UTC().Format(time.RFC3339),
		EndAt:     reservation.End.UTC().Format(time.RFC3339),
		PartySize: reservation.PartySize,
		CheckedIn: reservation.CheckedIn,
		CreatedAt: reservation.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: reservation.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	if len(reservations) == 0 {
		return nil
	}
	out := make([]reservationDTO, 0, len(reservations))
	for _, reservation := range reservations {
		out = append(out, toReservationDTO(reservation))
	}
	return out
}
