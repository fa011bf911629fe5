package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

type roomServiceStub struct {
	createFn func(ctx context.Context, params application.CreateRoomParams) (application.Room, error)
	updateFn func(ctx context.Context, params application.UpdateRoomParams) (application.Room, error)
	deleteFn func(ctx context.Context, principal application.Principal, roomID string) error
	getFn    func(ctx context.Context, principal application.Principal, roomID string) (application.Room, error)
	listFn   func(ctx context.Context, principal application.Principal) ([]application.Room, error)
}

func (s *roomServiceStub) CreateRoom(ctx context.Context, params application.CreateRoomParams) (application.Room, error) {
	if s.createFn == nil {
		return application.Room{}, nil
	}
	return s.createFn(ctx, params)
}

func (s *roomServiceStub) UpdateRoom(ctx context.Context, params application.UpdateRoomParams) (application.Room, error) {
	if s.updateFn == nil {
		return application.Room{}, nil
	}
	return s.updateFn(ctx, params)
}

func (s *roomServiceStub) DeleteRoom(ctx context.Context, principal application.Principal, roomID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, principal, roomID)
}

func (s *roomServiceStub) GetRoom(ctx context.Context, principal application.Principal, roomID string) (application.Room, error) {
	if s.getFn == nil {
		return application.Room{}, nil
	}
	return s.getFn(ctx, principal, roomID)
}

func (s *roomServiceStub) ListRooms(ctx context.Context, principal application.Principal) ([]application.Room, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, principal)
}

type reservationServiceStub struct {
	createFn          func(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error)
	updateFn          func(ctx context.Context, params application.UpdateReservationParams) (application.Reservation, error)
	cancelFn          func(ctx context.Context, principal application.Principal, reservationID string) error
	checkInFn         func(ctx context.Context, principal application.Principal, reservationID string) error
	createRecurringFn func(ctx context.Context, params application.CreateRecurringParams) ([]application.Reservation, error)
}

func (s *reservationServiceStub) CreateReservation(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error) {
	if s.createFn == nil {
		return application.Reservation{}, nil
	}
	return s.createFn(ctx, params)
}

func (s *reservationServiceStub) UpdateReservation(ctx context.Context, params application.UpdateReservationParams) (application.Reservation, error) {
	if s.updateFn == nil {
		return application.Reservation{}, nil
	}
	return s.updateFn(ctx, params)
}

func (s *reservationServiceStub) CancelReservation(ctx context.Context, principal application.Principal, reservationID string) error {
	if s.cancelFn == nil {
		return nil
	}
	return s.cancelFn(ctx, principal, reservationID)
}

func (s *reservationServiceStub) CheckIn(ctx context.Context, principal application.Principal, reservationID string) error {
	if s.checkInFn == nil {
		return nil
	}
	return s.checkInFn(ctx, principal, reservationID)
}

func (s *reservationServiceStub) CreateRecurringReservations(ctx context.Context, params application.CreateRecurringParams) ([]application.Reservation, error) {
	if s.createRecurringFn == nil {
		return nil, nil
	}
	return s.createRecurringFn(ctx, params)
}

type analyticsServiceStub struct {
	rateFn      func(ctx context.Context, principal application.Principal, roomID string, start, end time.Time) (float64, error)
	occupiedFn  func(ctx context.Context, principal application.Principal) (application.RoomOccupancy, error)
	availableFn func(ctx context.Context, principal application.Principal, start, end time.Time, partySize int) ([]application.Room, error)
	upcomingFn  func(ctx context.Context, principal application.Principal, userID string) ([]application.Reservation, error)
}

func (s *analyticsServiceStub) OccupancyRate(ctx context.Context, principal application.Principal, roomID string, start, end time.Time) (float64, error) {
	if s.rateFn == nil {
		return 0, nil
	}
	return s.rateFn(ctx, principal, roomID, start, end)
}

func (s *analyticsServiceStub) CurrentlyOccupiedRooms(ctx context.Context, principal application.Principal) (application.RoomOccupancy, error) {
	if s.occupiedFn == nil {
		return application.RoomOccupancy{}, nil
	}
	return s.occupiedFn(ctx, principal)
}

func (s *analyticsServiceStub) FindAvailableRooms(ctx context.Context, principal application.Principal, start, end time.Time, partySize int) ([]application.Room, error) {
	if s.availableFn == nil {
		return nil, nil
	}
	return s.availableFn(ctx, principal, start, end, partySize)
}

func (s *analyticsServiceStub) UpcomingReservations(ctx context.Context, principal application.Principal, userID string) ([]application.Reservation, error) {
	if s.upcomingFn == nil {
		return nil, nil
	}
	return s.upcomingFn(ctx, principal, userID)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(rooms *roomServiceStub, reservations *reservationServiceStub, analytics *analyticsServiceStub) http.Handler {
	logger := discardLogger()
	cfg := RouterConfig{
		Middleware: []func(http.Handler) http.Handler{RequirePrincipal(logger)},
	}
	if rooms != nil {
		cfg.Rooms = NewRoomHandler(rooms, logger)
	}
	if reservations != nil {
		cfg.Reservations = NewReservationHandler(reservations, logger)
	}
	if analytics != nil {
		cfg.Analytics = NewAnalyticsHandler(analytics, logger)
	}
	return NewRouter(cfg)
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("X-User-ID", "user-1")
	if admin {
		req.Header.Set("X-User-Admin", "true")
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeErrorResponse(t *testing.T, recorder *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestRoomHandlers(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	t.Run("create returns the stored room", func(t *testing.T) {
		t.Parallel()

		rooms := &roomServiceStub{
			createFn: func(ctx context.Context, params application.CreateRoomParams) (application.Room, error) {
				if !params.Principal.IsAdmin {
					t.Fatalf("expected admin principal, got %+v", params.Principal)
				}
				if params.Input.Name != "Sala Alfa" {
					t.Fatalf("unexpected name %q", params.Input.Name)
				}
				if params.Input.OpenTime != booking.TimeOfDay(9*60) {
					t.Fatalf("unexpected open time %v", params.Input.OpenTime)
				}
				return application.Room{
					ID:        "room-1",
					Name:      params.Input.Name,
					Type:      application.RoomTypeStandard,
					Capacity:  12,
					OpenTime:  params.Input.OpenTime,
					CloseTime: params.Input.CloseTime,
					CreatedAt: created,
					UpdatedAt: created,
				}, nil
			},
		}
		router := newTestRouter(rooms, nil, nil)

		recorder := doRequest(t, router, http.MethodPost, "/rooms",
			`{"name":"Sala Alfa","room_type":"comum","capacity":12,"open_time":"09:00","close_time":"17:30"}`, true)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var resp roomResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Room.ID != "room-1" || resp.Room.OpenTime != "09:00" || resp.Room.CloseTime != "17:30" {
			t.Fatalf("unexpected room payload: %+v", resp.Room)
		}
		if resp.Room.CreatedAt != "2026-03-09T12:00:00Z" {
			t.Fatalf("unexpected created_at %q", resp.Room.CreatedAt)
		}
	})

	t.Run("create maps validation failures to 422 with localized messages", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{FieldErrors: map[string][]string{
			"name": {"name is required"},
		}}
		rooms := &roomServiceStub{
			createFn: func(ctx context.Context, params application.CreateRoomParams) (application.Room, error) {
				return application.Room{}, vErr
			},
		}
		router := newTestRouter(rooms, nil, nil)

		recorder := doRequest(t, router, http.MethodPost, "/rooms", `{"name":""}`, true)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}

		resp := decodeErrorResponse(t, recorder)
		if got := resp.Errors["name"]; len(got) != 1 || got[0] != "O nome da sala é obrigatório." {
			t.Fatalf("unexpected localized errors: %+v", resp.Errors)
		}
	})

	t.Run("mutations by non-admins map to 403", func(t *testing.T) {
		t.Parallel()

		rooms := &roomServiceStub{
			createFn: func(ctx context.Context, params application.CreateRoomParams) (application.Room, error) {
				return application.Room{}, application.ErrUnauthorized
			},
		}
		router := newTestRouter(rooms, nil, nil)

		recorder := doRequest(t, router, http.MethodPost, "/rooms", `{"name":"Sala Alfa"}`, false)
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", recorder.Code)
		}
		if resp := decodeErrorResponse(t, recorder); resp.ErrorCode != "FORBIDDEN" {
			t.Fatalf("unexpected error code %q", resp.ErrorCode)
		}
	})

	t.Run("delete of a room with active reservations maps to 409", func(t *testing.T) {
		t.Parallel()

		rooms := &roomServiceStub{
			deleteFn: func(ctx context.Context, principal application.Principal, roomID string) error {
				if roomID != "room-9" {
					t.Fatalf("unexpected room id %q", roomID)
				}
				return application.ErrRoomInUse
			},
		}
		router := newTestRouter(rooms, nil, nil)

		recorder := doRequest(t, router, http.MethodDelete, "/rooms/room-9", "", true)
		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
		if resp := decodeErrorResponse(t, recorder); resp.ErrorCode != "ROOM_IN_USE" {
			t.Fatalf("unexpected error code %q", resp.ErrorCode)
		}
	})

	t.Run("unknown room maps to 404", func(t *testing.T) {
		t.Parallel()

		rooms := &roomServiceStub{
			getFn: func(ctx context.Context, principal application.Principal, roomID string) (application.Room, error) {
				return application.Room{}, application.ErrNotFound
			},
		}
		router := newTestRouter(rooms, nil, nil)

		recorder := doRequest(t, router, http.MethodGet, "/rooms/missing", "", false)
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&roomServiceStub{}, nil, nil)

		recorder := doRequest(t, router, http.MethodPost, "/rooms", `{"name":`, true)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})
}

func TestReservationHandlers(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	t.Run("create returns 201 with the booked interval", func(t *testing.T) {
		t.Parallel()

		reservations := &reservationServiceStub{
			createFn: func(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error) {
				if params.Input.RoomID != "room-1" || params.Input.PartySize != 4 {
					t.Fatalf("unexpected input %+v", params.Input)
				}
				if !params.Input.Start.Equal(start) {
					t.Fatalf("unexpected start %v", params.Input.Start)
				}
				return application.Reservation{
					ID:        "res-1",
					RoomID:    params.Input.RoomID,
					Start:     params.Input.Start,
					End:       params.Input.End,
					PartySize: params.Input.PartySize,
					CreatedAt: start,
					UpdatedAt: start,
				}, nil
			},
		}
		router := newTestRouter(nil, reservations, nil)

		recorder := doRequest(t, router, http.MethodPost, "/reservations",
			`{"room_id":"room-1","start_at":"2026-03-10T10:00:00Z","end_at":"2026-03-10T11:00:00Z","party_size":4}`, false)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var resp reservationResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Reservation.ID != "res-1" || resp.Reservation.StartAt != "2026-03-10T10:00:00Z" {
			t.Fatalf("unexpected payload: %+v", resp.Reservation)
		}
	})

	t.Run("store conflicts surface as 409", func(t *testing.T) {
		t.Parallel()

		reservations := &reservationServiceStub{
			createFn: func(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error) {
				return application.Reservation{}, application.ErrStoreConflict
			},
		}
		router := newTestRouter(nil, reservations, nil)

		recorder := doRequest(t, router, http.MethodPost, "/reservations",
			`{"room_id":"room-1","start_at":"2026-03-10T10:00:00Z","end_at":"2026-03-10T11:00:00Z"}`, false)
		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
		if resp := decodeErrorResponse(t, recorder); resp.ErrorCode != "BOOKING_CONFLICT" {
			t.Fatalf("unexpected error code %q", resp.ErrorCode)
		}
	})

	t.Run("late cancellation maps to 422", func(t *testing.T) {
		t.Parallel()

		reservations := &reservationServiceStub{
			cancelFn: func(ctx context.Context, principal application.Principal, reservationID string) error {
				return application.ErrTooLateToCancel
			},
		}
		router := newTestRouter(nil, reservations, nil)

		recorder := doRequest(t, router, http.MethodDelete, "/reservations/res-1", "", false)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
		if resp := decodeErrorResponse(t, recorder); resp.ErrorCode != "CANCEL_TOO_LATE" {
			t.Fatalf("unexpected error code %q", resp.ErrorCode)
		}
	})

	t.Run("check-in routes through the checkin suffix", func(t *testing.T) {
		t.Parallel()

		var captured string
		reservations := &reservationServiceStub{
			checkInFn: func(ctx context.Context, principal application.Principal, reservationID string) error {
				captured = reservationID
				return nil
			},
		}
		router := newTestRouter(nil, reservations, nil)

		recorder := doRequest(t, router, http.MethodPost, "/reservations/res-7/checkin", "", false)
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if captured != "res-7" {
			t.Fatalf("expected check-in for res-7, got %q", captured)
		}
	})

	t.Run("recurring creation returns the whole batch", func(t *testing.T) {
		t.Parallel()

		reservations := &reservationServiceStub{
			createRecurringFn: func(ctx context.Context, params application.CreateRecurringParams) ([]application.Reservation, error) {
				req := params.Request
				if req.Weekday != time.Wednesday || req.WeekCount != 3 {
					t.Fatalf("unexpected request %+v", req)
				}
				if req.StartTime != booking.TimeOfDay(14*60) {
					t.Fatalf("unexpected start time %v", req.StartTime)
				}
				if got := req.FirstDate.Format("2006-01-02"); got != "2026-03-11" {
					t.Fatalf("unexpected first date %s", got)
				}
				return []application.Reservation{
					{ID: "res-1", RoomID: req.RoomID},
					{ID: "res-2", RoomID: req.RoomID},
					{ID: "res-3", RoomID: req.RoomID},
				}, nil
			},
		}
		router := newTestRouter(nil, reservations, nil)

		recorder := doRequest(t, router, http.MethodPost, "/reservations/recurring",
			`{"room_id":"room-1","weekday":3,"start_time":"14:00","end_time":"15:00","first_date":"2026-03-11","week_count":3}`, false)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var resp listReservationsResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Reservations) != 3 {
			t.Fatalf("expected 3 reservations, got %d", len(resp.Reservations))
		}
	})

	t.Run("recurring batch violations localize occurrence dates", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{FieldErrors: map[string][]string{
			"occurrences": {"the room is already reserved on 2026-03-18"},
		}}
		reservations := &reservationServiceStub{
			createRecurringFn: func(ctx context.Context, params application.CreateRecurringParams) ([]application.Reservation, error) {
				return nil, vErr
			},
		}
		router := newTestRouter(nil, reservations, nil)

		recorder := doRequest(t, router, http.MethodPost, "/reservations/recurring",
			`{"room_id":"room-1","weekday":3,"start_time":"14:00","end_time":"15:00","first_date":"2026-03-11","week_count":3}`, false)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}

		resp := decodeErrorResponse(t, recorder)
		if got := resp.Errors["occurrences"]; len(got) != 1 || got[0] != "A sala já está reservada em 2026-03-18." {
			t.Fatalf("unexpected localized errors: %+v", resp.Errors)
		}
	})

	t.Run("recurring rejects out of range weekdays before the service", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(nil, &reservationServiceStub{
			createRecurringFn: func(ctx context.Context, params application.CreateRecurringParams) ([]application.Reservation, error) {
				t.Fatal("service should not be reached")
				return nil, nil
			},
		}, nil)

		recorder := doRequest(t, router, http.MethodPost, "/reservations/recurring",
			`{"room_id":"room-1","weekday":7,"start_time":"14:00","end_time":"15:00","first_date":"2026-03-11","week_count":3}`, false)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})
}

func TestAnalyticsHandlers(t *testing.T) {
	t.Parallel()

	t.Run("occupancy rate reports the room and interval", func(t *testing.T) {
		t.Parallel()

		analytics := &analyticsServiceStub{
			rateFn: func(ctx context.Context, principal application.Principal, roomID string, start, end time.Time) (float64, error) {
				if roomID != "room-1" {
					t.Fatalf("unexpected room id %q", roomID)
				}
				return 37.5, nil
			},
		}
		router := newTestRouter(&roomServiceStub{}, nil, analytics)

		recorder := doRequest(t, router, http.MethodGet,
			"/rooms/room-1/occupancy?start=2026-03-09T00:00:00Z&end=2026-03-10T00:00:00Z", "", false)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var resp occupancyRateResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.RoomID != "room-1" || resp.OccupancyRate != 37.5 {
			t.Fatalf("unexpected payload: %+v", resp)
		}
	})

	t.Run("occupancy rate requires a valid interval", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&roomServiceStub{}, nil, &analyticsServiceStub{})

		recorder := doRequest(t, router, http.MethodGet,
			"/rooms/room-1/occupancy?start=yesterday&end=2026-03-10T00:00:00Z", "", false)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("occupancy snapshot lists both sets", func(t *testing.T) {
		t.Parallel()

		analytics := &analyticsServiceStub{
			occupiedFn: func(ctx context.Context, principal application.Principal) (application.RoomOccupancy, error) {
				return application.RoomOccupancy{
					Occupied:  []string{"room-1"},
					Available: []string{"room-2", "room-3"},
				}, nil
			},
		}
		router := newTestRouter(nil, nil, analytics)

		recorder := doRequest(t, router, http.MethodGet, "/occupancy", "", false)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}

		var resp occupancySnapshotResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Occupied) != 1 || len(resp.Available) != 2 {
			t.Fatalf("unexpected snapshot: %+v", resp)
		}
	})

	t.Run("availability rejects a non-positive party size", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(nil, nil, &analyticsServiceStub{})

		recorder := doRequest(t, router, http.MethodGet,
			"/availability?start=2026-03-10T10:00:00Z&end=2026-03-10T11:00:00Z&party_size=0", "", false)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("reminders default to the caller", func(t *testing.T) {
		t.Parallel()

		var captured string
		analytics := &analyticsServiceStub{
			upcomingFn: func(ctx context.Context, principal application.Principal, userID string) ([]application.Reservation, error) {
				captured = userID
				return nil, nil
			},
		}
		router := newTestRouter(nil, nil, analytics)

		recorder := doRequest(t, router, http.MethodGet, "/reminders", "", false)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if captured != "user-1" {
			t.Fatalf("expected reminders for user-1, got %q", captured)
		}
	})
}

func TestRouterMethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&roomServiceStub{}, &reservationServiceStub{}, &analyticsServiceStub{})

	tests := []struct {
		name   string
		method string
		target string
		allow  string
	}{
		{name: "rooms collection", method: http.MethodPatch, target: "/rooms", allow: "GET, POST"},
		{name: "reservations collection", method: http.MethodGet, target: "/reservations", allow: "POST"},
		{name: "reservation resource", method: http.MethodGet, target: "/reservations/res-1", allow: "PUT, DELETE"},
		{name: "checkin", method: http.MethodGet, target: "/reservations/res-1/checkin", allow: "POST"},
		{name: "availability", method: http.MethodPost, target: "/availability", allow: "GET"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			recorder := doRequest(t, router, tc.method, tc.target, "", false)
			if recorder.Code != http.StatusMethodNotAllowed {
				t.Fatalf("expected 405, got %d", recorder.Code)
			}
			if got := recorder.Header().Get("Allow"); got != tc.allow {
				t.Fatalf("expected Allow %q, got %q", tc.allow, got)
			}
		})
	}
}

func TestTranslateValidationMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "capacity keeps both figures",
			message: "party size (12) exceeds the room capacity (10)",
			want:    "O número de pessoas excede a capacidade da sala. (12 de 10)",
		},
		{
			name:    "lead time",
			message: "reservations require at least 15 minutes of notice",
			want:    "A reserva deve ser feita com pelo menos 15 minutos de antecedência.",
		},
		{
			name:    "past occurrence keeps the date",
			message: "occurrence on 2026-03-04 is in the past",
			want:    "A ocorrência em 2026-03-04 está no passado.",
		},
		{
			name:    "unknown messages pass through",
			message: "some new rule",
			want:    "some new rule",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := translateValidationMessage(tc.message); got != tc.want {
				t.Fatalf("translateValidationMessage(%q) = %q, want %q", tc.message, got, tc.want)
			}
		})
	}
}
