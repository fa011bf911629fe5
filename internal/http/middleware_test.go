package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/room-booking/internal/application"
)

func TestRequirePrincipal(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without an identity header", func(t *testing.T) {
		t.Parallel()

		handler := RequirePrincipal(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called without a principal")
		}))

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("attaches the principal to the request context", func(t *testing.T) {
		t.Parallel()

		captured := make(chan application.Principal, 1)
		handler := RequirePrincipal(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				t.Error("expected principal in request context")
			}
			captured <- principal
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set("X-User-ID", "user-42")
		req.Header.Set("X-User-Admin", "TRUE")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		principal := <-captured
		if principal.UserID != "user-42" || !principal.IsAdmin {
			t.Fatalf("unexpected principal %+v", principal)
		}
	})

	t.Run("blank identity header counts as missing", func(t *testing.T) {
		t.Parallel()

		handler := RequirePrincipal(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set("X-User-ID", "   ")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("returns 429 once the burst is exhausted", func(t *testing.T) {
		t.Parallel()

		// Refill is effectively frozen at a very low rate so only the burst
		// tokens are available during the test.
		handler := RateLimit(0.0001, 2, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		statuses := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)
			statuses = append(statuses, recorder.Code)
		}

		if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
			t.Fatalf("expected first two requests to pass, got %v", statuses)
		}
		if statuses[2] != http.StatusTooManyRequests {
			t.Fatalf("expected third request to be limited, got %v", statuses)
		}

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		if resp := decodeErrorResponse(t, recorder); resp.ErrorCode != "RATE_LIMITED" {
			t.Fatalf("unexpected error code %q", resp.ErrorCode)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	t.Run("exposes a request scoped logger to handlers", func(t *testing.T) {
		t.Parallel()

		handler := RequestLogger(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if LoggerFromContext(r.Context()) == nil {
				t.Error("expected logger in request context")
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
	})
}
