package anubis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	basecache "github.com/riskibarqy/code-challenge/internal/platform/cache"
	"github.com/riskibarqy/code-challenge/internal/platform/logging"
	"github.com/riskibarqy/code-challenge/internal/platform/resilience"
	"github.com/riskibarqy/code-challenge/internal/usecase"
)

func newTestClient(srv *httptest.Server, breaker *resilience.CircuitBreaker, principals *basecache.Store) *Client {
	return NewClient(
		srv.Client(),
		ClientConfig{BaseURL: srv.URL + "/", IntrospectPath: "v1/auth/introspect", AdminKey: "admin-secret"},
		breaker,
		principals,
		logging.NewNop(),
	)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoded, _ := sonic.Marshal(body)
	_, _ = w.Write(encoded)
}

func TestClientVerifyAccessToken_SendsAdminKeyAndParsesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1/auth/introspect" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-admin-key"); got != "admin-secret" {
			t.Errorf("unexpected x-admin-key: %s", got)
		}

		var req map[string]string
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if req["token"] != "token-abc" {
			t.Errorf("unexpected token value: %s", req["token"])
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"active":  true,
			"user_id": "user-ada",
			"email":   "ada@example.com",
			"exp":     1730000000,
		})
	}))
	defer srv.Close()

	principal, err := newTestClient(srv, nil, nil).VerifyAccessToken(context.Background(), " token-abc ")
	if err != nil {
		t.Fatalf("verify token failed: %v", err)
	}
	if principal.UserID != "user-ada" || principal.Email != "ada@example.com" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestClientVerifyAccessToken_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		status        int
		body          any
		wantTransient bool
	}{
		{name: "inactive", status: http.StatusOK, body: map[string]any{"active": false}},
		{name: "missing user id", status: http.StatusOK, body: map[string]any{"active": true}},
		{name: "unauthorized", status: http.StatusUnauthorized, body: map[string]any{"error": "bad key"}},
		{name: "forbidden", status: http.StatusForbidden, body: map[string]any{"error": "forbidden"}},
		{name: "bad request", status: http.StatusBadRequest, body: map[string]any{"error": "bad"}},
		{name: "server error", status: http.StatusInternalServerError, body: map[string]any{"error": "boom"}, wantTransient: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: map[string]any{}, wantTransient: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv, nil, nil).VerifyAccessToken(context.Background(), "token")
			if tc.wantTransient {
				if !usecase.IsRetryable(err) {
					t.Fatalf("expected transient error, got %v", err)
				}
				return
			}
			if !errors.Is(err, usecase.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestClientVerifyAccessToken_EmptyTokenSkipsRemote(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, nil, nil).VerifyAccessToken(context.Background(), "  ")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no remote call, got %d", calls.Load())
	}
}

func TestClientVerifyAccessToken_CircuitOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "upstream"})
	}))
	defer srv.Close()

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
	client := newTestClient(srv, breaker, nil)

	for range 2 {
		if _, err := client.VerifyAccessToken(context.Background(), "token"); !usecase.IsRetryable(err) {
			t.Fatalf("expected transient error, got %v", err)
		}
	}

	_, err := client.VerifyAccessToken(context.Background(), "token")
	if !errors.Is(err, resilience.ErrCircuitOpen) || !usecase.IsRetryable(err) {
		t.Fatalf("expected transient circuit-open error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected open circuit to skip the remote call, got %d calls", calls.Load())
	}
}

func TestClientVerifyAccessToken_RejectedTokensKeepCircuitClosed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
	}))
	defer srv.Close()

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1})
	client := newTestClient(srv, breaker, nil)

	for range 3 {
		_, _ = client.VerifyAccessToken(context.Background(), "revoked")
	}
	if state := breaker.State(); state != resilience.CircuitStateClosed {
		t.Fatalf("expected closed circuit, got %s", state)
	}
}

func TestClientVerifyAccessToken_CachesPrincipals(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"active": true, "user_id": "user-grace"})
	}))
	defer srv.Close()

	client := newTestClient(srv, nil, basecache.NewStore(time.Minute))
	for range 2 {
		principal, err := client.VerifyAccessToken(context.Background(), "cached-token")
		if err != nil {
			t.Fatalf("verify token failed: %v", err)
		}
		if principal.UserID != "user-grace" {
			t.Fatalf("unexpected user id: %s", principal.UserID)
		}
	}

	if calls.Load() != 1 {
		t.Fatalf("expected one introspection call with cache, got %d", calls.Load())
	}
}
