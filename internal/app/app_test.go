package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/code-challenge/internal/config"
	"github.com/riskibarqy/code-challenge/internal/platform/logging"
	"github.com/riskibarqy/code-challenge/internal/platform/resilience"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                  config.EnvDev,
		HTTPAddr:                "127.0.0.1:0",
		ReadTimeout:             time.Second,
		WriteTimeout:            time.Second,
		StorageDriver:           config.StorageMemory,
		CacheEnabled:            true,
		CacheTTL:                time.Minute,
		CORSAllowedOrigins:      []string{"*"},
		AnubisBaseURL:           "http://127.0.0.1:1",
		AnubisIntrospectURL:     "/v1/auth/introspect",
		AnubisTimeout:           time.Second,
		AnubisCircuit:           resilience.DefaultCircuitBreakerConfig(),
		InternalJobToken:        "job-token",
		CompletionSweepEnabled:  true,
		CompletionSweepInterval: time.Minute,
	}
}

func TestNew_MemoryStorage(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if a.sweeper == nil {
		t.Fatalf("expected completion sweeper to be configured")
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/complete-due", nil)
	req.Header.Set("X-Internal-Job-Token", "job-token")
	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected job 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "empty addr", mutate: func(c *config.Config) { c.HTTPAddr = "" }},
		{name: "unknown driver", mutate: func(c *config.Config) { c.StorageDriver = "sqlite" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := memoryConfig()
			tc.mutate(&cfg)
			if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := memoryConfig()
	cfg.CompletionSweepEnabled = false
	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
