package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/code-challenge/internal/config"
	"github.com/riskibarqy/code-challenge/internal/platform/logging"
)

func TestStart_DisabledIsNoop(t *testing.T) {
	cfg := config.Config{
		AppEnv:         config.EnvDev,
		ServiceName:    "code-challenge-api",
		ServiceVersion: "dev",
	}

	shutdown, err := Start(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestStart_UptraceWithoutDSNStaysDisabled(t *testing.T) {
	cfg := config.Config{
		AppEnv:         config.EnvDev,
		ServiceName:    "code-challenge-api",
		UptraceEnabled: true,
	}

	shutdown, err := Start(cfg, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
