package observability

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/code-challenge/internal/config"
	"github.com/riskibarqy/code-challenge/internal/platform/logging"
)

// Shutdown flushes and stops whatever Start enabled.
type Shutdown func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Start enables tracing and profiling according to cfg. On error nothing is
// left running.
func Start(cfg config.Config, logger *logging.Logger) (Shutdown, error) {
	if logger == nil {
		logger = logging.Default()
	}

	stopTracing, err := initUptrace(cfg, logger)
	if err != nil {
		return nil, crerr.Wrap(err, "init uptrace")
	}

	stopProfiling, err := initPyroscope(cfg, logger)
	if err != nil {
		_ = stopTracing(context.Background())
		return nil, crerr.Wrap(err, "init pyroscope")
	}

	return func(ctx context.Context) error {
		return crerr.CombineErrors(stopProfiling(ctx), stopTracing(ctx))
	}, nil
}
