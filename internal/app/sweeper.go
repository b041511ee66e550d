package app

import (
	"context"
	"time"

	"github.com/riskibarqy/code-challenge/internal/platform/logging"
	"github.com/riskibarqy/code-challenge/internal/usecase"
)

const defaultSweepInterval = 5 * time.Minute

type dueCompleter interface {
	CompleteDue(ctx context.Context) (usecase.CompletionResult, error)
}

// CompletionSweeper periodically completes challenges whose end date has passed.
type CompletionSweeper struct {
	completer dueCompleter
	interval  time.Duration
	logger    *logging.Logger
}

func NewCompletionSweeper(completer dueCompleter, interval time.Duration, logger *logging.Logger) *CompletionSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CompletionSweeper{
		completer: completer,
		interval:  interval,
		logger:    logger,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *CompletionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sweep only reports failures; CompleteDue logs its own summary.
func (s *CompletionSweeper) sweep(ctx context.Context) {
	if _, err := s.completer.CompleteDue(ctx); err != nil && ctx.Err() == nil {
		s.logger.ErrorContext(ctx, "completion sweep failed", "error", err)
	}
}
