package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/code-challenge/internal/domain/challenge"
)

const (
	completionStatusCompleted = "completed"
	completionStatusSkipped   = "skipped"
	completionStatusFailed    = "failed"
)

type CompletionResult struct {
	DueCount       int                    `json:"due_count"`
	CompletedCount int                    `json:"completed_count"`
	SkippedCount   int                    `json:"skipped_count"`
	FailedCount    int                    `json:"failed_count"`
	WorkerCount    int                    `json:"worker_count"`
	Tasks          []CompletionTaskResult `json:"tasks"`
}

type CompletionTaskResult struct {
	ChallengeID string `json:"challenge_id"`
	Status      string `json:"status"`
	DurationMs  int64  `json:"duration_ms"`
	Message     string `json:"message,omitempty"`
}

// CompleteDue moves every ACTIVE challenge whose end date has passed to COMPLETED.
func (s *ChallengeService) CompleteDue(ctx context.Context) (CompletionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.CompleteDue")
	defer span.End()

	now := s.now().UTC()
	ids, err := s.repo.ListDueChallengeIDs(ctx, now)
	if err != nil {
		return CompletionResult{}, s.logFailure(ctx, "list due challenges failed", "", MarkTransient(err, "list due challenges"))
	}

	workerCount := s.cfg.CompletionWorkers
	if workerCount > len(ids) {
		workerCount = len(ids)
	}
	result := CompletionResult{
		DueCount:    len(ids),
		WorkerCount: workerCount,
		Tasks:       make([]CompletionTaskResult, 0, len(ids)),
	}
	if len(ids) == 0 {
		return result, nil
	}

	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("create completion worker pool: %w", err)
	}
	defer workers.Release()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, challengeID := range ids {
		challengeID := challengeID
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			start := time.Now()
			status, message := s.completeOne(ctx, challengeID, now)
			row := CompletionTaskResult{
				ChallengeID: challengeID,
				Status:      status,
				Message:     message,
				DurationMs:  time.Since(start).Milliseconds(),
			}

			mu.Lock()
			defer mu.Unlock()
			result.Tasks = append(result.Tasks, row)
			switch status {
			case completionStatusCompleted:
				result.CompletedCount++
			case completionStatusSkipped:
				result.SkippedCount++
			default:
				result.FailedCount++
			}
		}); err != nil {
			wg.Done()
			return CompletionResult{}, fmt.Errorf("submit completion task: %w", err)
		}
	}
	wg.Wait()

	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].ChallengeID < result.Tasks[j].ChallengeID
	})

	s.logger.InfoContext(ctx, "completion sweep finished",
		"due", result.DueCount,
		"completed", result.CompletedCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func (s *ChallengeService) completeOne(ctx context.Context, challengeID string, now time.Time) (string, string) {
	changed := false
	err := s.runInTx(ctx, "complete challenge", func(ctx context.Context, tx challenge.TxRepository) error {
		current, err := lockChallenge(ctx, tx, challengeID)
		if err != nil {
			return err
		}
		next, ok, err := challenge.Complete(current, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		changed = true
		if err := tx.SaveChallenge(ctx, next); err != nil {
			return MarkTransient(err, "save challenge")
		}
		if err := tx.AppendStatusEvent(ctx, challenge.NewStatusEvent(current, next, "")); err != nil {
			return MarkTransient(err, "append status event")
		}
		return nil
	})
	if err != nil {
		// Another actor may have cancelled the challenge between listing and locking.
		if !IsRetryable(err) {
			s.logger.WarnContext(ctx, "challenge completion skipped", "challenge_id", challengeID, "error", err)
			return completionStatusSkipped, err.Error()
		}
		s.logger.ErrorContext(ctx, "challenge completion failed", "challenge_id", challengeID, "error", err)
		return completionStatusFailed, err.Error()
	}
	if !changed {
		return completionStatusSkipped, "already completed"
	}

	// Final penalties are written back once the challenge is closed.
	if _, err := s.buildView(ctx, challengeID, "", now); err != nil {
		s.logger.ErrorContext(ctx, "final leaderboard reconcile failed", "challenge_id", challengeID, "error", err)
	}
	return completionStatusCompleted, ""
}
