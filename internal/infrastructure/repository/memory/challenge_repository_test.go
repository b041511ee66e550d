package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/code-challenge/internal/domain/challenge"
)

func seedChallenge(t *testing.T, repo *ChallengeRepository) challenge.Challenge {
	t.Helper()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	item := challenge.Challenge{
		ID:                   "ch-1",
		Name:                 "streak",
		Description:          "daily",
		OwnerID:              "owner",
		StartDate:            start,
		EndDate:              start.Add(10 * challenge.Day),
		MinSubmissionsPerDay: 1,
		Status:               challenge.StatusActive,
	}
	err := repo.RunInTx(t.Context(), func(ctx context.Context, tx challenge.TxRepository) error {
		return tx.CreateChallenge(ctx, item)
	})
	if err != nil {
		t.Fatalf("seed challenge: %v", err)
	}
	return item
}

func TestChallengeRepository_RunInTxRollsBackOnError(t *testing.T) {
	repo := NewChallengeRepository()
	item := seedChallenge(t, repo)
	boom := errors.New("boom")

	err := repo.RunInTx(t.Context(), func(ctx context.Context, tx challenge.TxRepository) error {
		current, _, err := tx.LockChallenge(ctx, item.ID)
		if err != nil {
			return err
		}
		current.Status = challenge.StatusCancelled
		if err := tx.SaveChallenge(ctx, current); err != nil {
			return err
		}
		if err := tx.SaveMembership(ctx, challenge.Membership{ChallengeID: item.ID, UserID: "u1"}); err != nil {
			return err
		}
		if err := tx.AppendStatusEvent(ctx, challenge.StatusEvent{ChallengeID: item.ID, From: challenge.StatusActive, To: challenge.StatusCancelled}); err != nil {
			return err
		}
		if _, err := tx.IncrementSubmissionCount(ctx, item.ID, "u1", item.StartDate); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	got, _, _ := repo.GetChallenge(t.Context(), item.ID)
	if got.Status != challenge.StatusActive {
		t.Fatalf("challenge status not rolled back: %s", got.Status)
	}
	members, _ := repo.ListMemberships(t.Context(), item.ID)
	if len(members) != 0 {
		t.Fatalf("membership not rolled back: %+v", members)
	}
	events, _ := repo.ListStatusEvents(t.Context(), item.ID)
	if len(events) != 0 {
		t.Fatalf("status event not rolled back: %+v", events)
	}
	counts, _ := repo.ListSubmissionCounts(t.Context(), item.ID, "u1", challenge.Span(item))
	if len(counts) != 0 {
		t.Fatalf("submission count not rolled back: %+v", counts)
	}
}

func TestChallengeRepository_ConcurrentLockedJoinsKeepOneMembership(t *testing.T) {
	repo := NewChallengeRepository()
	item := seedChallenge(t, repo)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.RunInTx(context.Background(), func(ctx context.Context, tx challenge.TxRepository) error {
				if _, _, err := tx.LockChallenge(ctx, item.ID); err != nil {
					return err
				}
				members, err := tx.ListMemberships(ctx, item.ID)
				if err != nil {
					return err
				}
				if len(members) > 0 {
					return challenge.ErrAlreadyMember
				}
				return tx.SaveMembership(ctx, challenge.Membership{ChallengeID: item.ID, UserID: "u1"})
			})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, challenge.ErrAlreadyMember) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful join, got %d", succeeded)
	}
	members, _ := repo.ListMemberships(t.Context(), item.ID)
	if len(members) != 1 {
		t.Fatalf("expected one membership, got %d", len(members))
	}
}

func TestChallengeRepository_SubmissionCountsAndDueIDs(t *testing.T) {
	repo := NewChallengeRepository()
	item := seedChallenge(t, repo)

	for i := 0; i < 3; i++ {
		err := repo.RunInTx(t.Context(), func(ctx context.Context, tx challenge.TxRepository) error {
			_, err := tx.IncrementSubmissionCount(ctx, item.ID, "u1", item.StartDate.Add(challenge.Day))
			return err
		})
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	counts, err := repo.ListSubmissionCounts(t.Context(), item.ID, "u1", challenge.Span(item))
	if err != nil {
		t.Fatalf("list counts: %v", err)
	}
	if len(counts) != 1 || counts[0].Count != 3 || !counts[0].Day.Equal(item.StartDate.Add(challenge.Day)) {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	due, _ := repo.ListDueChallengeIDs(t.Context(), item.EndDate.Add(-time.Second))
	if len(due) != 0 {
		t.Fatalf("challenge is not due yet: %v", due)
	}
	due, _ = repo.ListDueChallengeIDs(t.Context(), item.EndDate)
	if len(due) != 1 || due[0] != item.ID {
		t.Fatalf("unexpected due ids: %v", due)
	}
}

func TestUserRepository_Search(t *testing.T) {
	repo := NewUserRepository(SeedUsers())

	got, err := repo.Search(t.Context(), "gRaCe", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != UserIDGrace {
		t.Fatalf("unexpected search result: %+v", got)
	}

	all, _ := repo.Search(t.Context(), "", 2)
	if len(all) != 2 || all[0].ID != UserIDAda {
		t.Fatalf("unexpected limited result: %+v", all)
	}

	names, _ := repo.GetDisplayNames(t.Context(), []string{UserIDKen, "missing"})
	if names[UserIDKen] != "Ken Thompson" || len(names) != 1 {
		t.Fatalf("unexpected names: %+v", names)
	}
}
