package challenge

import (
	"context"
	"time"
)

// Repository describes challenge persistence needs from use cases.
type Repository interface {
	GetChallenge(ctx context.Context, challengeID string) (Challenge, bool, error)
	ListMemberships(ctx context.Context, challengeID string) ([]Membership, error)
	ListSubmissionCounts(ctx context.Context, challengeID, userID string, span DayRange) ([]DailyCount, error)
	ListStatusEvents(ctx context.Context, challengeID string) ([]StatusEvent, error)
	GetPendingInvitation(ctx context.Context, challengeID, userID string) (Invitation, bool, error)
	ListDueChallengeIDs(ctx context.Context, now time.Time) ([]string, error)
	UpdateMembershipPenalty(ctx context.Context, challengeID, userID string, totalPenalty int64) error
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

// TxRepository is the transactional view handed to RunInTx callbacks. Every write
// is rolled back when the callback returns an error.
type TxRepository interface {
	// LockChallenge loads the challenge and serializes further mutations of it until the tx ends.
	LockChallenge(ctx context.Context, challengeID string) (Challenge, bool, error)
	ListMemberships(ctx context.Context, challengeID string) ([]Membership, error)
	GetPendingInvitation(ctx context.Context, challengeID, userID string) (Invitation, bool, error)
	CreateChallenge(ctx context.Context, c Challenge) error
	SaveChallenge(ctx context.Context, c Challenge) error
	SaveMembership(ctx context.Context, membership Membership) error
	SaveInvitation(ctx context.Context, invitation Invitation) error
	AppendStatusEvent(ctx context.Context, event StatusEvent) error
	IncrementSubmissionCount(ctx context.Context, challengeID, userID string, day time.Time) (DailyCount, error)
}
