package challenge

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/code-challenge/internal/domain/user"
)

// CanJoin decides whether userID may join c and returns the membership to persist.
// invitation may be nil; it only matters for private challenges.
func CanJoin(c Challenge, userID string, existingMemberIDs []string, invitation *Invitation, now time.Time) (Membership, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Membership{}, fmtInvalid("user id is required")
	}

	if containsID(existingMemberIDs, userID) {
		return Membership{}, fmt.Errorf("%w: challenge=%s user=%s", ErrAlreadyMember, c.ID, userID)
	}
	if c.IsPrivate && !invitation.ValidFor(c.ID, userID) {
		return Membership{}, fmt.Errorf("%w: challenge=%s user=%s", ErrInvitationRequired, c.ID, userID)
	}
	if err := closedCheck(c); err != nil {
		return Membership{}, err
	}

	membership := Membership{
		ChallengeID: c.ID,
		UserID:      userID,
		JoinedAt:    now.UTC(),
	}
	if c.IsPrivate {
		membership.InvitedBy = invitation.InvitedBy
	}
	return membership, nil
}

// CanInvite decides whether actorID may invite candidateID into c.
func CanInvite(c Challenge, actorID, candidateID string, existingMemberIDs []string) error {
	if err := canManageInvitations(c, actorID); err != nil {
		return err
	}
	if strings.TrimSpace(candidateID) == "" {
		return fmtInvalid("candidate id is required")
	}
	if containsID(existingMemberIDs, candidateID) {
		return fmt.Errorf("%w: challenge=%s user=%s", ErrAlreadyMember, c.ID, candidateID)
	}
	return closedCheck(c)
}

// CanListInviteCandidates applies the candidate-independent part of CanInvite.
func CanListInviteCandidates(c Challenge, actorID string) error {
	if err := canManageInvitations(c, actorID); err != nil {
		return err
	}
	return closedCheck(c)
}

func canManageInvitations(c Challenge, actorID string) error {
	if actorID == "" || actorID != c.OwnerID {
		return fmt.Errorf("%w: challenge=%s", ErrUnauthorizedInvite, c.ID)
	}
	if !c.IsPrivate {
		return fmt.Errorf("%w: challenge=%s", ErrChallengeNotPrivate, c.ID)
	}
	return nil
}

func closedCheck(c Challenge) error {
	if c.Status.IsTerminal() {
		return fmt.Errorf("%w: challenge=%s status=%s", ErrChallengeClosed, c.ID, c.Status)
	}
	return nil
}

// InviteCandidates removes existing members from the pool shown to an inviter.
// Order is preserved and duplicates are dropped.
func InviteCandidates(candidates []user.Profile, existingMemberIDs []string) []user.Profile {
	excluded := make(map[string]struct{}, len(existingMemberIDs)+len(candidates))
	for _, id := range existingMemberIDs {
		excluded[id] = struct{}{}
	}

	out := make([]user.Profile, 0, len(candidates))
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate.ID) == "" {
			continue
		}
		if _, skip := excluded[candidate.ID]; skip {
			continue
		}
		excluded[candidate.ID] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// NewInvitation builds a pending invitation. Callers must run CanInvite first.
func NewInvitation(id string, c Challenge, candidateID string, now time.Time) Invitation {
	return Invitation{
		ID:          id,
		ChallengeID: c.ID,
		UserID:      candidateID,
		InvitedBy:   c.OwnerID,
		CreatedAt:   now.UTC(),
	}
}

// Consume marks the invitation used.
func (i Invitation) Consume(now time.Time) Invitation {
	consumedAt := now.UTC()
	i.ConsumedAt = &consumedAt
	return i
}

func containsID(ids []string, id string) bool {
	for _, item := range ids {
		if item == id {
			return true
		}
	}
	return false
}
