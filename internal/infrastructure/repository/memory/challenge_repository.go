package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/code-challenge/internal/domain/challenge"
)

// ChallengeRepository keeps challenges in process memory. Mutations of one
// challenge are serialized through a per-challenge lock taken by LockChallenge.
type ChallengeRepository struct {
	mu          sync.RWMutex
	challenges  map[string]challenge.Challenge
	memberships map[string][]challenge.Membership
	invitations map[string][]challenge.Invitation
	events      map[string][]challenge.StatusEvent
	counts      map[string]map[string]map[int64]int

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewChallengeRepository() *ChallengeRepository {
	return &ChallengeRepository{
		challenges:  make(map[string]challenge.Challenge),
		memberships: make(map[string][]challenge.Membership),
		invitations: make(map[string][]challenge.Invitation),
		events:      make(map[string][]challenge.StatusEvent),
		counts:      make(map[string]map[string]map[int64]int),
		locks:       make(map[string]*sync.Mutex),
	}
}

func (r *ChallengeRepository) GetChallenge(_ context.Context, challengeID string) (challenge.Challenge, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.challenges[challengeID]
	if !ok {
		return challenge.Challenge{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *ChallengeRepository) ListMemberships(_ context.Context, challengeID string) ([]challenge.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]challenge.Membership(nil), r.memberships[challengeID]...), nil
}

func (r *ChallengeRepository) ListSubmissionCounts(_ context.Context, challengeID, userID string, span challenge.DayRange) ([]challenge.DailyCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byDay := r.counts[challengeID][userID]
	out := make([]challenge.DailyCount, 0, len(byDay))
	for day, count := range byDay {
		at := time.Unix(0, day).UTC()
		if !span.Contains(at) {
			continue
		}
		out = append(out, challenge.DailyCount{Day: at, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (r *ChallengeRepository) ListStatusEvents(_ context.Context, challengeID string) ([]challenge.StatusEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]challenge.StatusEvent(nil), r.events[challengeID]...), nil
}

func (r *ChallengeRepository) GetPendingInvitation(_ context.Context, challengeID, userID string) (challenge.Invitation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.pendingInvitationLocked(challengeID, userID)
}

func (r *ChallengeRepository) ListDueChallengeIDs(_ context.Context, now time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0)
	for id, item := range r.challenges {
		if item.Status == challenge.StatusActive && !item.EndDate.After(now) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *ChallengeRepository) UpdateMembershipPenalty(_ context.Context, challengeID, userID string, totalPenalty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.memberships[challengeID]
	for i := range items {
		if items[i].UserID == userID {
			items[i].TotalPenalty = totalPenalty
			return nil
		}
	}
	return nil
}

// RunInTx runs fn and rolls back every write it made when fn returns an error.
func (r *ChallengeRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx challenge.TxRepository) error) (err error) {
	tx := &challengeTx{repo: r, held: make(map[string]*sync.Mutex)}
	defer tx.release()
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
		if err != nil {
			tx.rollback()
		}
	}()

	return fn(ctx, tx)
}

func (r *ChallengeRepository) challengeLock(challengeID string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()

	lock, ok := r.locks[challengeID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[challengeID] = lock
	}
	return lock
}

func (r *ChallengeRepository) pendingInvitationLocked(challengeID, userID string) (challenge.Invitation, bool, error) {
	for _, item := range r.invitations[challengeID] {
		if item.UserID == userID && item.ConsumedAt == nil {
			return cloneInvitation(item), true, nil
		}
	}
	return challenge.Invitation{}, false, nil
}

type challengeTx struct {
	repo *ChallengeRepository
	held map[string]*sync.Mutex
	undo []func()
}

func (t *challengeTx) lock(challengeID string) {
	if _, ok := t.held[challengeID]; ok {
		return
	}
	lock := t.repo.challengeLock(challengeID)
	lock.Lock()
	t.held[challengeID] = lock
}

func (t *challengeTx) release() {
	for id, lock := range t.held {
		lock.Unlock()
		delete(t.held, id)
	}
}

func (t *challengeTx) rollback() {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *challengeTx) LockChallenge(ctx context.Context, challengeID string) (challenge.Challenge, bool, error) {
	t.lock(challengeID)
	return t.repo.GetChallenge(ctx, challengeID)
}

func (t *challengeTx) ListMemberships(ctx context.Context, challengeID string) ([]challenge.Membership, error) {
	return t.repo.ListMemberships(ctx, challengeID)
}

func (t *challengeTx) GetPendingInvitation(ctx context.Context, challengeID, userID string) (challenge.Invitation, bool, error) {
	return t.repo.GetPendingInvitation(ctx, challengeID, userID)
}

func (t *challengeTx) CreateChallenge(_ context.Context, item challenge.Challenge) error {
	t.lock(item.ID)

	r := t.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.challenges[item.ID]; exists {
		return fmt.Errorf("challenge %s already exists", item.ID)
	}
	r.challenges[item.ID] = item.Clone()
	t.undo = append(t.undo, func() { delete(r.challenges, item.ID) })
	return nil
}

func (t *challengeTx) SaveChallenge(_ context.Context, item challenge.Challenge) error {
	r := t.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, exists := r.challenges[item.ID]
	if !exists {
		return fmt.Errorf("challenge %s does not exist", item.ID)
	}
	r.challenges[item.ID] = item.Clone()
	t.undo = append(t.undo, func() { r.challenges[item.ID] = previous })
	return nil
}

func (t *challengeTx) SaveMembership(_ context.Context, membership challenge.Membership) error {
	r := t.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.memberships[membership.ChallengeID] {
		if existing.UserID == membership.UserID {
			return fmt.Errorf("%w: challenge=%s user=%s", challenge.ErrAlreadyMember, membership.ChallengeID, membership.UserID)
		}
	}
	previous := r.memberships[membership.ChallengeID]
	r.memberships[membership.ChallengeID] = append(append([]challenge.Membership(nil), previous...), membership)
	t.undo = append(t.undo, func() { r.memberships[membership.ChallengeID] = previous })
	return nil
}

func (t *challengeTx) SaveInvitation(_ context.Context, invitation challenge.Invitation) error {
	r := t.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.invitations[invitation.ChallengeID]
	next := append([]challenge.Invitation(nil), previous...)
	replaced := false
	for i := range next {
		if next[i].ID == invitation.ID {
			next[i] = cloneInvitation(invitation)
			replaced = true
			break
		}
	}
	if !replaced {
		if _, pending, _ := r.pendingInvitationLocked(invitation.ChallengeID, invitation.UserID); pending && invitation.ConsumedAt == nil {
			return fmt.Errorf("pending invitation already exists for challenge=%s user=%s", invitation.ChallengeID, invitation.UserID)
		}
		next = append(next, cloneInvitation(invitation))
	}
	r.invitations[invitation.ChallengeID] = next
	t.undo = append(t.undo, func() { r.invitations[invitation.ChallengeID] = previous })
	return nil
}

func (t *challengeTx) AppendStatusEvent(_ context.Context, event challenge.StatusEvent) error {
	r := t.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.events[event.ChallengeID]
	r.events[event.ChallengeID] = append(append([]challenge.StatusEvent(nil), previous...), event)
	t.undo = append(t.undo, func() { r.events[event.ChallengeID] = previous })
	return nil
}

func (t *challengeTx) IncrementSubmissionCount(_ context.Context, challengeID, userID string, day time.Time) (challenge.DailyCount, error) {
	r := t.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser, ok := r.counts[challengeID]
	if !ok {
		byUser = make(map[string]map[int64]int)
		r.counts[challengeID] = byUser
	}
	byDay, ok := byUser[userID]
	if !ok {
		byDay = make(map[int64]int)
		byUser[userID] = byDay
	}

	key := day.UTC().UnixNano()
	previous, existed := byDay[key]
	byDay[key] = previous + 1
	t.undo = append(t.undo, func() {
		if existed {
			byDay[key] = previous
			return
		}
		delete(byDay, key)
	})
	return challenge.DailyCount{Day: day.UTC(), Count: previous + 1}, nil
}

func cloneInvitation(item challenge.Invitation) challenge.Invitation {
	copied := item
	if item.ConsumedAt != nil {
		consumedAt := *item.ConsumedAt
		copied.ConsumedAt = &consumedAt
	}
	return copied
}
