package challenge

import (
	"fmt"
	"time"
)

var transitions = map[Status]map[Status]struct{}{
	StatusPending: {
		StatusActive:    {},
		StatusCancelled: {},
	},
	StatusActive: {
		StatusCompleted: {},
		StatusCancelled: {},
	},
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to Status) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// Activate moves a PENDING challenge to ACTIVE. Only the owner may activate.
func Activate(c Challenge, actorID string, now time.Time) (Challenge, error) {
	if actorID == "" || actorID != c.OwnerID {
		return Challenge{}, fmt.Errorf("%w: activate challenge=%s", ErrUnauthorizedTransition, c.ID)
	}
	return transition(c, StatusActive, now)
}

// Cancel abandons a PENDING or ACTIVE challenge. Only the owner may cancel.
func Cancel(c Challenge, actorID string, now time.Time) (Challenge, error) {
	if actorID == "" || actorID != c.OwnerID {
		return Challenge{}, fmt.Errorf("%w: cancel challenge=%s", ErrUnauthorizedTransition, c.ID)
	}
	return transition(c, StatusCancelled, now)
}

// Complete is system-triggered once now reaches EndDate. Completing a COMPLETED
// challenge is a no-op and reports changed=false.
func Complete(c Challenge, now time.Time) (Challenge, bool, error) {
	if c.Status == StatusCompleted {
		return c.Clone(), false, nil
	}
	if c.Status == StatusActive && now.Before(c.EndDate) {
		return Challenge{}, false, fmt.Errorf("%w: challenge=%s ends at %s", ErrInvalidStateTransition, c.ID, c.EndDate.Format(time.RFC3339))
	}

	out, err := transition(c, StatusCompleted, now)
	if err != nil {
		return Challenge{}, false, err
	}
	return out, true, nil
}

func transition(c Challenge, to Status, now time.Time) (Challenge, error) {
	if !CanTransition(c.Status, to) {
		return Challenge{}, fmt.Errorf("%w: challenge=%s %s -> %s", ErrInvalidStateTransition, c.ID, c.Status, to)
	}

	out := c.Clone()
	out.Status = to
	out.UpdatedAt = now.UTC()
	return out, nil
}

// NewStatusEvent describes the transition from before to after.
func NewStatusEvent(before, after Challenge, actorID string) StatusEvent {
	return StatusEvent{
		ChallengeID: after.ID,
		From:        before.Status,
		To:          after.Status,
		ActorID:     actorID,
		At:          after.UpdatedAt,
	}
}
