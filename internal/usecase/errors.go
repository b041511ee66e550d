package usecase

import (
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/code-challenge/internal/domain/challenge"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTransient marks failures of persistence or the user directory. Retrying may succeed.
	ErrTransient = errors.New("transient failure")
)

// IsRetryable reports whether err belongs to the transient category.
func IsRetryable(err error) bool {
	return err != nil && crerr.Is(err, ErrTransient)
}

// MarkTransient wraps err with msg and marks it transient while keeping the cause.
func MarkTransient(err error, msg string) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(crerr.Wrap(err, msg), ErrTransient)
}

var classifiedErrors = []error{
	ErrInvalidInput,
	ErrNotFound,
	ErrUnauthorized,
	ErrTransient,
	challenge.ErrInvalidRange,
	challenge.ErrInvalidChallenge,
	challenge.ErrInvalidStateTransition,
	challenge.ErrUnauthorizedTransition,
	challenge.ErrAlreadyMember,
	challenge.ErrInvitationRequired,
	challenge.ErrChallengeClosed,
	challenge.ErrUnauthorizedInvite,
	challenge.ErrChallengeNotPrivate,
}

// classify leaves domain and usecase errors untouched and marks anything else transient.
func classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	for _, target := range classifiedErrors {
		if crerr.Is(err, target) {
			return err
		}
	}
	return MarkTransient(err, msg)
}
