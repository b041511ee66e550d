package challenge

import "errors"

var (
	ErrInvalidRange           = errors.New("invalid challenge date range")
	ErrInvalidChallenge       = errors.New("invalid challenge")
	ErrInvalidStateTransition = errors.New("invalid challenge state transition")
	ErrUnauthorizedTransition = errors.New("only the challenge owner can change its status")
	ErrAlreadyMember          = errors.New("user is already a challenge member")
	ErrInvitationRequired     = errors.New("private challenge requires an invitation")
	ErrChallengeClosed        = errors.New("challenge is closed")
	ErrUnauthorizedInvite     = errors.New("only the challenge owner can invite users")
	ErrChallengeNotPrivate    = errors.New("invitations are only available for private challenges")
)
