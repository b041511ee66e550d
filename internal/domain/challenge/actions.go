package challenge

import "time"

// Actions lists what a viewer may do next.
type Actions struct {
	CanActivate bool
	CanCancel   bool
	CanInvite   bool
	CanJoin     bool
}

// AvailableActions evaluates the state machine and guards for viewerID at now.
// invitation is the viewer's pending invitation, if any.
func AvailableActions(c Challenge, viewerID string, existingMemberIDs []string, invitation *Invitation, now time.Time) Actions {
	var actions Actions
	if _, err := Activate(c, viewerID, now); err == nil {
		actions.CanActivate = true
	}
	if _, err := Cancel(c, viewerID, now); err == nil {
		actions.CanCancel = true
	}
	if err := CanListInviteCandidates(c, viewerID); err == nil {
		actions.CanInvite = true
	}
	if viewerID != "" {
		if _, err := CanJoin(c, viewerID, existingMemberIDs, invitation, now); err == nil {
			actions.CanJoin = true
		}
	}
	return actions
}
