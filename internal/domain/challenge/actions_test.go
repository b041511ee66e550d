package challenge

import (
	"testing"
	"time"
)

func TestAvailableActions(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	invitation := &Invitation{ID: "inv-1", ChallengeID: "ch-1", UserID: "guest", InvitedBy: "owner"}

	tests := []struct {
		name       string
		challenge  Challenge
		viewer     string
		invitation *Invitation
		want       Actions
	}{
		{
			name:      "owner of pending private",
			challenge: privateChallenge(StatusPending),
			viewer:    "owner",
			want:      Actions{CanActivate: true, CanCancel: true, CanInvite: true},
		},
		{
			name:      "owner of active public",
			challenge: fixtureChallenge(StatusActive),
			viewer:    "owner",
			want:      Actions{CanCancel: true},
		},
		{
			name:      "stranger on public",
			challenge: fixtureChallenge(StatusActive),
			viewer:    "guest",
			want:      Actions{CanJoin: true},
		},
		{
			name:      "stranger on private without invitation",
			challenge: privateChallenge(StatusActive),
			viewer:    "guest",
			want:      Actions{},
		},
		{
			name:       "invited guest",
			challenge:  privateChallenge(StatusActive),
			viewer:     "guest",
			invitation: invitation,
			want:       Actions{CanJoin: true},
		},
		{
			name:      "owner of completed",
			challenge: privateChallenge(StatusCompleted),
			viewer:    "owner",
			want:      Actions{},
		},
		{
			name:      "anonymous",
			challenge: fixtureChallenge(StatusPending),
			viewer:    "",
			want:      Actions{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AvailableActions(tc.challenge, tc.viewer, []string{"owner"}, tc.invitation, now)
			if got != tc.want {
				t.Fatalf("unexpected actions: got=%+v want=%+v", got, tc.want)
			}
		})
	}
}
