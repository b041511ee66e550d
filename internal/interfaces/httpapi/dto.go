package httpapi

import (
	"time"

	"github.com/riskibarqy/code-challenge/internal/domain/challenge"
	"github.com/riskibarqy/code-challenge/internal/domain/user"
	"github.com/riskibarqy/code-challenge/internal/usecase"
)

type createChallengeRequest struct {
	Name                 string    `json:"name" validate:"required,max=120"`
	Description          string    `json:"description" validate:"required,max=2000"`
	StartDate            time.Time `json:"start_date" validate:"required"`
	EndDate              time.Time `json:"end_date" validate:"required"`
	MinSubmissionsPerDay int       `json:"min_submissions_per_day" validate:"gte=1"`
	PenaltyAmount        int64     `json:"penalty_amount" validate:"gte=0"`
	DifficultyFilter     []string  `json:"difficulty_filter" validate:"omitempty,dive,required"`
	IsPrivate            bool      `json:"is_private"`
}

type inviteRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

type recordSubmissionRequest struct {
	Difficulty string `json:"difficulty" validate:"required"`
}

type listInviteCandidatesRequest struct {
	Query string `validate:"max=100"`
	Limit int    `validate:"gte=0,lte=50"`
}

type challengeDTO struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	OwnerID              string   `json:"owner_id"`
	StartDate            string   `json:"start_date"`
	EndDate              string   `json:"end_date"`
	MinSubmissionsPerDay int      `json:"min_submissions_per_day"`
	PenaltyAmount        int64    `json:"penalty_amount"`
	DifficultyFilter     []string `json:"difficulty_filter"`
	DifficultyLabel      string   `json:"difficulty_label"`
	IsPrivate            bool     `json:"is_private"`
	Status               string   `json:"status"`
	CreatedAtUTC         string   `json:"created_at_utc"`
	UpdatedAtUTC         string   `json:"updated_at_utc"`
}

type progressDTO struct {
	TotalDays     int `json:"total_days"`
	DaysElapsed   int `json:"days_elapsed"`
	DaysRemaining int `json:"days_remaining"`
	Percent       int `json:"percent"`
}

type leaderboardEntryDTO struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	TotalPenalty int64  `json:"total_penalty"`
	MissedDays   int    `json:"missed_days"`
	JoinedAtUTC  string `json:"joined_at_utc"`
}

type actionsDTO struct {
	CanActivate bool `json:"can_activate"`
	CanCancel   bool `json:"can_cancel"`
	CanInvite   bool `json:"can_invite"`
	CanJoin     bool `json:"can_join"`
}

type challengeViewDTO struct {
	Challenge   challengeDTO          `json:"challenge"`
	Progress    progressDTO           `json:"progress"`
	Leaderboard []leaderboardEntryDTO `json:"leaderboard"`
	MemberCount int                   `json:"member_count"`
	IsMember    bool                  `json:"is_member"`
	Actions     actionsDTO            `json:"actions"`
}

type invitationDTO struct {
	ID           string `json:"id"`
	ChallengeID  string `json:"challenge_id"`
	UserID       string `json:"user_id"`
	InvitedBy    string `json:"invited_by"`
	CreatedAtUTC string `json:"created_at_utc"`
}

type inviteResultDTO struct {
	Invitation invitationDTO    `json:"invitation"`
	View       challengeViewDTO `json:"view"`
}

type profileDTO struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type dailyCountDTO struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

func formatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func challengeToDTO(c challenge.Challenge) challengeDTO {
	filter := make([]string, 0, len(c.DifficultyFilter))
	for _, d := range c.DifficultyFilter {
		filter = append(filter, string(d))
	}

	return challengeDTO{
		ID:                   c.ID,
		Name:                 c.Name,
		Description:          c.Description,
		OwnerID:              c.OwnerID,
		StartDate:            formatUTC(c.StartDate),
		EndDate:              formatUTC(c.EndDate),
		MinSubmissionsPerDay: c.MinSubmissionsPerDay,
		PenaltyAmount:        c.PenaltyAmount,
		DifficultyFilter:     filter,
		DifficultyLabel:      c.DifficultyFilter.Label(),
		IsPrivate:            c.IsPrivate,
		Status:               string(c.Status),
		CreatedAtUTC:         formatUTC(c.CreatedAt),
		UpdatedAtUTC:         formatUTC(c.UpdatedAt),
	}
}

func viewToDTO(v usecase.ChallengeView) challengeViewDTO {
	entries := make([]leaderboardEntryDTO, 0, len(v.Leaderboard))
	for _, e := range v.Leaderboard {
		entries = append(entries, leaderboardEntryDTO{
			Rank:         e.Rank,
			UserID:       e.UserID,
			DisplayName:  e.DisplayName,
			TotalPenalty: e.TotalPenalty,
			MissedDays:   e.MissedDays,
			JoinedAtUTC:  formatUTC(e.JoinedAt),
		})
	}

	return challengeViewDTO{
		Challenge: challengeToDTO(v.Challenge),
		Progress: progressDTO{
			TotalDays:     v.Progress.TotalDays,
			DaysElapsed:   v.Progress.DaysElapsed,
			DaysRemaining: v.Progress.DaysRemaining,
			Percent:       v.Progress.Percent,
		},
		Leaderboard: entries,
		MemberCount: v.MemberCount,
		IsMember:    v.IsMember,
		Actions: actionsDTO{
			CanActivate: v.Actions.CanActivate,
			CanCancel:   v.Actions.CanCancel,
			CanInvite:   v.Actions.CanInvite,
			CanJoin:     v.Actions.CanJoin,
		},
	}
}

func invitationToDTO(inv challenge.Invitation) invitationDTO {
	return invitationDTO{
		ID:           inv.ID,
		ChallengeID:  inv.ChallengeID,
		UserID:       inv.UserID,
		InvitedBy:    inv.InvitedBy,
		CreatedAtUTC: formatUTC(inv.CreatedAt),
	}
}

func profilesToDTO(profiles []user.Profile) []profileDTO {
	out := make([]profileDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileDTO{UserID: p.ID, DisplayName: p.DisplayName})
	}
	return out
}
