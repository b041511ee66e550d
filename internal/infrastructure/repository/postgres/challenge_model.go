package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/code-challenge/internal/domain/challenge"
)

type challengeTableModel struct {
	ID                   int64          `db:"id"`
	PublicID             string         `db:"public_id"`
	Name                 string         `db:"name"`
	Description          string         `db:"description"`
	OwnerUserID          string         `db:"owner_user_id"`
	StartDate            time.Time      `db:"start_date"`
	EndDate              time.Time      `db:"end_date"`
	MinSubmissionsPerDay int            `db:"min_submissions_per_day"`
	PenaltyAmount        int64          `db:"penalty_amount"`
	DifficultyFilter     pq.StringArray `db:"difficulty_filter"`
	IsPrivate            bool           `db:"is_private"`
	Status               string         `db:"status"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

type challengeInsertModel struct {
	PublicID             string         `db:"public_id"`
	Name                 string         `db:"name"`
	Description          string         `db:"description"`
	OwnerUserID          string         `db:"owner_user_id"`
	StartDate            time.Time      `db:"start_date"`
	EndDate              time.Time      `db:"end_date"`
	MinSubmissionsPerDay int            `db:"min_submissions_per_day"`
	PenaltyAmount        int64          `db:"penalty_amount"`
	DifficultyFilter     pq.StringArray `db:"difficulty_filter"`
	IsPrivate            bool           `db:"is_private"`
	Status               string         `db:"status"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

type challengeMemberTableModel struct {
	ID           int64          `db:"id"`
	ChallengeID  string         `db:"challenge_public_id"`
	UserID       string         `db:"user_id"`
	InvitedBy    sql.NullString `db:"invited_by"`
	TotalPenalty int64          `db:"total_penalty"`
	JoinedAt     time.Time      `db:"joined_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type challengeMemberInsertModel struct {
	ChallengeID  string         `db:"challenge_public_id"`
	UserID       string         `db:"user_id"`
	InvitedBy    sql.NullString `db:"invited_by"`
	TotalPenalty int64          `db:"total_penalty"`
	JoinedAt     time.Time      `db:"joined_at"`
}

type challengeInvitationTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	ChallengeID string     `db:"challenge_public_id"`
	UserID      string     `db:"user_id"`
	InvitedBy   string     `db:"invited_by"`
	CreatedAt   time.Time  `db:"created_at"`
	ConsumedAt  *time.Time `db:"consumed_at"`
}

type challengeInvitationInsertModel struct {
	PublicID    string     `db:"public_id"`
	ChallengeID string     `db:"challenge_public_id"`
	UserID      string     `db:"user_id"`
	InvitedBy   string     `db:"invited_by"`
	CreatedAt   time.Time  `db:"created_at"`
	ConsumedAt  *time.Time `db:"consumed_at"`
}

type challengeStatusEventTableModel struct {
	ID          int64          `db:"id"`
	ChallengeID string         `db:"challenge_public_id"`
	FromStatus  sql.NullString `db:"from_status"`
	ToStatus    string         `db:"to_status"`
	ActorUserID sql.NullString `db:"actor_user_id"`
	OccurredAt  time.Time      `db:"occurred_at"`
}

type challengeStatusEventInsertModel struct {
	ChallengeID string         `db:"challenge_public_id"`
	FromStatus  sql.NullString `db:"from_status"`
	ToStatus    string         `db:"to_status"`
	ActorUserID sql.NullString `db:"actor_user_id"`
	OccurredAt  time.Time      `db:"occurred_at"`
}

type dailySubmissionTableModel struct {
	Day   time.Time `db:"day"`
	Count int       `db:"count"`
}

type dailySubmissionInsertModel struct {
	ChallengeID string    `db:"challenge_public_id"`
	UserID      string    `db:"user_id"`
	Day         time.Time `db:"day"`
	Count       int       `db:"count"`
}

func challengeFromRow(row challengeTableModel) challenge.Challenge {
	filter, err := challenge.NormalizeDifficultyFilter(row.DifficultyFilter)
	if err != nil {
		// Unknown tags are kept verbatim so they never widen the filter to "any".
		filter = make(challenge.DifficultyFilter, 0, len(row.DifficultyFilter))
		for _, item := range row.DifficultyFilter {
			filter = append(filter, challenge.Difficulty(item))
		}
	}

	return challenge.Challenge{
		ID:                   row.PublicID,
		Name:                 row.Name,
		Description:          row.Description,
		OwnerID:              row.OwnerUserID,
		StartDate:            row.StartDate.UTC(),
		EndDate:              row.EndDate.UTC(),
		MinSubmissionsPerDay: row.MinSubmissionsPerDay,
		PenaltyAmount:        row.PenaltyAmount,
		DifficultyFilter:     filter,
		IsPrivate:            row.IsPrivate,
		Status:               challenge.Status(row.Status),
		CreatedAt:            row.CreatedAt.UTC(),
		UpdatedAt:            row.UpdatedAt.UTC(),
	}
}

func challengeToInsert(c challenge.Challenge) challengeInsertModel {
	filter := make(pq.StringArray, 0, len(c.DifficultyFilter))
	for _, d := range c.DifficultyFilter {
		filter = append(filter, string(d))
	}
	return challengeInsertModel{
		PublicID:             c.ID,
		Name:                 c.Name,
		Description:          c.Description,
		OwnerUserID:          c.OwnerID,
		StartDate:            c.StartDate.UTC(),
		EndDate:              c.EndDate.UTC(),
		MinSubmissionsPerDay: c.MinSubmissionsPerDay,
		PenaltyAmount:        c.PenaltyAmount,
		DifficultyFilter:     filter,
		IsPrivate:            c.IsPrivate,
		Status:               string(c.Status),
		CreatedAt:            c.CreatedAt.UTC(),
		UpdatedAt:            c.UpdatedAt.UTC(),
	}
}

func membershipFromRow(row challengeMemberTableModel) challenge.Membership {
	return challenge.Membership{
		ChallengeID:  row.ChallengeID,
		UserID:       row.UserID,
		JoinedAt:     row.JoinedAt.UTC(),
		InvitedBy:    row.InvitedBy.String,
		TotalPenalty: row.TotalPenalty,
	}
}

func invitationFromRow(row challengeInvitationTableModel) challenge.Invitation {
	out := challenge.Invitation{
		ID:          row.PublicID,
		ChallengeID: row.ChallengeID,
		UserID:      row.UserID,
		InvitedBy:   row.InvitedBy,
		CreatedAt:   row.CreatedAt.UTC(),
	}
	if row.ConsumedAt != nil {
		consumedAt := row.ConsumedAt.UTC()
		out.ConsumedAt = &consumedAt
	}
	return out
}

func statusEventFromRow(row challengeStatusEventTableModel) challenge.StatusEvent {
	return challenge.StatusEvent{
		ChallengeID: row.ChallengeID,
		From:        challenge.Status(row.FromStatus.String),
		To:          challenge.Status(row.ToStatus),
		ActorID:     row.ActorUserID.String,
		At:          row.OccurredAt.UTC(),
	}
}
