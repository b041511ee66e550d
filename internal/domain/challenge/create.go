package challenge

import (
	"fmt"
	"strings"
	"time"
)

// Draft holds the owner-supplied fields of a challenge that is about to be created.
type Draft struct {
	Name                 string
	Description          string
	OwnerID              string
	StartDate            time.Time
	EndDate              time.Time
	MinSubmissionsPerDay int
	PenaltyAmount        int64
	DifficultyFilter     []string
	IsPrivate            bool
}

// New validates the draft and returns a PENDING challenge owned by draft.OwnerID.
func New(id string, draft Draft, now time.Time) (Challenge, error) {
	id = strings.TrimSpace(id)
	name := strings.TrimSpace(draft.Name)
	description := strings.TrimSpace(draft.Description)
	ownerID := strings.TrimSpace(draft.OwnerID)

	switch {
	case id == "":
		return Challenge{}, fmtInvalid("id is required")
	case name == "":
		return Challenge{}, fmtInvalid("name is required")
	case description == "":
		return Challenge{}, fmtInvalid("description is required")
	case ownerID == "":
		return Challenge{}, fmtInvalid("owner id is required")
	case draft.MinSubmissionsPerDay <= 0:
		return Challenge{}, fmtInvalid("min submissions per day must be > 0, got %d", draft.MinSubmissionsPerDay)
	case draft.PenaltyAmount < 0:
		return Challenge{}, fmtInvalid("penalty amount must be >= 0, got %d", draft.PenaltyAmount)
	}

	start := draft.StartDate.UTC()
	end := draft.EndDate.UTC()
	if _, err := TotalDays(start, end); err != nil {
		return Challenge{}, err
	}

	filter, err := NormalizeDifficultyFilter(draft.DifficultyFilter)
	if err != nil {
		return Challenge{}, err
	}

	now = now.UTC()
	return Challenge{
		ID:                   id,
		Name:                 name,
		Description:          description,
		OwnerID:              ownerID,
		StartDate:            start,
		EndDate:              end,
		MinSubmissionsPerDay: draft.MinSubmissionsPerDay,
		PenaltyAmount:        draft.PenaltyAmount,
		DifficultyFilter:     filter,
		IsPrivate:            draft.IsPrivate,
		Status:               StatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func fmtInvalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidChallenge, fmt.Sprintf(format, args...))
}
