package challenge

import (
	"sort"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether no transition can leave the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var AllDifficulties = map[Difficulty]struct{}{
	DifficultyEasy:   {},
	DifficultyMedium: {},
	DifficultyHard:   {},
}

// DifficultyFilter is the set of accepted submission difficulties. Empty means any.
type DifficultyFilter []Difficulty

// NormalizeDifficultyFilter lowercases, de-duplicates and sorts the tags.
func NormalizeDifficultyFilter(values []string) (DifficultyFilter, error) {
	seen := make(map[Difficulty]struct{}, len(values))
	out := make(DifficultyFilter, 0, len(values))
	for _, value := range values {
		d := Difficulty(strings.ToLower(strings.TrimSpace(value)))
		if d == "" {
			continue
		}
		if _, ok := AllDifficulties[d]; !ok {
			return nil, fmtInvalid("unknown difficulty %q", value)
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f DifficultyFilter) Accepts(d Difficulty) bool {
	if len(f) == 0 {
		return true
	}
	for _, item := range f {
		if item == d {
			return true
		}
	}
	return false
}

func (f DifficultyFilter) Label() string {
	if len(f) == 0 {
		return "Any"
	}
	parts := make([]string, 0, len(f))
	for _, d := range f {
		parts = append(parts, string(d))
	}
	return strings.Join(parts, ", ")
}

type Challenge struct {
	ID                   string
	Name                 string
	Description          string
	OwnerID              string
	StartDate            time.Time
	EndDate              time.Time
	MinSubmissionsPerDay int
	PenaltyAmount        int64
	DifficultyFilter     DifficultyFilter
	IsPrivate            bool
	Status               Status
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Membership struct {
	ChallengeID  string
	UserID       string
	JoinedAt     time.Time
	InvitedBy    string
	TotalPenalty int64
}

type Invitation struct {
	ID          string
	ChallengeID string
	UserID      string
	InvitedBy   string
	CreatedAt   time.Time
	ConsumedAt  *time.Time
}

// ValidFor reports whether the invitation can still admit userID into challengeID.
func (i *Invitation) ValidFor(challengeID, userID string) bool {
	if i == nil {
		return false
	}
	return i.ConsumedAt == nil && i.ChallengeID == challengeID && i.UserID == userID
}

// StatusEvent records one applied transition. ActorID is empty for system transitions.
type StatusEvent struct {
	ChallengeID string
	From        Status
	To          Status
	ActorID     string
	At          time.Time
}

type DailyCount struct {
	Day   time.Time
	Count int
}

// DayRange is the half-open interval [From, To).
type DayRange struct {
	From time.Time
	To   time.Time
}

type LeaderboardEntry struct {
	UserID       string
	DisplayName  string
	Rank         int
	TotalPenalty int64
	MissedDays   int
	JoinedAt     time.Time
}

func MemberIDs(memberships []Membership) []string {
	out := make([]string, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, m.UserID)
	}
	return out
}

func cloneDifficulties(f DifficultyFilter) DifficultyFilter {
	if f == nil {
		return nil
	}
	return append(DifficultyFilter(nil), f...)
}

// Clone returns a copy that shares no slices with c.
func (c Challenge) Clone() Challenge {
	copied := c
	copied.DifficultyFilter = cloneDifficulties(c.DifficultyFilter)
	return copied
}
