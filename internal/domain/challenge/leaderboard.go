package challenge

import "sort"

// LeaderboardInput carries everything BuildLeaderboard needs. Submissions and
// DisplayNames are keyed by user id; a missing DailyCount counts as zero.
type LeaderboardInput struct {
	Challenge     Challenge
	Memberships   []Membership
	EvaluatedDays []DayRange
	Submissions   map[string][]DailyCount
	DisplayNames  map[string]string
}

// BuildLeaderboard recomputes every member's penalty from raw counts and ranks them.
// A day that closed before a member joined is never charged to that member.
func BuildLeaderboard(input LeaderboardInput) []LeaderboardEntry {
	c := input.Challenge
	entries := make([]LeaderboardEntry, 0, len(input.Memberships))
	seen := make(map[string]struct{}, len(input.Memberships))
	for _, membership := range input.Memberships {
		if _, dup := seen[membership.UserID]; dup {
			continue
		}
		seen[membership.UserID] = struct{}{}

		counts := countsByDay(input.Submissions[membership.UserID])
		missed := 0
		for _, day := range input.EvaluatedDays {
			if !day.To.After(membership.JoinedAt) {
				continue
			}
			if counts[day.From.UnixNano()] < c.MinSubmissionsPerDay {
				missed++
			}
		}

		displayName := input.DisplayNames[membership.UserID]
		if displayName == "" {
			displayName = membership.UserID
		}
		entries = append(entries, LeaderboardEntry{
			UserID:       membership.UserID,
			DisplayName:  displayName,
			TotalPenalty: int64(missed) * c.PenaltyAmount,
			MissedDays:   missed,
			JoinedAt:     membership.JoinedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPenalty != b.TotalPenalty {
			return a.TotalPenalty < b.TotalPenalty
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.UserID < b.UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Reconcile returns the memberships whose cached TotalPenalty differs from the
// freshly built entries, updated to the recomputed value.
func Reconcile(memberships []Membership, entries []LeaderboardEntry) []Membership {
	penalties := make(map[string]int64, len(entries))
	for _, entry := range entries {
		penalties[entry.UserID] = entry.TotalPenalty
	}

	stale := make([]Membership, 0)
	for _, membership := range memberships {
		penalty, ok := penalties[membership.UserID]
		if !ok || penalty == membership.TotalPenalty {
			continue
		}
		membership.TotalPenalty = penalty
		stale = append(stale, membership)
	}
	return stale
}

func countsByDay(counts []DailyCount) map[int64]int {
	out := make(map[int64]int, len(counts))
	for _, item := range counts {
		out[item.Day.UnixNano()] += item.Count
	}
	return out
}
