package challenge

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

func scenarioInput() LeaderboardInput {
	c := fixtureChallenge(StatusActive)
	days := EvaluatedDays(c, TrackingWindow{Active: true, From: c.StartDate}, c.StartDate.Add(3*Day))

	full := func(day DayRange) DailyCount { return DailyCount{Day: day.From, Count: 2} }
	return LeaderboardInput{
		Challenge: c,
		Memberships: []Membership{
			{ChallengeID: c.ID, UserID: "B", JoinedAt: c.StartDate.Add(-2 * time.Hour)},
			{ChallengeID: c.ID, UserID: "A", JoinedAt: c.StartDate.Add(-time.Hour)},
		},
		EvaluatedDays: days,
		Submissions: map[string][]DailyCount{
			"A": {full(days[0]), full(days[1]), full(days[2])},
			"B": {full(days[0]), {Day: days[1].From, Count: 1}},
		},
		DisplayNames: map[string]string{"A": "Ann", "B": "Ben"},
	}
}

func TestBuildLeaderboardScenario(t *testing.T) {
	got := BuildLeaderboard(scenarioInput())
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].UserID != "A" || got[0].Rank != 1 || got[0].TotalPenalty != 0 || got[0].DisplayName != "Ann" {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[1].UserID != "B" || got[1].Rank != 2 || got[1].TotalPenalty != 10 || got[1].MissedDays != 2 {
		t.Fatalf("unexpected second entry: %+v", got[1])
	}
}

func TestBuildLeaderboardTieBreaks(t *testing.T) {
	c := fixtureChallenge(StatusActive)
	joined := c.StartDate.Add(-time.Hour)
	input := LeaderboardInput{
		Challenge: c,
		Memberships: []Membership{
			{UserID: "zed", JoinedAt: joined},
			{UserID: "amy", JoinedAt: joined},
			{UserID: "early", JoinedAt: joined.Add(-time.Hour)},
		},
	}

	got := BuildLeaderboard(input)
	order := []string{got[0].UserID, got[1].UserID, got[2].UserID}
	if !reflect.DeepEqual(order, []string{"early", "amy", "zed"}) {
		t.Fatalf("unexpected order: %v", order)
	}
	for i, entry := range got {
		if entry.Rank != i+1 {
			t.Fatalf("unexpected rank at %d: %+v", i, entry)
		}
		if entry.DisplayName != entry.UserID {
			t.Fatalf("expected user id fallback for display name: %+v", entry)
		}
	}
}

func TestBuildLeaderboardDeterministic(t *testing.T) {
	input := scenarioInput()
	input.Memberships = append(input.Memberships,
		Membership{UserID: "C", JoinedAt: input.Challenge.StartDate},
		Membership{UserID: "D", JoinedAt: input.Challenge.StartDate},
	)
	want := BuildLeaderboard(input)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := input
		shuffled.Memberships = append([]Membership(nil), input.Memberships...)
		rng.Shuffle(len(shuffled.Memberships), func(a, b int) {
			shuffled.Memberships[a], shuffled.Memberships[b] = shuffled.Memberships[b], shuffled.Memberships[a]
		})
		if got := BuildLeaderboard(shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("build %d differs:\n got=%+v\nwant=%+v", i, got, want)
		}
	}
}

func TestBuildLeaderboardNoEvaluatedDays(t *testing.T) {
	input := scenarioInput()
	input.EvaluatedDays = nil

	for _, entry := range BuildLeaderboard(input) {
		if entry.TotalPenalty != 0 {
			t.Fatalf("expected zero penalty without evaluated days: %+v", entry)
		}
	}
}

func TestReconcile(t *testing.T) {
	input := scenarioInput()
	input.Memberships[0].TotalPenalty = 3
	entries := BuildLeaderboard(input)

	stale := Reconcile(input.Memberships, entries)
	if len(stale) != 1 || stale[0].UserID != "B" || stale[0].TotalPenalty != 10 {
		t.Fatalf("unexpected stale memberships: %+v", stale)
	}
	if input.Memberships[0].TotalPenalty != 3 {
		t.Fatalf("reconcile mutated its input")
	}
}

func TestBuildLeaderboardSkipsDaysClosedBeforeJoin(t *testing.T) {
	input := scenarioInput()
	start := input.Challenge.StartDate
	input.Memberships = append(input.Memberships,
		Membership{UserID: "late", JoinedAt: start.Add(Day + time.Hour)},
		Membership{UserID: "boundary", JoinedAt: start.Add(2 * Day)},
	)

	penalties := map[string]int{}
	for _, entry := range BuildLeaderboard(input) {
		penalties[entry.UserID] = entry.MissedDays
	}
	// late joined during day 2 and is charged for days 2 and 3; boundary joined as day 2 closed.
	if penalties["late"] != 2 || penalties["boundary"] != 1 {
		t.Fatalf("unexpected missed days: %+v", penalties)
	}
}
