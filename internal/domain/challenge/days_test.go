package challenge

import (
	"testing"
	"time"
)

func TestTrackingWindowFromEvents(t *testing.T) {
	c := fixtureChallenge(StatusActive)
	activatedAt := c.StartDate.Add(2*Day + time.Hour)
	cancelledAt := c.StartDate.Add(5 * Day)

	activated := StatusEvent{ChallengeID: c.ID, From: StatusPending, To: StatusActive, ActorID: "owner", At: activatedAt}
	cancelledActive := StatusEvent{ChallengeID: c.ID, From: StatusActive, To: StatusCancelled, ActorID: "owner", At: cancelledAt}
	cancelledPending := StatusEvent{ChallengeID: c.ID, From: StatusPending, To: StatusCancelled, ActorID: "owner", At: cancelledAt}

	pending := fixtureChallenge(StatusPending)
	if got := TrackingWindowFromEvents(pending, nil); got.Active {
		t.Fatalf("pending challenge must not track: %+v", got)
	}

	got := TrackingWindowFromEvents(c, []StatusEvent{activated})
	if !got.Active || !got.From.Equal(activatedAt) || got.Until != nil {
		t.Fatalf("unexpected active window: %+v", got)
	}

	got = TrackingWindowFromEvents(c, nil)
	if !got.Active || !got.From.Equal(c.StartDate) {
		t.Fatalf("expected start date fallback: %+v", got)
	}

	cancelled := fixtureChallenge(StatusCancelled)
	got = TrackingWindowFromEvents(cancelled, []StatusEvent{activated, cancelledActive})
	if !got.Active || got.Until == nil || !got.Until.Equal(cancelledAt) {
		t.Fatalf("unexpected cancelled window: %+v", got)
	}

	got = TrackingWindowFromEvents(cancelled, []StatusEvent{cancelledPending})
	if got.Active {
		t.Fatalf("cancelled without activation must not track: %+v", got)
	}
}

func TestEvaluatedDays(t *testing.T) {
	c := fixtureChallenge(StatusActive)
	window := TrackingWindow{Active: true, From: c.StartDate}

	if got := EvaluatedDays(c, window, c.StartDate.Add(Day-time.Nanosecond)); len(got) != 0 {
		t.Fatalf("no day has closed yet, got %d", len(got))
	}

	got := EvaluatedDays(c, window, c.StartDate.Add(3*Day+time.Hour))
	if len(got) != 3 {
		t.Fatalf("expected 3 closed days, got %d", len(got))
	}
	for i, day := range got {
		if !day.From.Equal(c.StartDate.Add(time.Duration(i)*Day)) || day.To.Sub(day.From) != Day {
			t.Fatalf("unexpected day %d: %+v", i, day)
		}
	}

	if got := EvaluatedDays(c, window, c.EndDate.Add(Day)); len(got) != 10 {
		t.Fatalf("expected every day once ended, got %d", len(got))
	}

	late := TrackingWindow{Active: true, From: c.StartDate.Add(2*Day + time.Hour)}
	got = EvaluatedDays(c, late, c.StartDate.Add(5*Day))
	if len(got) != 3 || !got[0].From.Equal(c.StartDate.Add(2*Day)) {
		t.Fatalf("expected days closing after activation only, got %+v", got)
	}

	until := c.StartDate.Add(4*Day + time.Hour)
	stopped := TrackingWindow{Active: true, From: c.StartDate, Until: &until}
	if got := EvaluatedDays(c, stopped, c.EndDate); len(got) != 4 {
		t.Fatalf("expected tracking to stop after 4 days, got %d", len(got))
	}

	if got := EvaluatedDays(c, TrackingWindow{}, c.EndDate); got != nil {
		t.Fatalf("inactive window must evaluate nothing, got %+v", got)
	}
}

func TestEvaluatedDaysPartialTrailingDay(t *testing.T) {
	c := fixtureChallenge(StatusActive)
	c.EndDate = c.StartDate.Add(Day + 6*time.Hour)
	window := TrackingWindow{Active: true, From: c.StartDate}

	got := EvaluatedDays(c, window, c.EndDate)
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %d", len(got))
	}
	if !got[1].To.Equal(c.EndDate) {
		t.Fatalf("trailing day must be clipped to end date: %+v", got[1])
	}
}

func TestDayOf(t *testing.T) {
	c := fixtureChallenge(StatusActive)

	day, ok := DayOf(c, c.StartDate.Add(3*Day+5*time.Hour))
	if !ok || !day.From.Equal(c.StartDate.Add(3*Day)) {
		t.Fatalf("unexpected day: %+v ok=%v", day, ok)
	}
	if _, ok := DayOf(c, c.EndDate); ok {
		t.Fatalf("end date is outside the range")
	}
	if _, ok := DayOf(c, c.StartDate.Add(-time.Nanosecond)); ok {
		t.Fatalf("instant before start is outside the range")
	}
}
