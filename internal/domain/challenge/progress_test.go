package challenge

import (
	"errors"
	"testing"
	"time"
)

func TestCalculateProgressScenario(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	got, err := CalculateProgress(start, end, now)
	if err != nil {
		t.Fatalf("calculate progress: %v", err)
	}
	want := Progress{TotalDays: 10, DaysRemaining: 5, DaysElapsed: 5, Percent: 50}
	if got != want {
		t.Fatalf("unexpected progress: got=%+v want=%+v", got, want)
	}
}

func TestCalculateProgressEdges(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * Day)

	tests := []struct {
		name string
		now  time.Time
		want Progress
	}{
		{
			name: "before start",
			now:  start.Add(-10 * Day),
			want: Progress{TotalDays: 3, DaysRemaining: 3, DaysElapsed: 0, Percent: 0},
		},
		{
			name: "at start",
			now:  start,
			want: Progress{TotalDays: 3, DaysRemaining: 3, DaysElapsed: 0, Percent: 0},
		},
		{
			name: "partial day rounds remaining up",
			now:  start.Add(Day + time.Hour),
			want: Progress{TotalDays: 3, DaysRemaining: 2, DaysElapsed: 1, Percent: 33},
		},
		{
			name: "two thirds",
			now:  start.Add(2 * Day),
			want: Progress{TotalDays: 3, DaysRemaining: 1, DaysElapsed: 2, Percent: 67},
		},
		{
			name: "at end",
			now:  end,
			want: Progress{TotalDays: 3, DaysRemaining: 0, DaysElapsed: 3, Percent: 100},
		},
		{
			name: "after end",
			now:  end.Add(30 * Day),
			want: Progress{TotalDays: 3, DaysRemaining: 0, DaysElapsed: 3, Percent: 100},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateProgress(start, end, tc.now)
			if err != nil {
				t.Fatalf("calculate progress: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected progress: got=%+v want=%+v", got, tc.want)
			}
		})
	}
}

func TestCalculateProgressPartialTrailingDay(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(2*Day + 6*time.Hour)

	got, err := CalculateProgress(start, end, start)
	if err != nil {
		t.Fatalf("calculate progress: %v", err)
	}
	if got.TotalDays != 3 {
		t.Fatalf("expected trailing partial day to count, got total=%d", got.TotalDays)
	}
}

func TestCalculateProgressInvalidRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, end := range []time.Time{start, start.Add(-time.Hour)} {
		if _, err := CalculateProgress(start, end, start); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange for end=%s, got %v", end, err)
		}
	}
}

func TestCalculateProgressInvariants(t *testing.T) {
	base := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)
	lengths := []time.Duration{time.Hour, Day, Day + time.Minute, 7 * Day, 31*Day + 5*time.Hour}

	for _, length := range lengths {
		start := base
		end := base.Add(length)
		for offset := -2 * Day; offset <= length+2*Day; offset += 5 * time.Hour {
			got, err := CalculateProgress(start, end, start.Add(offset))
			if err != nil {
				t.Fatalf("calculate progress length=%s offset=%s: %v", length, offset, err)
			}
			if got.DaysElapsed+got.DaysRemaining != got.TotalDays {
				t.Fatalf("elapsed+remaining != total: %+v", got)
			}
			if got.Percent < 0 || got.Percent > 100 {
				t.Fatalf("percent out of range: %+v", got)
			}
			if got.DaysRemaining < 0 || got.DaysRemaining > got.TotalDays {
				t.Fatalf("remaining out of range: %+v", got)
			}
		}
	}
}
