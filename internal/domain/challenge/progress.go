package challenge

import (
	"fmt"
	"math"
	"time"
)

const Day = 24 * time.Hour

// Progress describes how far a challenge has advanced at a given instant.
type Progress struct {
	TotalDays     int
	DaysRemaining int
	DaysElapsed   int
	Percent       int
}

// TotalDays returns the number of day windows in [start, end), counting a trailing partial day.
func TotalDays(start, end time.Time) (int, error) {
	total := ceilDays(end.Sub(start))
	if total <= 0 {
		return 0, fmt.Errorf("%w: start=%s end=%s", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return total, nil
}

// CalculateProgress is deterministic for a given now.
func CalculateProgress(start, end, now time.Time) (Progress, error) {
	total, err := TotalDays(start, end)
	if err != nil {
		return Progress{}, err
	}

	remaining := ceilDays(end.Sub(now))
	if remaining < 0 {
		remaining = 0
	}
	if remaining > total {
		remaining = total
	}
	elapsed := total - remaining

	percent := int(math.Round(float64(elapsed) / float64(total) * 100))
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return Progress{
		TotalDays:     total,
		DaysRemaining: remaining,
		DaysElapsed:   elapsed,
		Percent:       percent,
	}, nil
}

func ceilDays(d time.Duration) int {
	days := d / Day
	if d%Day > 0 {
		days++
	}
	return int(days)
}
