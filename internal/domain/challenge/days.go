package challenge

import "time"

// TrackingWindow bounds the instants during which missed days accrue penalties.
type TrackingWindow struct {
	Active bool
	From   time.Time
	Until  *time.Time
}

// TrackingWindowFromEvents derives the window from the transition log of c.
func TrackingWindowFromEvents(c Challenge, events []StatusEvent) TrackingWindow {
	var (
		activatedAt *time.Time
		stoppedAt   *time.Time
	)
	for _, event := range events {
		if event.ChallengeID != "" && event.ChallengeID != c.ID {
			continue
		}
		switch {
		case event.To == StatusActive && activatedAt == nil:
			at := event.At.UTC()
			activatedAt = &at
		case event.From == StatusActive && event.To == StatusCancelled && stoppedAt == nil:
			at := event.At.UTC()
			stoppedAt = &at
		}
	}

	switch c.Status {
	case StatusPending:
		return TrackingWindow{}
	case StatusCancelled:
		if activatedAt == nil && stoppedAt == nil {
			return TrackingWindow{}
		}
	}

	from := c.StartDate
	if activatedAt != nil {
		from = *activatedAt
	}
	return TrackingWindow{
		Active: true,
		From:   from,
		Until:  stoppedAt,
	}
}

// EvaluatedDays returns the day windows of c that count towards penalties at now.
// A day counts once it has closed, after tracking began and before tracking stopped.
func EvaluatedDays(c Challenge, window TrackingWindow, now time.Time) []DayRange {
	if !window.Active || !c.EndDate.After(c.StartDate) {
		return nil
	}

	out := make([]DayRange, 0)
	for dayStart := c.StartDate; dayStart.Before(c.EndDate); dayStart = dayStart.Add(Day) {
		dayEnd := dayStart.Add(Day)
		if dayEnd.After(c.EndDate) {
			dayEnd = c.EndDate
		}
		if dayEnd.After(now) {
			break
		}
		if !dayEnd.After(window.From) {
			continue
		}
		if window.Until != nil && dayEnd.After(*window.Until) {
			break
		}
		out = append(out, DayRange{From: dayStart, To: dayEnd})
	}
	return out
}

// DayOf returns the day window of c containing at.
func DayOf(c Challenge, at time.Time) (DayRange, bool) {
	if at.Before(c.StartDate) || !at.Before(c.EndDate) {
		return DayRange{}, false
	}
	index := at.Sub(c.StartDate) / Day
	from := c.StartDate.Add(index * Day)
	to := from.Add(Day)
	if to.After(c.EndDate) {
		to = c.EndDate
	}
	return DayRange{From: from, To: to}, true
}

// Span returns the range covering every day window of c.
func Span(c Challenge) DayRange {
	return DayRange{From: c.StartDate, To: c.EndDate}
}

func (r DayRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}
