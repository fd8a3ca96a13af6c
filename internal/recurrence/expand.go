// Package recurrence expands one authored event into its bounded series of
// date-shifted instances. Expansion is pure: the same base and horizon
// always produce the same series shape (instance ids aside).
package recurrence

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agbizu/agbizu/internal/models"
)

// HorizonYears is how far ahead a series is generated, measured from the
// base event's own date (not from wall-clock time, so expansion stays a
// pure function of the event). The horizon date itself is included.
const HorizonYears = 2

// DefaultHorizon returns the expansion boundary for a base event date.
func DefaultHorizon(baseDate time.Time) time.Time {
	return models.Midnight(baseDate).AddDate(HorizonYears, 0, 0)
}

// Result is an expanded series. Truncated signals that the defensive
// iteration cap was hit before the horizon: the partial series is still
// usable and the caller decides whether to warn.
type Result struct {
	Events    []models.Event
	Truncated bool
}

// Expand generates the series for base up to and including horizonEnd. The
// base is always the first element, with its series fields normalized
// (SeriesID = ID, not an instance). A non-repeating rule yields the base
// alone. Instances clone the base with a fresh id and a shifted date.
func Expand(base models.Event, horizonEnd time.Time) (Result, error) {
	base.SeriesID = base.ID
	base.IsRecurring = false

	if !base.Recurrence.Repeats() {
		return Result{Events: []models.Event{base}}, nil
	}
	if !base.Recurrence.IsValid() {
		return Result{}, fmt.Errorf("unknown recurrence rule %q", base.Recurrence)
	}

	start, err := models.ParseDate(base.Date)
	if err != nil {
		return Result{}, err
	}
	horizon := models.Midnight(horizonEnd)

	// A daily series needs one iteration per day, so the horizon length in
	// days bounds every rule. Hitting the cap means a step failed to
	// advance; the partial series is still returned.
	maxSteps := models.DaysBetween(horizon, start) + 1

	events := []models.Event{base}
	current := start
	truncated := false

	for steps := 0; ; steps++ {
		next := step(current, base.Recurrence)
		if !next.After(current) {
			truncated = true
			break
		}
		if next.After(horizon) {
			break
		}
		if steps >= maxSteps {
			truncated = true
			break
		}

		inst := base
		inst.ID = uuid.NewString()
		inst.Date = models.FormatDate(next)
		inst.IsRecurring = true
		inst.SeriesID = base.ID
		events = append(events, inst)

		current = next
	}

	return Result{Events: events, Truncated: truncated}, nil
}

// step advances one instance date. Monthly and yearly use AddDate, which
// rolls forward when the target month is shorter (Jan 31 -> Mar 3); dates
// therefore stay strictly increasing.
func step(t time.Time, rule models.Recurrence) time.Time {
	switch rule {
	case models.RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case models.RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case models.RecurrenceMonthly:
		return t.AddDate(0, 1, 0)
	case models.RecurrenceYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t
	}
}
