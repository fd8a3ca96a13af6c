// Package scale evaluates dates against a work/off rotation: the two fixed
// ALFA/BRAVO 14-day cycles or a user-built repeating sequence. Everything
// here is pure date arithmetic with no side effects.
package scale

import (
	"fmt"
	"time"

	"github.com/agbizu/agbizu/internal/models"
)

const namedCycleLength = 14

// namedReference anchors the ALFA/BRAVO patterns. The cycle phase of any
// date is its day distance from this date, Euclidean mod 14.
var namedReference = time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC)

// The two named patterns, one row per week, columns Mon..Sun.
// BRAVO is the bitwise complement of ALFA: whoever is off, the other works.
var (
	alfaPattern = [2][7]models.DayStatus{
		{models.Off, models.Work, models.Off, models.Work, models.Work, models.Off, models.Off},
		{models.Work, models.Off, models.Work, models.Off, models.Off, models.Work, models.Work},
	}
	bravoPattern = [2][7]models.DayStatus{
		{models.Work, models.Off, models.Work, models.Off, models.Off, models.Work, models.Work},
		{models.Off, models.Work, models.Off, models.Work, models.Work, models.Off, models.Off},
	}
)

func cyclePattern(id models.CycleID) ([2][7]models.DayStatus, error) {
	switch id {
	case models.CycleAlfa:
		return alfaPattern, nil
	case models.CycleBravo:
		return bravoPattern, nil
	default:
		return [2][7]models.DayStatus{}, fmt.Errorf("%w: unknown cycle %q", models.ErrInvalidSchedule, id)
	}
}

// IsDayOff reports whether date is an off day under the given schedule.
func IsDayOff(date time.Time, def models.ScheduleDefinition) (bool, error) {
	switch def.Kind {
	case models.ScheduleNamed:
		pattern, err := cyclePattern(def.Cycle)
		if err != nil {
			return false, err
		}
		delta := models.DaysBetween(date, namedReference)
		dayInCycle := models.EuclidMod(delta, namedCycleLength)
		week := 0
		if dayInCycle >= 7 {
			week = 1
		}
		// Go weekdays start at Sunday=0; the patterns start at Monday.
		weekday := (int(date.Weekday()) + 6) % 7
		return pattern[week][weekday] == models.Off, nil

	case models.ScheduleCustom:
		n := len(def.Sequence)
		if n == 0 {
			return false, fmt.Errorf("%w: empty sequence", models.ErrInvalidSchedule)
		}
		delta := models.DaysBetween(date, def.ReferenceDate)
		return def.Sequence[models.EuclidMod(delta, n)] == models.Off, nil

	default:
		return false, fmt.Errorf("%w: unknown kind %d", models.ErrInvalidSchedule, def.Kind)
	}
}

// Evaluate wraps IsDayOff into a displayable result.
func Evaluate(date time.Time, def models.ScheduleDefinition) (models.WorkStatusResult, error) {
	off, err := IsDayOff(date, def)
	if err != nil {
		return models.WorkStatusResult{}, err
	}
	status := "TRABALHA"
	if off {
		status = "FOLGA"
	}
	return models.WorkStatusResult{
		Date:   models.FormatDate(date),
		IsOff:  off,
		Status: status,
		Scale:  def.Label(),
	}, nil
}

// StatusForPeriod evaluates every day from start to end inclusive.
func StatusForPeriod(start, end time.Time, def models.ScheduleDefinition) ([]models.WorkStatusResult, error) {
	var out []models.WorkStatusResult
	for d := models.Midnight(start); !d.After(models.Midnight(end)); d = d.AddDate(0, 0, 1) {
		res, err := Evaluate(d, def)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// DetermineInitialScale picks the named cycle that matches a single answer:
// "are you off today?". Checking BRAVO for today is enough because the two
// cycles are complementary.
func DetermineInitialScale(userIsOffToday bool, today time.Time) models.ScheduleDefinition {
	bravoOffToday, _ := IsDayOff(today, models.NamedCycle(models.CycleBravo))
	if userIsOffToday == bravoOffToday {
		return models.NamedCycle(models.CycleBravo)
	}
	return models.NamedCycle(models.CycleAlfa)
}
