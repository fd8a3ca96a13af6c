// Package ics converts between the agenda and iCalendar documents. Export
// emits only series bases, with repetition carried by an RRULE so the other
// side expands occurrences itself; Import does the reverse for files coming
// from external calendar apps.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/agbizu/agbizu/internal/models"
)

// Export serializes the events into an iCalendar document.
func Export(events []models.Event) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	for _, e := range events {
		if !e.IsBase() {
			continue
		}
		if err := addEvent(cal, e); err != nil {
			return "", err
		}
	}

	return cal.Serialize(), nil
}

func addEvent(cal *ical.Calendar, e models.Event) error {
	start, err := models.ParseDate(e.Date)
	if err != nil {
		return fmt.Errorf("event %s: %w", e.ID, err)
	}

	ve := cal.AddEvent(e.ID)
	ve.SetSummary(e.Title)
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if !e.CreatedAt.IsZero() {
		ve.SetCreatedTime(e.CreatedAt)
	}
	ve.SetDtStampTime(time.Now().UTC())
	ve.SetProperty(ical.ComponentPropertyCategories, string(e.Category))

	if e.Time != "" {
		clock, err := models.ParseClock(e.Time)
		if err != nil {
			return fmt.Errorf("event %s: %w", e.ID, err)
		}
		startAt := time.Date(start.Year(), start.Month(), start.Day(),
			clock.Hour(), clock.Minute(), 0, 0, time.UTC)
		ve.SetStartAt(startAt)
		ve.SetEndAt(startAt.Add(time.Hour))
	} else {
		ve.SetAllDayStartAt(start)
		ve.SetAllDayEndAt(start.AddDate(0, 0, 1))
	}

	if rule, ok := rruleFor(e.Recurrence); ok {
		ve.AddRrule(rule)
	}
	return nil
}

func rruleFor(r models.Recurrence) (string, bool) {
	var freq rrule.Frequency
	switch r {
	case models.RecurrenceDaily:
		freq = rrule.DAILY
	case models.RecurrenceWeekly:
		freq = rrule.WEEKLY
	case models.RecurrenceMonthly:
		freq = rrule.MONTHLY
	case models.RecurrenceYearly:
		freq = rrule.YEARLY
	default:
		return "", false
	}
	return (&rrule.ROption{Freq: freq}).String(), true
}
