package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/agbizu/agbizu/internal/models"
)

// ErrNoEvents is returned when the document parses but holds nothing usable.
var ErrNoEvents = errors.New("no importable events in calendar")

// Import reads an iCalendar document and turns its VEVENTs into event
// drafts ready for creation: no ids are assigned and recurrence is reduced
// to the supported FREQ rules. VEVENTs without a summary or start date are
// skipped rather than failing the whole import.
func Import(data []byte) ([]models.Event, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	var drafts []models.Event
	for _, ve := range cal.Events() {
		draft, ok := draftFromVEvent(ve)
		if !ok {
			continue
		}
		drafts = append(drafts, draft)
	}
	if len(drafts) == 0 {
		return nil, ErrNoEvents
	}
	return drafts, nil
}

func draftFromVEvent(ve *ical.VEvent) (models.Event, bool) {
	var draft models.Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		draft.Title = strings.TrimSpace(p.Value)
	}
	if draft.Title == "" {
		return models.Event{}, false
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		draft.Description = strings.TrimSpace(p.Value)
	}

	// VALUE=DATE (or a bare YYYYMMDD value) marks an all-day event; anything
	// else keeps its clock time.
	allDay := false
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			allDay = true
		}
		if !strings.Contains(p.Value, "T") {
			allDay = true
		}
	}

	var start time.Time
	var err error
	if allDay {
		start, err = ve.GetAllDayStartAt()
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil || start.IsZero() {
		return models.Event{}, false
	}
	draft.Date = start.Format(models.DateLayout)
	if !allDay {
		draft.Time = start.Format(models.TimeLayout)
	}

	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		category := models.Category(strings.ToLower(strings.TrimSpace(p.Value)))
		if category.IsValid() {
			draft.Category = category
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		draft.Recurrence = recurrenceFromRrule(p.Value)
	}
	return draft, true
}

// recurrenceFromRrule keeps only the FREQ part of an RRULE. Unsupported
// frequencies and modifiers (INTERVAL, BYDAY, ...) fall back to a single
// event rather than guessing at semantics.
func recurrenceFromRrule(raw string) models.Recurrence {
	for _, part := range strings.Split(raw, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found || !strings.EqualFold(key, "FREQ") {
			continue
		}
		switch strings.ToUpper(value) {
		case "DAILY":
			return models.RecurrenceDaily
		case "WEEKLY":
			return models.RecurrenceWeekly
		case "MONTHLY":
			return models.RecurrenceMonthly
		case "YEARLY":
			return models.RecurrenceYearly
		}
	}
	return models.RecurrenceNone
}
