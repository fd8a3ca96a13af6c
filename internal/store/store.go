// Package store owns one account's event collection in memory and keeps
// every recurring series internally consistent: creating or re-dating any
// member regenerates the whole series, removing any member removes the whole
// series. Durable storage is delegated to a Persistence collaborator that
// receives the entire collection after each mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agbizu/agbizu/internal/models"
	"github.com/agbizu/agbizu/internal/recurrence"
)

var (
	// ErrValidation marks event data the user must fix before retrying.
	ErrValidation = errors.New("invalid event data")
	// ErrNotFound is returned, not logged as a fault, when an id is unknown:
	// the UI may legitimately race with store state and treats it as a no-op.
	ErrNotFound = errors.New("event not found")
)

// Persistence mirrors one account's whole collection. ReplaceAll is atomic:
// a reader after a completed mutation never sees a partial write. When the
// backend is shared across devices the contract is last-writer-wins for the
// entire collection; no merge happens here.
type Persistence interface {
	LoadAll(ctx context.Context, accountID int64) ([]models.Event, error)
	ReplaceAll(ctx context.Context, accountID int64, events []models.Event) error
}

// Store is the in-memory event collection of a single account. It does no
// internal locking: the owning session serializes mutations (see Manager).
type Store struct {
	persistence Persistence
	accountID   int64
	events      []models.Event

	now   func() time.Time
	newID func() string
}

// New creates an empty store for one account. Call Load before use.
func New(p Persistence, accountID int64) *Store {
	return &Store{
		persistence: p,
		accountID:   accountID,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Load pulls the persisted collection, once per session start. On a load
// failure the store recovers with an empty collection and returns the error
// for logging; startup never aborts over bad persisted data.
func (s *Store) Load(ctx context.Context) error {
	events, err := s.persistence.LoadAll(ctx, s.accountID)
	if err != nil {
		s.events = nil
		return err
	}
	s.events = events
	return nil
}

// Len is the current collection size.
func (s *Store) Len() int {
	return len(s.events)
}

// All returns a copy of the collection ordered by date, time, title.
func (s *Store) All() []models.Event {
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	sortEvents(out)
	return out
}

// Create validates and stores a new event. A repeating rule expands into a
// whole series over a two-year horizon from the event's date; the series is
// persisted in the same mutation. Returns the base event.
func (s *Store) Create(ctx context.Context, data models.Event) (*models.Event, error) {
	data.Title = strings.TrimSpace(data.Title)
	data.Description = strings.TrimSpace(data.Description)
	if data.Category == "" {
		data.Category = models.CategoryEvento
	}
	if data.Recurrence == "" {
		data.Recurrence = models.RecurrenceNone
	}
	if err := validate(data); err != nil {
		return nil, err
	}

	now := s.now()
	data.ID = s.newID()
	data.SeriesID = data.ID
	data.IsRecurring = false
	data.CreatedAt = now
	data.UpdatedAt = now

	series, err := s.expand(data)
	if err != nil {
		return nil, err
	}

	s.events = append(s.events, series...)
	if err := s.flush(ctx); err != nil {
		return nil, err
	}

	base := series[0]
	return &base, nil
}

// Update merges the patch into the identified record. Changing its date or
// recurrence rebuilds the entire owning series from the patched record as
// the new base, discarding any edits previously made to sibling instances.
// Any other change touches only that single record.
func (s *Store) Update(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	existing := s.events[idx]
	merged := applyPatch(existing, patch)
	if err := validate(merged); err != nil {
		return nil, err
	}
	merged.UpdatedAt = s.now()

	if merged.Date == existing.Date && merged.Recurrence == existing.Recurrence {
		s.events[idx] = merged
		if err := s.flush(ctx); err != nil {
			return nil, err
		}
		out := merged
		return &out, nil
	}

	// The edited member becomes the base of a brand-new series.
	s.dropSeries(existing.SeriesID)
	merged.SeriesID = merged.ID
	merged.IsRecurring = false

	series, err := s.expand(merged)
	if err != nil {
		return nil, err
	}
	s.events = append(s.events, series...)
	if err := s.flush(ctx); err != nil {
		return nil, err
	}

	base := series[0]
	return &base, nil
}

// Remove deletes the whole series owning the identified record, base
// included, and returns how many records went away (0 for an unknown id).
func (s *Store) Remove(ctx context.Context, id string) (int, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return 0, nil
	}

	removed := s.dropSeries(s.events[idx].SeriesID)
	if err := s.flush(ctx); err != nil {
		return removed, err
	}
	return removed, nil
}

// EventsOn returns the events whose date matches exactly.
func (s *Store) EventsOn(date string) []models.Event {
	var out []models.Event
	for _, e := range s.events {
		if e.Date == date {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out
}

// EventsBetween returns the events with start <= date <= end. Dates are
// YYYY-MM-DD strings, so plain string comparison orders them correctly.
func (s *Store) EventsBetween(start, end string) []models.Event {
	var out []models.Event
	for _, e := range s.events {
		if e.Date >= start && e.Date <= end {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out
}

// Search matches the keyword against title, description, category and date,
// case-insensitively.
func (s *Store) Search(keyword string) []models.Event {
	q := strings.ToLower(strings.TrimSpace(keyword))
	if q == "" {
		return nil
	}
	var out []models.Event
	for _, e := range s.events {
		if strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Description), q) ||
			strings.Contains(string(e.Category), q) ||
			strings.Contains(e.Date, q) {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out
}

// Get returns the record with the exact id.
func (s *Store) Get(id string) (*models.Event, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	out := s.events[idx]
	return &out, nil
}

// FindByPrefix resolves a short id prefix to a single record. Ambiguous or
// unknown prefixes report ErrNotFound.
func (s *Store) FindByPrefix(prefix string) (*models.Event, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, ErrNotFound
	}
	var found *models.Event
	for i := range s.events {
		if strings.HasPrefix(s.events[i].ID, prefix) {
			if found != nil {
				return nil, fmt.Errorf("%w: ambiguous id prefix %q", ErrNotFound, prefix)
			}
			e := s.events[i]
			found = &e
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *Store) expand(base models.Event) ([]models.Event, error) {
	baseDate, err := models.ParseDate(base.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	res, err := recurrence.Expand(base, recurrence.DefaultHorizon(baseDate))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if res.Truncated {
		// Partial series: still stored and persisted, just reported.
		log.Printf("recurrence expansion truncated for event %s (%s)", base.ID, base.Recurrence)
	}
	return res.Events, nil
}

// dropSeries removes every member of a series and returns the count.
func (s *Store) dropSeries(seriesID string) int {
	kept := s.events[:0]
	removed := 0
	for _, e := range s.events {
		if e.SeriesID == seriesID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return removed
}

func (s *Store) indexOf(id string) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

// flush mirrors the whole collection to the persistence collaborator. The
// in-memory state is already consistent before this runs.
func (s *Store) flush(ctx context.Context) error {
	snapshot := make([]models.Event, len(s.events))
	copy(snapshot, s.events)
	if err := s.persistence.ReplaceAll(ctx, s.accountID, snapshot); err != nil {
		return fmt.Errorf("persist events: %w", err)
	}
	return nil
}

func validate(e models.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if e.Date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if _, err := models.ParseDate(e.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if e.Time != "" {
		if _, err := models.ParseClock(e.Time); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, e.Category)
	}
	if !e.Recurrence.IsValid() {
		return fmt.Errorf("%w: unknown recurrence %q", ErrValidation, e.Recurrence)
	}
	return nil
}

func applyPatch(e models.Event, p models.EventPatch) models.Event {
	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Recurrence != nil {
		e.Recurrence = *p.Recurrence
	}
	return e
}

func sortEvents(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		return events[i].Title < events[j].Title
	})
}
