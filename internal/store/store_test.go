package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbizu/agbizu/internal/models"
)

// fakePersistence keeps collections in memory, per account.
type fakePersistence struct {
	data       map[int64][]models.Event
	loadErr    error
	replaceErr error
	replaces   int
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{data: make(map[int64][]models.Event)}
}

func (f *fakePersistence) LoadAll(_ context.Context, accountID int64) ([]models.Event, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]models.Event, len(f.data[accountID]))
	copy(out, f.data[accountID])
	return out, nil
}

func (f *fakePersistence) ReplaceAll(_ context.Context, accountID int64, events []models.Event) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaces++
	stored := make([]models.Event, len(events))
	copy(stored, events)
	f.data[accountID] = stored
	return nil
}

func newTestStore(t *testing.T, p Persistence) *Store {
	t.Helper()
	s := New(p, 42)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	seq := 0
	s.newID = func() string {
		seq++
		return string(rune('a'+seq-1)) + "0000000-0000-0000-0000-000000000000"
	}
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestCreateSingleEvent(t *testing.T) {
	p := newFakePersistence()
	s := newTestStore(t, p)

	ev, err := s.Create(context.Background(), models.Event{
		Title: "  Consulta médica ",
		Date:  "2025-06-10",
		Time:  "14:30",
	})
	require.NoError(t, err)

	assert.Equal(t, "Consulta médica", ev.Title)
	assert.Equal(t, models.CategoryEvento, ev.Category)
	assert.Equal(t, models.RecurrenceNone, ev.Recurrence)
	assert.Equal(t, ev.ID, ev.SeriesID)
	assert.False(t, ev.IsRecurring)
	assert.True(t, ev.IsBase())
	assert.Equal(t, 1, s.Len())
	assert.Len(t, p.data[42], 1)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		event models.Event
	}{
		{"empty title", models.Event{Title: "   ", Date: "2025-06-10"}},
		{"missing date", models.Event{Title: "x"}},
		{"bad date", models.Event{Title: "x", Date: "10/06/2025"}},
		{"bad time", models.Event{Title: "x", Date: "2025-06-10", Time: "25:00"}},
		{"unknown category", models.Event{Title: "x", Date: "2025-06-10", Category: "ferias"}},
		{"unknown recurrence", models.Event{Title: "x", Date: "2025-06-10", Recurrence: "quinzenal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, newFakePersistence())
			_, err := s.Create(context.Background(), tt.event)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestCreateMonthlySeries(t *testing.T) {
	p := newFakePersistence()
	s := newTestStore(t, p)

	base, err := s.Create(context.Background(), models.Event{
		Title:      "Aluguel",
		Date:       "2025-03-10",
		Category:   models.CategoryPessoal,
		Recurrence: models.RecurrenceMonthly,
	})
	require.NoError(t, err)

	// Base plus 24 monthly instances inside the two-year horizon.
	assert.Equal(t, 25, s.Len())

	all := s.All()
	assert.Equal(t, base.ID, all[0].ID)
	for _, e := range all {
		assert.Equal(t, base.ID, e.SeriesID)
	}
	for _, e := range all[1:] {
		assert.True(t, e.IsRecurring)
		assert.NotEqual(t, base.ID, e.ID)
	}
	assert.Equal(t, "2027-03-10", all[len(all)-1].Date)
	assert.Len(t, p.data[42], 25)
}

func TestUpdateInPlace(t *testing.T) {
	s := newTestStore(t, newFakePersistence())
	ev, err := s.Create(context.Background(), models.Event{
		Title:      "Plantão",
		Date:       "2025-06-02",
		Category:   models.CategoryTrabalho,
		Recurrence: models.RecurrenceWeekly,
	})
	require.NoError(t, err)
	before := s.Len()

	title := "Plantão noturno"
	next := "22:00"
	updated, err := s.Update(context.Background(), ev.ID, models.EventPatch{Title: &title, Time: &next})
	require.NoError(t, err)

	assert.Equal(t, "Plantão noturno", updated.Title)
	assert.Equal(t, "22:00", updated.Time)
	assert.Equal(t, before, s.Len(), "series must not be rebuilt by a title change")

	// Sibling instances keep the old title: in-place edits are per record.
	siblings := s.EventsOn("2025-06-09")
	require.Len(t, siblings, 1)
	assert.Equal(t, "Plantão", siblings[0].Title)
}

func TestUpdateDateRebuildsSeries(t *testing.T) {
	s := newTestStore(t, newFakePersistence())
	_, err := s.Create(context.Background(), models.Event{
		Title:      "Aluguel",
		Date:       "2025-03-10",
		Recurrence: models.RecurrenceMonthly,
	})
	require.NoError(t, err)

	// Make an in-place edit on one sibling first. The rebuild below must
	// discard it along with the rest of the old series.
	edited := s.EventsOn("2025-04-10")
	require.Len(t, edited, 1)
	reajuste := "Aluguel reajustado"
	_, err = s.Update(context.Background(), edited[0].ID, models.EventPatch{Title: &reajuste})
	require.NoError(t, err)

	// Pick a non-base instance and move it: it becomes the new base and the
	// old series disappears entirely.
	instance := s.EventsOn("2025-05-10")
	require.Len(t, instance, 1)
	require.True(t, instance[0].IsRecurring)

	newDate := "2025-05-15"
	rebased, err := s.Update(context.Background(), instance[0].ID, models.EventPatch{Date: &newDate})
	require.NoError(t, err)

	assert.Equal(t, instance[0].ID, rebased.ID, "edited record keeps its id as the new base")
	assert.Equal(t, rebased.ID, rebased.SeriesID)
	assert.False(t, rebased.IsRecurring)

	assert.Empty(t, s.EventsOn("2025-03-10"), "old base must be gone")
	assert.Empty(t, s.EventsOn("2025-04-10"))
	assert.Empty(t, s.Search("reajustado"), "per-record edits do not survive a rebuild")
	assert.Len(t, s.EventsOn("2025-06-15"), 1)
	assert.Equal(t, 25, s.Len())
	for _, e := range s.All() {
		assert.Equal(t, "Aluguel", e.Title)
	}
}

func TestUpdateUnknownAndInvalid(t *testing.T) {
	s := newTestStore(t, newFakePersistence())
	ev, err := s.Create(context.Background(), models.Event{Title: "x", Date: "2025-06-10"})
	require.NoError(t, err)

	title := "y"
	_, err = s.Update(context.Background(), "missing", models.EventPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	empty := "  "
	_, err = s.Update(context.Background(), ev.ID, models.EventPatch{Title: &empty})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveSeries(t *testing.T) {
	s := newTestStore(t, newFakePersistence())
	_, err := s.Create(context.Background(), models.Event{
		Title:      "Plantão",
		Date:       "2025-06-02",
		Recurrence: models.RecurrenceWeekly,
	})
	require.NoError(t, err)
	_, err = s.Create(context.Background(), models.Event{Title: "Aniversário", Date: "2025-07-01"})
	require.NoError(t, err)
	total := s.Len()

	// Removing by any member id takes the whole series down.
	member := s.EventsOn("2025-06-16")
	require.Len(t, member, 1)
	removed, err := s.Remove(context.Background(), member[0].ID)
	require.NoError(t, err)
	assert.Equal(t, total-1, removed)
	assert.Equal(t, 1, s.Len())

	removed, err = s.Remove(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestQueries(t *testing.T) {
	s := newTestStore(t, newFakePersistence())
	ctx := context.Background()
	for _, e := range []models.Event{
		{Title: "Dentista", Date: "2025-06-10", Time: "09:00", Category: models.CategorySaude},
		{Title: "Prova de cálculo", Date: "2025-06-10", Time: "19:00", Category: models.CategoryEstudo},
		{Title: "Churrasco", Date: "2025-06-15", Category: models.CategoryPessoal},
	} {
		_, err := s.Create(ctx, e)
		require.NoError(t, err)
	}

	day := s.EventsOn("2025-06-10")
	require.Len(t, day, 2)
	assert.Equal(t, "Dentista", day[0].Title, "ordered by time")

	rng := s.EventsBetween("2025-06-11", "2025-06-30")
	require.Len(t, rng, 1)
	assert.Equal(t, "Churrasco", rng[0].Title)

	assert.Len(t, s.Search("DENTISTA"), 1)
	assert.Len(t, s.Search("saude"), 1)
	assert.Len(t, s.Search("2025-06"), 3)
	assert.Empty(t, s.Search("  "))
}

func TestFindByPrefix(t *testing.T) {
	s := newTestStore(t, newFakePersistence())
	ev, err := s.Create(context.Background(), models.Event{Title: "x", Date: "2025-06-10"})
	require.NoError(t, err)

	found, err := s.FindByPrefix(ev.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, ev.ID, found.ID)

	_, err = s.FindByPrefix("zzzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlushFailureKeepsMemoryState(t *testing.T) {
	p := newFakePersistence()
	s := newTestStore(t, p)
	p.replaceErr = errors.New("disk full")

	_, err := s.Create(context.Background(), models.Event{Title: "x", Date: "2025-06-10"})
	require.Error(t, err)
	// The event stays in memory even though persistence failed.
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, p.data[42])
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	p := newFakePersistence()
	p.loadErr = errors.New("corrupt file")

	s := New(p, 42)
	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestManagerIsolatesAccounts(t *testing.T) {
	p := newFakePersistence()
	m := NewManager(p)
	ctx := context.Background()

	err := m.WithStore(ctx, 1, func(s *Store) error {
		_, err := s.Create(ctx, models.Event{Title: "conta 1", Date: "2025-06-10"})
		return err
	})
	require.NoError(t, err)

	err = m.WithStore(ctx, 2, func(s *Store) error {
		assert.Zero(t, s.Len())
		return nil
	})
	require.NoError(t, err)

	// Same account gets the same loaded store back.
	err = m.WithStore(ctx, 1, func(s *Store) error {
		assert.Equal(t, 1, s.Len())
		return nil
	})
	require.NoError(t, err)
}

func TestManagerSurvivesLoadError(t *testing.T) {
	p := newFakePersistence()
	p.loadErr = errors.New("backend down")
	m := NewManager(p)

	err := m.WithStore(context.Background(), 7, func(s *Store) error {
		assert.Zero(t, s.Len())
		return nil
	})
	assert.NoError(t, err)
}
