package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbizu/agbizu/internal/models"
)

func TestFileRoundTrip(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	events := []models.Event{
		{
			ID:        "e1",
			Title:     "Plantão",
			Date:      "2025-06-02",
			Time:      "07:00",
			Category:  models.CategoryTrabalho,
			SeriesID:  "e1",
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{ID: "e2", Title: "Dentista", Date: "2025-06-10", SeriesID: "e2"},
	}
	require.NoError(t, f.ReplaceAll(ctx, 42, events))

	got, err := f.LoadAll(ctx, 42)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Plantão", got[0].Title)
	assert.Equal(t, models.CategoryTrabalho, got[0].Category)

	// Other accounts are untouched.
	other, err := f.LoadAll(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFileLoadMissingIsEmpty(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)

	got, err := f.LoadAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events_5.json"), []byte("{not json"), 0o644))

	_, err = f.LoadAll(context.Background(), 5)
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestFileScaleRoundTrip(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// Never saved yet.
	def, err := f.LoadScale(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, def)

	saved := models.NamedCycle(models.CycleBravo)
	require.NoError(t, f.SaveScale(ctx, 7, saved))

	def, err = f.LoadScale(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, models.ScheduleNamed, def.Kind)
	assert.Equal(t, models.CycleBravo, def.Cycle)

	custom := models.CustomSequence(
		[]models.DayStatus{models.Work, models.Work, models.Off},
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		"2T x 1F",
	)
	require.NoError(t, f.SaveScale(ctx, 7, custom))

	def, err = f.LoadScale(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, models.ScheduleCustom, def.Kind)
	assert.Equal(t, "2T x 1F", def.DisplayLabel)
}

func TestFileAccounts(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.ReplaceAll(ctx, 3, []models.Event{{ID: "x", Title: "x", Date: "2025-01-01", SeriesID: "x"}}))
	require.NoError(t, f.SaveScale(ctx, 9, models.NamedCycle(models.CycleAlfa)))
	require.NoError(t, f.SaveScale(ctx, 3, models.NamedCycle(models.CycleAlfa)))

	ids, err := f.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 9}, ids)
}
