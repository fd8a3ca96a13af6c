package scale

import (
	"fmt"
	"time"

	"github.com/agbizu/agbizu/internal/models"
)

// Builder accumulates a sparse day-status sequence during an interactive
// setup session. Cells are indexed by day offset from the anchor date: the
// first day of the calendar month current at evaluation time. The anchor is
// re-read on every call rather than pinned at session start, so a session
// that crosses a month boundary finalizes against the new month.
type Builder struct {
	cells []models.DayStatus
	now   func() time.Time
}

// NewBuilder starts an empty building session.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Anchor is the first day of the current month.
func (b *Builder) Anchor() time.Time {
	t := b.now()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Len is the number of cells touched so far, gaps included.
func (b *Builder) Len() int {
	return len(b.cells)
}

// Cell returns the explicit value at index, or Unset when out of range.
func (b *Builder) Cell(index int) models.DayStatus {
	if index < 0 || index >= len(b.cells) {
		return models.Unset
	}
	return b.cells[index]
}

// Toggle flips the cell at index. Touching a cell past the current end
// extends the sequence, filling the gap with Unset and marking the touched
// day as Work. An existing cell cycles Unset -> Work -> Off -> Unset.
func (b *Builder) Toggle(index int) {
	if index < 0 {
		return
	}
	if index >= len(b.cells) {
		for len(b.cells) < index {
			b.cells = append(b.cells, models.Unset)
		}
		b.cells = append(b.cells, models.Work)
		return
	}
	switch b.cells[index] {
	case models.Unset:
		b.cells[index] = models.Work
	case models.Work:
		b.cells[index] = models.Off
	default:
		b.cells[index] = models.Unset
	}
}

// Clear discards the whole sequence.
func (b *Builder) Clear() {
	b.cells = nil
}

// Preview returns the status a day at the given anchor offset would have if
// the sequence were finalized now. Explicitly set cells win; anything else
// wraps around the sequence, reading Unset as Off. Display only, no
// mutation. With no cells yet the preview is Unset.
func (b *Builder) Preview(offset int) models.DayStatus {
	n := len(b.cells)
	if n == 0 {
		return models.Unset
	}
	if offset >= 0 && offset < n && b.cells[offset] != models.Unset {
		return b.cells[offset]
	}
	if b.cells[models.EuclidMod(offset, n)] == models.Work {
		return models.Work
	}
	return models.Off
}

// Finalize converts the session into an immutable custom schedule: Unset
// cells become Off, the reference date is the anchor in effect right now,
// and the label counts the explicitly chosen cells ("3T x 4F").
func (b *Builder) Finalize() (models.ScheduleDefinition, error) {
	if len(b.cells) == 0 {
		return models.ScheduleDefinition{}, fmt.Errorf("%w: empty sequence", models.ErrInvalidSchedule)
	}

	seq := make([]models.DayStatus, len(b.cells))
	works, offs := 0, 0
	for i, c := range b.cells {
		switch c {
		case models.Work:
			seq[i] = models.Work
			works++
		case models.Off:
			seq[i] = models.Off
			offs++
		default:
			seq[i] = models.Off
		}
	}

	label := fmt.Sprintf("%dT x %dF", works, offs)
	return models.CustomSequence(seq, b.Anchor(), label), nil
}
