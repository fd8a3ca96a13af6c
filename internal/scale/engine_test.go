package scale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbizu/agbizu/internal/models"
)

func date(s string) time.Time {
	t, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsDayOff_ReferenceWeek(t *testing.T) {
	// 2025-10-06 is a Monday and week 1 of the cycle: ALFA works
	// Tue/Thu/Fri, BRAVO works Mon/Wed/Sat/Sun.
	alfa := models.NamedCycle(models.CycleAlfa)
	bravo := models.NamedCycle(models.CycleBravo)

	tests := []struct {
		date     string
		alfaOff  bool
		bravoOff bool
	}{
		{"2025-10-06", true, false},  // Mon week 1
		{"2025-10-07", false, true},  // Tue week 1
		{"2025-10-08", true, false},  // Wed week 1
		{"2025-10-09", false, true},  // Thu week 1
		{"2025-10-10", false, true},  // Fri week 1
		{"2025-10-11", true, false},  // Sat week 1
		{"2025-10-12", true, false},  // Sun week 1
		{"2025-10-13", false, true},  // Mon week 2
		{"2025-10-14", true, false},  // Tue week 2
		{"2025-10-19", false, true},  // Sun week 2
	}

	for _, tc := range tests {
		t.Run(tc.date, func(t *testing.T) {
			gotAlfa, err := IsDayOff(date(tc.date), alfa)
			require.NoError(t, err)
			gotBravo, err := IsDayOff(date(tc.date), bravo)
			require.NoError(t, err)
			assert.Equal(t, tc.alfaOff, gotAlfa, "alfa")
			assert.Equal(t, tc.bravoOff, gotBravo, "bravo")
		})
	}
}

func TestIsDayOff_FourteenDayPeriodicity(t *testing.T) {
	for _, id := range []models.CycleID{models.CycleAlfa, models.CycleBravo} {
		def := models.NamedCycle(id)
		d := date("2024-01-01") // well before the reference date
		for i := 0; i < 120; i++ {
			a, err := IsDayOff(d, def)
			require.NoError(t, err)
			b, err := IsDayOff(d.AddDate(0, 0, 14), def)
			require.NoError(t, err)
			assert.Equal(t, a, b, "%s %s", id, models.FormatDate(d))
			d = d.AddDate(0, 0, 1)
		}
	}
}

func TestIsDayOff_CyclesAreComplementary(t *testing.T) {
	alfa := models.NamedCycle(models.CycleAlfa)
	bravo := models.NamedCycle(models.CycleBravo)

	d := date("2025-01-01")
	for i := 0; i < 400; i++ {
		a, err := IsDayOff(d, alfa)
		require.NoError(t, err)
		b, err := IsDayOff(d, bravo)
		require.NoError(t, err)
		assert.NotEqual(t, a, b, models.FormatDate(d))
		d = d.AddDate(0, 0, 1)
	}
}

func TestIsDayOff_UnknownCycle(t *testing.T) {
	_, err := IsDayOff(date("2025-10-06"), models.NamedCycle(models.CycleID("CHARLIE")))
	assert.ErrorIs(t, err, models.ErrInvalidSchedule)
}

func TestIsDayOff_CustomSequence(t *testing.T) {
	ref := date("2025-06-01")
	def := models.CustomSequence(
		[]models.DayStatus{models.Work, models.Work, models.Off, models.Off, models.Off},
		ref, "2T x 3F",
	)

	tests := []struct {
		date string
		off  bool
	}{
		{"2025-06-01", false},
		{"2025-06-02", false},
		{"2025-06-03", true},
		{"2025-06-05", true},
		{"2025-06-06", false}, // wraps to index 0
		{"2025-05-31", true},  // one day before the reference, index 4
		{"2025-05-27", false}, // five days before, index 0
	}

	for _, tc := range tests {
		got, err := IsDayOff(date(tc.date), def)
		require.NoError(t, err)
		assert.Equal(t, tc.off, got, tc.date)
	}
}

func TestIsDayOff_EmptyCustomSequence(t *testing.T) {
	def := models.ScheduleDefinition{Kind: models.ScheduleCustom}
	_, err := IsDayOff(date("2025-06-01"), def)
	assert.ErrorIs(t, err, models.ErrInvalidSchedule)
}

func TestEvaluate(t *testing.T) {
	res, err := Evaluate(date("2025-10-06"), models.NamedCycle(models.CycleAlfa))
	require.NoError(t, err)
	assert.Equal(t, "2025-10-06", res.Date)
	assert.True(t, res.IsOff)
	assert.Equal(t, "FOLGA", res.Status)
	assert.Equal(t, "ALFA", res.Scale)

	res, err = Evaluate(date("2025-10-07"), models.NamedCycle(models.CycleAlfa))
	require.NoError(t, err)
	assert.False(t, res.IsOff)
	assert.Equal(t, "TRABALHA", res.Status)
}

func TestStatusForPeriod(t *testing.T) {
	def := models.NamedCycle(models.CycleBravo)
	got, err := StatusForPeriod(date("2025-10-06"), date("2025-10-12"), def)
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, "2025-10-06", got[0].Date)
	assert.Equal(t, "2025-10-12", got[6].Date)
	for _, r := range got {
		assert.Equal(t, "BRAVO", r.Scale)
	}
}

func TestDetermineInitialScale(t *testing.T) {
	// Whatever the answer and whatever the day, the chosen cycle must agree
	// with the answer on that day.
	d := date("2025-10-01")
	for i := 0; i < 30; i++ {
		for _, isOff := range []bool{true, false} {
			def := DetermineInitialScale(isOff, d)
			got, err := IsDayOff(d, def)
			require.NoError(t, err)
			assert.Equal(t, isOff, got, "%s off=%v -> %s", models.FormatDate(d), isOff, def.Label())
		}
		d = d.AddDate(0, 0, 1)
	}
}
