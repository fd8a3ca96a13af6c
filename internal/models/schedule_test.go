package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleDefinition_NamedRoundTrip(t *testing.T) {
	for _, id := range []CycleID{CycleAlfa, CycleBravo} {
		t.Run(string(id), func(t *testing.T) {
			data, err := json.Marshal(NamedCycle(id))
			require.NoError(t, err)
			assert.Equal(t, `"`+string(id)+`"`, string(data))

			var got ScheduleDefinition
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, ScheduleNamed, got.Kind)
			assert.Equal(t, id, got.Cycle)
		})
	}
}

func TestScheduleDefinition_CustomRoundTrip(t *testing.T) {
	ref := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	def := CustomSequence([]DayStatus{Work, Work, Off, Off, Off}, ref, "2T x 3F")

	data, err := json.Marshal(def)
	require.NoError(t, err)

	var got ScheduleDefinition
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, ScheduleCustom, got.Kind)
	assert.Equal(t, def.Sequence, got.Sequence)
	assert.True(t, got.ReferenceDate.Equal(ref))
	assert.Equal(t, "2T x 3F", got.DisplayLabel)
	assert.Equal(t, "2T x 3F", got.Label())
}

func TestScheduleDefinition_UnmarshalRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown token", `"CHARLIE"`},
		{"empty sequence", `{"sequence":[],"referenceDate":"2025-06-01T00:00:00Z","displayLabel":""}`},
		{"out of range status", `{"sequence":[0,1,2],"referenceDate":"2025-06-01T00:00:00Z","displayLabel":""}`},
		{"unset on the wire", `{"sequence":[0,-1],"referenceDate":"2025-06-01T00:00:00Z","displayLabel":""}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got ScheduleDefinition
			err := json.Unmarshal([]byte(tc.data), &got)
			assert.ErrorIs(t, err, ErrInvalidSchedule)
		})
	}
}

func TestScheduleDefinition_MarshalRejectsEmptyCustom(t *testing.T) {
	_, err := json.Marshal(ScheduleDefinition{Kind: ScheduleCustom})
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestDaysBetween(t *testing.T) {
	ref := time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		date string
		want int
	}{
		{"2025-10-06", 0},
		{"2025-10-07", 1},
		{"2025-10-20", 14},
		{"2025-10-05", -1},
		{"2025-09-22", -14},
	}

	for _, tc := range tests {
		d, err := ParseDate(tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.want, DaysBetween(d, ref), tc.date)
	}

	// Time-of-day never leaks into the difference.
	late := time.Date(2025, time.October, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(late, ref))
}

func TestEuclidMod(t *testing.T) {
	assert.Equal(t, 0, EuclidMod(0, 14))
	assert.Equal(t, 13, EuclidMod(-1, 14))
	assert.Equal(t, 0, EuclidMod(-14, 14))
	assert.Equal(t, 3, EuclidMod(17, 14))
	assert.Equal(t, 1, EuclidMod(-27, 14))
}
