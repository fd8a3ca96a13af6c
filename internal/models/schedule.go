package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSchedule marks a schedule definition that cannot be evaluated:
// an unknown named cycle or an empty custom sequence.
var ErrInvalidSchedule = errors.New("invalid schedule definition")

// DayStatus is the work/off state of a single day in a rotation.
type DayStatus int8

const (
	Off  DayStatus = 0
	Work DayStatus = 1
	// Unset only exists while a custom sequence is being built. It never
	// appears in a finalized ScheduleDefinition and never goes on the wire.
	Unset DayStatus = -1
)

// CycleID names one of the two fixed 14-day rotations. They are complements
// of each other: for every date exactly one of them is off.
type CycleID string

const (
	CycleAlfa  CycleID = "ALFA"
	CycleBravo CycleID = "BRAVO"
)

// ScheduleKind is the tag of the ScheduleDefinition union.
type ScheduleKind int

const (
	ScheduleNamed ScheduleKind = iota
	ScheduleCustom
)

// ScheduleDefinition maps dates to work/off status. It is either a named
// 14-day cycle or a user-built repeating sequence anchored to a reference
// date. Dispatch is always on Kind, never on value shape. A definition is
// immutable once built; changing the user's scale replaces it wholesale.
type ScheduleDefinition struct {
	Kind  ScheduleKind
	Cycle CycleID // named only

	// custom only
	Sequence      []DayStatus
	ReferenceDate time.Time
	DisplayLabel  string
}

// NamedCycle builds a definition for one of the fixed rotations.
func NamedCycle(id CycleID) ScheduleDefinition {
	return ScheduleDefinition{Kind: ScheduleNamed, Cycle: id}
}

// CustomSequence builds a definition for a user-authored rotation.
func CustomSequence(seq []DayStatus, ref time.Time, label string) ScheduleDefinition {
	return ScheduleDefinition{
		Kind:          ScheduleCustom,
		Sequence:      seq,
		ReferenceDate: ref,
		DisplayLabel:  label,
	}
}

// Label is the short user-facing name of the schedule.
func (s ScheduleDefinition) Label() string {
	if s.Kind == ScheduleNamed {
		return string(s.Cycle)
	}
	return s.DisplayLabel
}

type customScheduleJSON struct {
	Sequence      []DayStatus `json:"sequence"`
	ReferenceDate time.Time   `json:"referenceDate"`
	DisplayLabel  string      `json:"displayLabel"`
}

// MarshalJSON encodes named cycles as their bare token ("ALFA"/"BRAVO") and
// custom sequences as a structured record.
func (s ScheduleDefinition) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case ScheduleNamed:
		if s.Cycle != CycleAlfa && s.Cycle != CycleBravo {
			return nil, fmt.Errorf("%w: unknown cycle %q", ErrInvalidSchedule, s.Cycle)
		}
		return json.Marshal(string(s.Cycle))
	case ScheduleCustom:
		if len(s.Sequence) == 0 {
			return nil, fmt.Errorf("%w: empty sequence", ErrInvalidSchedule)
		}
		return json.Marshal(customScheduleJSON{
			Sequence:      s.Sequence,
			ReferenceDate: s.ReferenceDate,
			DisplayLabel:  s.DisplayLabel,
		})
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidSchedule, s.Kind)
	}
}

// UnmarshalJSON accepts both wire forms and validates them eagerly so a bad
// definition is rejected at load time, not at first evaluation.
func (s *ScheduleDefinition) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err == nil {
		switch CycleID(token) {
		case CycleAlfa, CycleBravo:
			*s = NamedCycle(CycleID(token))
			return nil
		default:
			return fmt.Errorf("%w: unknown cycle %q", ErrInvalidSchedule, token)
		}
	}

	var custom customScheduleJSON
	if err := json.Unmarshal(data, &custom); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if len(custom.Sequence) == 0 {
		return fmt.Errorf("%w: empty sequence", ErrInvalidSchedule)
	}
	for i, st := range custom.Sequence {
		if st != Off && st != Work {
			return fmt.Errorf("%w: sequence[%d] = %d", ErrInvalidSchedule, i, st)
		}
	}
	*s = CustomSequence(custom.Sequence, custom.ReferenceDate, custom.DisplayLabel)
	return nil
}

// WorkStatusResult is the outcome of evaluating one date against a schedule.
// Derived on demand, never stored.
type WorkStatusResult struct {
	Date   string `json:"date"`
	IsOff  bool   `json:"is_off"`
	Status string `json:"status"` // FOLGA or TRABALHA
	Scale  string `json:"scale"`  // label of the schedule evaluated against
}
