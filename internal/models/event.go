package models

import "time"

// Category classifies an event. The set is fixed; the bot renders each one
// with its own marker.
type Category string

const (
	CategoryEvento      Category = "evento"
	CategoryAniversario Category = "aniversario"
	CategoryTrabalho    Category = "trabalho"
	CategoryPessoal     Category = "pessoal"
	CategorySaude       Category = "saude"
	CategoryEstudo      Category = "estudo"
)

// IsValid checks if the category is one of the fixed set.
func (c Category) IsValid() bool {
	switch c {
	case CategoryEvento, CategoryAniversario, CategoryTrabalho,
		CategoryPessoal, CategorySaude, CategoryEstudo:
		return true
	default:
		return false
	}
}

// Recurrence is the repetition rule of an event series.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

// IsValid checks if the recurrence is a known rule.
func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly,
		RecurrenceMonthly, RecurrenceYearly:
		return true
	default:
		return false
	}
}

// Repeats reports whether the rule actually generates a series.
func (r Recurrence) Repeats() bool {
	return r != "" && r != RecurrenceNone
}

// Event is one calendar record. A recurring event is stored as a series of
// records sharing SeriesID: the authored base (SeriesID == ID) plus the
// generated instances (IsRecurring == true). Instances are never expanded
// again on their own.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Date        string     `json:"date"` // YYYY-MM-DD, no time component
	Time        string     `json:"time,omitempty"`
	Category    Category   `json:"category"`
	Recurrence  Recurrence `json:"recurrence"`
	SeriesID    string     `json:"series_id"`
	IsRecurring bool       `json:"is_recurring"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsBase reports whether this record is the authored base of its series.
func (e *Event) IsBase() bool {
	return e.SeriesID == e.ID
}

// EventPatch is a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Category    *Category
	Recurrence  *Recurrence
}
