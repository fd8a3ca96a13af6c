// Package holidays carries the Brazilian national holiday table used to
// annotate day views and daily summaries.
package holidays

import (
	"time"

	"github.com/agbizu/agbizu/internal/models"
)

type Holiday struct {
	Date string `json:"date"` // YYYY-MM-DD
	Name string `json:"name"`
}

var byYear = map[int][]Holiday{
	2025: {
		{"2025-01-01", "Confraternização Universal"},
		{"2025-03-03", "Carnaval"},
		{"2025-03-04", "Carnaval"},
		{"2025-04-18", "Paixão de Cristo"},
		{"2025-04-21", "Tiradentes"},
		{"2025-05-01", "Dia do Trabalho"},
		{"2025-06-19", "Corpus Christi"},
		{"2025-09-07", "Independência do Brasil"},
		{"2025-10-12", "Nossa Sr.a Aparecida - Padroeira do Brasil"},
		{"2025-11-02", "Finados"},
		{"2025-11-15", "Proclamação da República"},
		{"2025-11-20", "Dia Nacional de Zumbi e da Consciência Negra"},
		{"2025-12-25", "Natal"},
	},
	2026: {
		{"2026-01-01", "Confraternização Universal"},
		{"2026-02-16", "Carnaval"},
		{"2026-02-17", "Carnaval"},
		{"2026-04-03", "Paixão de Cristo"},
		{"2026-04-21", "Tiradentes"},
		{"2026-05-01", "Dia do Trabalho"},
		{"2026-06-04", "Corpus Christi"},
		{"2026-09-07", "Independência do Brasil"},
		{"2026-10-12", "Nossa Sr.a Aparecida - Padroeira do Brasil"},
		{"2026-11-02", "Finados"},
		{"2026-11-15", "Proclamação da República"},
		{"2026-11-20", "Dia Nacional de Zumbi e da Consciência Negra"},
		{"2026-12-25", "Natal"},
	},
}

// ForYear returns the holidays of a year, empty for years outside the table.
func ForYear(year int) []Holiday {
	return byYear[year]
}

// Lookup reports whether the date is a national holiday.
func Lookup(t time.Time) (Holiday, bool) {
	dateStr := models.FormatDate(t)
	for _, h := range byYear[t.Year()] {
		if h.Date == dateStr {
			return h, true
		}
	}
	return Holiday{}, false
}
