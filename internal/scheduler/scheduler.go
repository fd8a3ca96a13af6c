// Package scheduler pushes the daily agenda message: duty status from the
// saved work scale, holiday and the day's events.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agbizu/agbizu/internal/format"
	"github.com/agbizu/agbizu/internal/holidays"
	"github.com/agbizu/agbizu/internal/models"
	"github.com/agbizu/agbizu/internal/scale"
	"github.com/agbizu/agbizu/internal/store"
)

// Backend is the slice of the storage layer the scheduler needs: who to
// notify and their saved scales.
type Backend interface {
	Accounts(ctx context.Context) ([]int64, error)
	LoadScale(ctx context.Context, accountID int64) (*models.ScheduleDefinition, error)
}

type Scheduler struct {
	api           *tgbotapi.BotAPI
	manager       *store.Manager
	backend       Backend
	summaryHour   int
	checkInterval time.Duration

	// lastSent tracks the last summary date per account, so a restart at
	// most repeats one message.
	lastSent map[int64]string
}

func New(api *tgbotapi.BotAPI, manager *store.Manager, backend Backend, summaryHour int) *Scheduler {
	return &Scheduler{
		api:           api,
		manager:       manager,
		backend:       backend,
		summaryHour:   summaryHour,
		checkInterval: 1 * time.Minute,
		lastSent:      make(map[int64]string),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	now := time.Now()
	if now.Hour() != s.summaryHour {
		return
	}
	today := models.FormatDate(models.Midnight(now))

	accounts, err := s.backend.Accounts(ctx)
	if err != nil {
		log.Printf("Failed to list accounts for daily summary: %v", err)
		return
	}

	for _, accountID := range accounts {
		if s.lastSent[accountID] == today {
			continue
		}
		s.sendDailySummary(ctx, accountID, now)
		s.lastSent[accountID] = today
	}
}

func (s *Scheduler) sendDailySummary(ctx context.Context, accountID int64, now time.Time) {
	date := models.Midnight(now)

	var sb strings.Builder
	fmt.Fprintf(&sb, "☀️ **Bom dia!**\n\n📅 %s\n", date.Format("02/01/2006 (Mon)"))

	def, err := s.backend.LoadScale(ctx, accountID)
	if err != nil {
		log.Printf("Failed to load scale for daily summary %d: %v", accountID, err)
	}
	if def != nil {
		if result, err := scale.Evaluate(date, *def); err == nil {
			if result.IsOff {
				fmt.Fprintf(&sb, "🏖 Hoje é dia de **%s** (escala %s)\n", result.Status, result.Scale)
			} else {
				fmt.Fprintf(&sb, "💼 Hoje é dia de **%s** (escala %s)\n", result.Status, result.Scale)
			}
		}
	}

	if holiday, ok := holidays.Lookup(date); ok {
		fmt.Fprintf(&sb, "🎉 Feriado: %s\n", holiday.Name)
	}

	err = s.manager.WithStore(ctx, accountID, func(st *store.Store) error {
		events := st.EventsOn(models.FormatDate(date))
		sb.WriteString("\n**Eventos de hoje**\n")
		if len(events) == 0 {
			sb.WriteString("• Nenhum evento para hoje\n")
			return nil
		}
		for _, e := range events {
			if e.Time != "" {
				fmt.Fprintf(&sb, "• %s %s\n", e.Time, e.Title)
			} else {
				fmt.Fprintf(&sb, "• %s\n", e.Title)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to read events for daily summary %d: %v", accountID, err)
	}

	sb.WriteString("\nTenha um ótimo dia! 💪")

	parsed := format.ParseMarkdown(sb.String())
	msg := tgbotapi.NewMessage(accountID, parsed.Text)
	msg.Entities = parsed.Entities
	if _, err := s.api.Send(msg); err != nil {
		log.Printf("Failed to send daily summary to %d: %v", accountID, err)
		return
	}
	log.Printf("Sent daily summary to user %d", accountID)
}
