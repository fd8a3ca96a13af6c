package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agbizu/agbizu/internal/ai"
	"github.com/agbizu/agbizu/internal/models"
	"github.com/agbizu/agbizu/internal/store"
)

func (h *Handlers) handleAIMessage(ctx context.Context, msg *tgbotapi.Message) {
	if h.ai == nil {
		h.sendMessage(msg.Chat.ID, "Entrada em linguagem natural não está habilitada. Use /help para ver os comandos.")
		return
	}

	intent, err := h.ai.ParseIntent(ctx, msg.Text)
	if err != nil {
		log.Printf("Failed to parse intent: %v", err)
		h.sendMessage(msg.Chat.ID, "Desculpe, não consegui entender. Tente descrever de outra forma ou use /help.")
		return
	}

	h.executeIntent(ctx, msg, intent)
}

func (h *Handlers) executeIntent(ctx context.Context, msg *tgbotapi.Message, intent *ai.Intent) {
	switch intent.Action {
	case "create_event":
		h.aiCreateEvent(ctx, msg, intent)
	case "list_events":
		h.aiListEvents(ctx, msg, intent)
	case "update_event":
		h.aiUpdateEvent(ctx, msg, intent)
	case "delete_event":
		h.aiDeleteEvent(ctx, msg, intent)
	case "query_day":
		h.aiQueryDay(ctx, msg, intent)
	default:
		reply := intent.Reply
		if reply == "" {
			reply = "Não entendi o que você quer fazer. Use /help para ver os comandos."
		}
		h.sendMessage(msg.Chat.ID, reply)
	}
}

func (h *Handlers) aiCreateEvent(ctx context.Context, msg *tgbotapi.Message, intent *ai.Intent) {
	event := models.Event{
		Title:       intent.Parameters["title"],
		Description: intent.Parameters["description"],
		Date:        intent.Parameters["date"],
		Time:        intent.Parameters["time"],
		Category:    models.Category(intent.Parameters["category"]),
		Recurrence:  models.Recurrence(intent.Parameters["recurrence"]),
	}

	var created *models.Event
	err := h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		var err error
		created, err = s.Create(ctx, event)
		return err
	})
	if errors.Is(err, store.ErrValidation) {
		h.sendMessage(msg.Chat.ID, "Faltou alguma informação para criar o evento. Me diga pelo menos o título e a data.")
		return
	}
	if err != nil {
		log.Printf("Failed to create event for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Não consegui salvar o evento. Tente novamente.")
		return
	}

	text := fmt.Sprintf("✅ Anotado!\n%s", formatEventLine(*created))
	if label, ok := recurrenceLabels[created.Recurrence]; ok {
		text += fmt.Sprintf("🔁 Repete %s.", label)
	}
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) aiListEvents(ctx context.Context, msg *tgbotapi.Message, intent *ai.Intent) {
	keyword := intent.Parameters["keyword"]

	err := h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		var events []models.Event
		if keyword != "" {
			events = s.Search(keyword)
		} else {
			today := models.Midnight(time.Now())
			events = s.EventsBetween(models.FormatDate(today), models.FormatDate(today.AddDate(0, 0, 29)))
		}
		if len(events) == 0 {
			h.sendMessage(msg.Chat.ID, "Nenhum evento encontrado.")
			return nil
		}
		var sb strings.Builder
		if intent.Reply != "" {
			sb.WriteString(intent.Reply + "\n\n")
		}
		for _, e := range events {
			sb.WriteString(formatEventLine(e))
		}
		h.sendMessage(msg.Chat.ID, sb.String())
		return nil
	})
	if err != nil {
		log.Printf("Failed to list events for %d: %v", msg.From.ID, err)
	}
}

func (h *Handlers) aiUpdateEvent(ctx context.Context, msg *tgbotapi.Message, intent *ai.Intent) {
	var patch models.EventPatch
	if v, ok := intent.Parameters["title"]; ok {
		patch.Title = &v
	}
	if v, ok := intent.Parameters["description"]; ok {
		patch.Description = &v
	}
	if v, ok := intent.Parameters["date"]; ok {
		patch.Date = &v
	}
	if v, ok := intent.Parameters["time"]; ok {
		patch.Time = &v
	}
	if v, ok := intent.Parameters["category"]; ok {
		category := models.Category(v)
		patch.Category = &category
	}
	if v, ok := intent.Parameters["recurrence"]; ok {
		rule := models.Recurrence(v)
		patch.Recurrence = &rule
	}
	if patch == (models.EventPatch{}) {
		h.sendMessage(msg.Chat.ID, "Não entendi o que você quer mudar no evento. Pode detalhar?")
		return
	}

	err := h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		var target *models.Event
		if id := intent.Parameters["id"]; id != "" {
			found, err := s.FindByPrefix(id)
			if err != nil {
				return err
			}
			target = found
		} else if keyword := intent.Parameters["keyword"]; keyword != "" {
			matches := s.Search(keyword)
			if len(matches) == 0 {
				return store.ErrNotFound
			}
			if len(matches) > 1 {
				var sb strings.Builder
				sb.WriteString("Encontrei mais de um evento. Qual deles? Use /editar <id>:\n\n")
				for _, e := range matches {
					sb.WriteString(formatEventLine(e))
					fmt.Fprintf(&sb, "   id: `%s`\n", shortID(e.ID))
				}
				h.sendMessage(msg.Chat.ID, sb.String())
				return nil
			}
			target = &matches[0]
		} else {
			return store.ErrNotFound
		}

		rebuilt := (patch.Date != nil && *patch.Date != target.Date) ||
			(patch.Recurrence != nil && *patch.Recurrence != target.Recurrence)
		updated, err := s.Update(ctx, target.ID, patch)
		if err != nil {
			return err
		}
		text := fmt.Sprintf("✏️ Evento atualizado:\n%s", formatEventLine(*updated))
		if rebuilt && updated.Recurrence.Repeats() {
			text += "🔁 A série foi regenerada a partir da nova data."
		}
		h.sendMessage(msg.Chat.ID, text)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		h.sendMessage(msg.Chat.ID, "Não encontrei esse evento. Use /buscar para conferir o id.")
		return
	}
	if errors.Is(err, store.ErrValidation) {
		h.sendMessage(msg.Chat.ID, "Os novos valores são inválidos. Confira e tente de novo.")
		return
	}
	if err != nil {
		log.Printf("Failed to update event for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Não consegui atualizar o evento. Tente novamente.")
	}
}

func (h *Handlers) aiDeleteEvent(ctx context.Context, msg *tgbotapi.Message, intent *ai.Intent) {
	err := h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		var target *models.Event
		if id := intent.Parameters["id"]; id != "" {
			found, err := s.FindByPrefix(id)
			if err != nil {
				return err
			}
			target = found
		} else if keyword := intent.Parameters["keyword"]; keyword != "" {
			matches := s.Search(keyword)
			if len(matches) == 0 {
				return store.ErrNotFound
			}
			if len(matches) > 1 {
				var sb strings.Builder
				sb.WriteString("Encontrei mais de um evento. Qual deles? Use /apagar <id>:\n\n")
				for _, e := range matches {
					sb.WriteString(formatEventLine(e))
					fmt.Fprintf(&sb, "   id: `%s`\n", shortID(e.ID))
				}
				h.sendMessage(msg.Chat.ID, sb.String())
				return nil
			}
			target = &matches[0]
		} else {
			return store.ErrNotFound
		}

		removed, err := s.Remove(ctx, target.ID)
		if err != nil {
			return err
		}
		if removed > 1 {
			h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 \"%s\" apagado, incluindo as %d repetições da série.", target.Title, removed-1))
		} else {
			h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 \"%s\" apagado.", target.Title))
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		h.sendMessage(msg.Chat.ID, "Não encontrei esse evento. Use /buscar para conferir o id.")
		return
	}
	if err != nil {
		log.Printf("Failed to delete event for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Não consegui apagar o evento. Tente novamente.")
	}
}

func (h *Handlers) aiQueryDay(ctx context.Context, msg *tgbotapi.Message, intent *ai.Intent) {
	date := models.Midnight(time.Now())
	if raw := intent.Parameters["date"]; raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			h.sendMessage(msg.Chat.ID, "Não entendi a data. Pode repetir no formato AAAA-MM-DD?")
			return
		}
		date = parsed
	}
	h.sendDaySummary(ctx, msg.Chat.ID, msg.From.ID, date)
}
