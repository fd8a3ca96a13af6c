package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agbizu/agbizu/internal/models"
	"github.com/agbizu/agbizu/internal/store"
)

var recurrenceAliases = map[string]models.Recurrence{
	"daily":   models.RecurrenceDaily,
	"diario":  models.RecurrenceDaily,
	"weekly":  models.RecurrenceWeekly,
	"semanal": models.RecurrenceWeekly,
	"monthly": models.RecurrenceMonthly,
	"mensal":  models.RecurrenceMonthly,
	"yearly":  models.RecurrenceYearly,
	"anual":   models.RecurrenceYearly,
}

var recurrenceLabels = map[models.Recurrence]string{
	models.RecurrenceDaily:   "todo dia",
	models.RecurrenceWeekly:  "toda semana",
	models.RecurrenceMonthly: "todo mês",
	models.RecurrenceYearly:  "todo ano",
}

var categoryEmojis = map[models.Category]string{
	models.CategoryEvento:      "📌",
	models.CategoryAniversario: "🎂",
	models.CategoryTrabalho:    "💼",
	models.CategoryPessoal:     "🏠",
	models.CategorySaude:       "🏥",
	models.CategoryEstudo:      "📚",
}

// handleNewEvent parses /novo <data> [hora] [categoria] [repetição] <título>.
// Optional tokens are recognized by shape, the rest becomes the title.
func (h *Handlers) handleNewEvent(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		h.sendMessage(msg.Chat.ID, "Uso: /novo <data> [hora] [categoria] [repetição] <título>\nExemplo: /novo 2025-12-20 19:00 pessoal Churrasco da firma")
		return
	}

	event := models.Event{Date: args[0]}
	if _, err := models.ParseDate(event.Date); err != nil {
		h.sendMessage(msg.Chat.ID, "Data inválida. Use o formato AAAA-MM-DD, por exemplo 2025-12-20.")
		return
	}

	rest := args[1:]
	for len(rest) > 0 {
		token := strings.ToLower(rest[0])
		if event.Time == "" {
			if _, err := models.ParseClock(rest[0]); err == nil {
				event.Time = rest[0]
				rest = rest[1:]
				continue
			}
		}
		if event.Category == "" && models.Category(token).IsValid() {
			event.Category = models.Category(token)
			rest = rest[1:]
			continue
		}
		if event.Recurrence == "" {
			if r, ok := recurrenceAliases[token]; ok {
				event.Recurrence = r
				rest = rest[1:]
				continue
			}
		}
		break
	}
	event.Title = strings.Join(rest, " ")

	var created *models.Event
	err := h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		var err error
		created, err = s.Create(ctx, event)
		return err
	})
	if errors.Is(err, store.ErrValidation) {
		h.sendMessage(msg.Chat.ID, "Não entendi o evento. Confira o título e a data e tente de novo.")
		return
	}
	if err != nil {
		log.Printf("Failed to create event for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Não consegui salvar o evento. Tente novamente.")
		return
	}

	text := fmt.Sprintf("✅ Evento criado:\n%s\nid: `%s`", formatEventLine(*created), shortID(created.ID))
	if label, ok := recurrenceLabels[created.Recurrence]; ok {
		text += fmt.Sprintf("\n🔁 Repete %s pelos próximos 2 anos.", label)
	}
	h.sendMessage(msg.Chat.ID, text)
}

// handleEventList shows the upcoming window, 30 days by default.
func (h *Handlers) handleEventList(ctx context.Context, msg *tgbotapi.Message) {
	days := 30
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > 730 {
			h.sendMessage(msg.Chat.ID, "Uso: /eventos [dias], entre 1 e 730.")
			return
		}
		days = n
	}

	today := models.Midnight(time.Now())
	start := models.FormatDate(today)
	end := models.FormatDate(today.AddDate(0, 0, days-1))

	err := h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		events := s.EventsBetween(start, end)
		if len(events) == 0 {
			h.sendMessage(msg.Chat.ID, fmt.Sprintf("Nenhum evento nos próximos %d dias.", days))
			return nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "🗓 **Próximos %d dias** (%d eventos):\n\n", days, len(events))
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

func (h *Handlers) handleSearch(ctx context.Context, msg *tgbotapi.Message) {
	keyword := strings.TrimSpace(msg.CommandArguments())
	if keyword == "" {
		h.sendMessage(msg.Chat.ID, "Uso: /buscar <termo>")
		return
	}

	err := h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		events := s.Search(keyword)
		if len(events) == 0 {
			h.sendMessage(msg.Chat.ID, fmt.Sprintf("Nenhum evento encontrado para \"%s\".", keyword))
			return nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "🔍 **%d resultado(s)** para \"%s\":\n\n", len(events), keyword)
		for _, e := range events {
			sb.WriteString(formatEventLine(e))
			fmt.Fprintf(&sb, "   id: `%s`\n", shortID(e.ID))
		}
		h.sendMessage(msg.Chat.ID, sb.String())
		return nil
	})
	if err != nil {
		log.Printf("Failed to search events for %d: %v", msg.From.ID, err)
	}
}

// parseEventPatch turns campo=valor tokens into a partial update. titulo and
// descricao swallow the rest of the input, so they must come last.
func parseEventPatch(arg string) (models.EventPatch, error) {
	var patch models.EventPatch
	tokens := strings.Fields(arg)
	for i := 0; i < len(tokens); i++ {
		key, value, found := strings.Cut(tokens[i], "=")
		if !found {
			return models.EventPatch{}, fmt.Errorf("campo inválido %q, use campo=valor", tokens[i])
		}
		switch strings.ToLower(key) {
		case "data":
			if _, err := models.ParseDate(value); err != nil {
				return models.EventPatch{}, fmt.Errorf("data inválida %q, use AAAA-MM-DD", value)
			}
			patch.Date = &value
		case "hora":
			if value != "" {
				if _, err := models.ParseClock(value); err != nil {
					return models.EventPatch{}, fmt.Errorf("hora inválida %q, use HH:MM", value)
				}
			}
			patch.Time = &value
		case "categoria":
			category := models.Category(strings.ToLower(value))
			if !category.IsValid() {
				return models.EventPatch{}, fmt.Errorf("categoria inválida %q", value)
			}
			patch.Category = &category
		case "repeticao":
			rule, ok := recurrenceAliases[strings.ToLower(value)]
			if !ok && strings.ToLower(value) != "none" && strings.ToLower(value) != "nenhuma" {
				return models.EventPatch{}, fmt.Errorf("repetição inválida %q", value)
			}
			if !ok {
				rule = models.RecurrenceNone
			}
			patch.Recurrence = &rule
		case "titulo":
			title := strings.Join(append([]string{value}, tokens[i+1:]...), " ")
			patch.Title = &title
			return patch, nil
		case "descricao":
			description := strings.Join(append([]string{value}, tokens[i+1:]...), " ")
			patch.Description = &description
			return patch, nil
		default:
			return models.EventPatch{}, fmt.Errorf("campo desconhecido %q", key)
		}
	}
	if patch == (models.EventPatch{}) {
		return models.EventPatch{}, fmt.Errorf("nenhum campo informado")
	}
	return patch, nil
}

// handleEditEvent applies /editar <id> campo=valor... to one record. A date
// or repetition change rebuilds the whole series from the edited record.
func (h *Handlers) handleEditEvent(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	idArg, rest, _ := strings.Cut(args, " ")
	if idArg == "" || strings.TrimSpace(rest) == "" {
		h.sendMessage(msg.Chat.ID, "Uso: /editar <id> campo=valor...\nCampos: data, hora, categoria, repeticao, titulo, descricao (titulo e descricao por último).\nExemplo: /editar a1b2c3d4 data=2025-07-01 hora=08:00")
		return
	}

	patch, err := parseEventPatch(rest)
	if err != nil {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("Não entendi: %v", err))
		return
	}

	err = h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		event, err := s.FindByPrefix(idArg)
		if err != nil {
			return err
		}
		rebuilt := (patch.Date != nil && *patch.Date != event.Date) ||
			(patch.Recurrence != nil && *patch.Recurrence != event.Recurrence)
		updated, err := s.Update(ctx, event.ID, patch)
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
		h.sendMessage(msg.Chat.ID, "Não encontrei um evento com esse id. Use /buscar para conferir.")
		return
	}
	if errors.Is(err, store.ErrValidation) {
		h.sendMessage(msg.Chat.ID, "Os novos valores são inválidos. Confira e tente de novo.")
		return
	}
	if err != nil {
		log.Printf("Failed to edit event for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Não consegui editar o evento. Tente novamente.")
	}
}

// handleDelete removes the series owning the given id. A short id prefix
// from /buscar works too.
func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.sendMessage(msg.Chat.ID, "Uso: /apagar <id>\nUse /buscar para encontrar o id do evento.")
		return
	}

	err := h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		event, err := s.FindByPrefix(arg)
		if err != nil {
			return err
		}
		removed, err := s.Remove(ctx, event.ID)
		if err != nil {
			return err
		}
		if removed > 1 {
			h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 \"%s\" apagado, incluindo as %d repetições da série.", event.Title, removed-1))
		} else {
			h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 \"%s\" apagado.", event.Title))
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		h.sendMessage(msg.Chat.ID, "Não encontrei um evento com esse id. Use /buscar para conferir.")
		return
	}
	if err != nil {
		log.Printf("Failed to delete event for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Não consegui apagar o evento. Tente novamente.")
	}
}

func formatEventLine(e models.Event) string {
	emoji := categoryEmojis[e.Category]
	if emoji == "" {
		emoji = "📌"
	}
	d, err := models.ParseDate(e.Date)
	when := e.Date
	if err == nil {
		when = d.Format("02/01")
	}
	line := fmt.Sprintf("%s %s", emoji, when)
	if e.Time != "" {
		line += " " + e.Time
	}
	line += " - " + e.Title
	if e.IsRecurring {
		line += " 🔁"
	}
	return line + "\n"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
