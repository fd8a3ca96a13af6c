package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agbizu/agbizu/internal/format"
	"github.com/agbizu/agbizu/internal/holidays"
	"github.com/agbizu/agbizu/internal/models"
	"github.com/agbizu/agbizu/internal/scale"
	"github.com/agbizu/agbizu/internal/store"
)

// builderSessions holds in-progress custom scale editors, one per user.
var (
	builderSessions = make(map[int64]*scale.Builder)
	builderMutex    sync.Mutex
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

func (h *Handlers) handleScale(ctx context.Context, msg *tgbotapi.Message) {
	def, err := h.scales.LoadScale(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to load scale for %d: %v", msg.From.ID, err)
	}
	if def == nil {
		h.askInitialScale(msg.Chat.ID)
		return
	}

	today := models.Midnight(time.Now())
	results, err := scale.StatusForPeriod(today, today.AddDate(0, 0, 13), *def)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Sua escala salva está inválida. Configure novamente com os botões abaixo.")
		h.askInitialScale(msg.Chat.ID)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 Sua escala: **%s**\n\nPróximos 14 dias:\n```\n", def.Label())
	for _, r := range results {
		d, _ := models.ParseDate(r.Date)
		fmt.Fprintf(&sb, "%s %s  %s\n", weekdayShort(d), d.Format("02/01"), r.Status)
	}
	sb.WriteString("```\nPara refazer a escala, use os botões abaixo.")

	parsed := format.ParseMarkdown(sb.String())
	reply := tgbotapi.NewMessage(msg.Chat.ID, parsed.Text)
	reply.Entities = parsed.Entities
	reply.ReplyMarkup = initialScaleKeyboard()
	if _, err := h.api.Send(reply); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) askInitialScale(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Vamos configurar sua escala.\n\nVocê está de folga hoje?")
	msg.ReplyMarkup = initialScaleKeyboard()
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func initialScaleKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Sim, estou de folga", "scale_off"),
			tgbotapi.NewInlineKeyboardButtonData("Não, estou trabalhando", "scale_work"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Montar escala personalizada", "scale_custom"),
		),
	)
}

func (h *Handlers) handleScaleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	data := callback.Data

	switch {
	case data == "scale_off" || data == "scale_work":
		def := scale.DetermineInitialScale(data == "scale_off", models.Midnight(time.Now()))
		if err := h.scales.SaveScale(ctx, userID, def); err != nil {
			log.Printf("Failed to save scale for %d: %v", userID, err)
			h.editMessageText(chatID, messageID, "Não consegui salvar sua escala. Tente novamente.")
			return
		}
		h.editMessageText(chatID, messageID,
			fmt.Sprintf("✅ Escala **%s** configurada!\n\nUse /dia <data> para consultar qualquer dia ou /hoje para o resumo de hoje.", def.Label()))

	case data == "scale_custom":
		builderMutex.Lock()
		b := scale.NewBuilder()
		builderSessions[userID] = b
		builderMutex.Unlock()
		h.renderBuilder(chatID, messageID, b)

	case strings.HasPrefix(data, "scale_toggle:"):
		offset, err := strconv.Atoi(strings.TrimPrefix(data, "scale_toggle:"))
		if err != nil {
			return
		}
		b := h.sessionBuilder(userID)
		if b == nil {
			h.editMessageText(chatID, messageID, "Sessão expirada. Use /escala para começar de novo.")
			return
		}
		b.Toggle(offset)
		h.renderBuilder(chatID, messageID, b)

	case data == "scale_clear":
		b := h.sessionBuilder(userID)
		if b == nil {
			return
		}
		b.Clear()
		h.renderBuilder(chatID, messageID, b)

	case data == "scale_save":
		b := h.sessionBuilder(userID)
		if b == nil {
			h.editMessageText(chatID, messageID, "Sessão expirada. Use /escala para começar de novo.")
			return
		}
		def, err := b.Finalize()
		if errors.Is(err, models.ErrInvalidSchedule) {
			h.answerCallbackWithAlert(callback.ID, "Marque pelo menos um dia antes de salvar.")
			return
		}
		if err != nil {
			log.Printf("Failed to finalize scale for %d: %v", userID, err)
			return
		}
		if err := h.scales.SaveScale(ctx, userID, def); err != nil {
			log.Printf("Failed to save scale for %d: %v", userID, err)
			h.answerCallbackWithAlert(callback.ID, "Não consegui salvar sua escala. Tente novamente.")
			return
		}
		h.dropSession(userID)
		h.editMessageText(chatID, messageID,
			fmt.Sprintf("✅ Escala **%s** salva!\n\nEla repete a partir de %s. Use /hoje para conferir.",
				def.Label(), def.ReferenceDate.Format("02/01/2006")))

	case data == "scale_cancel":
		h.dropSession(userID)
		h.editMessageText(chatID, messageID, "Configuração de escala cancelada.")
	}
}

func (h *Handlers) sessionBuilder(userID int64) *scale.Builder {
	builderMutex.Lock()
	defer builderMutex.Unlock()
	return builderSessions[userID]
}

func (h *Handlers) dropSession(userID int64) {
	builderMutex.Lock()
	defer builderMutex.Unlock()
	delete(builderSessions, userID)
}

// renderBuilder redraws the month grid editor. Each day button cycles
// through trabalho (T), folga (F) and unset; the text below previews how the
// marked days repeat over the following month.
func (h *Handlers) renderBuilder(chatID int64, messageID int, b *scale.Builder) {
	anchor := b.Anchor()
	text := fmt.Sprintf("Monte sua escala de %s tocando nos dias:\n%s\nT = trabalho, F = folga. Dias sem marca repetem o padrão.",
		monthNames[anchor.Month()-1], builderPreview(b))

	parsed := format.ParseMarkdown(text)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, parsed.Text, builderKeyboard(b))
	edit.Entities = parsed.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

// builderKeyboard lays the anchor month out as a calendar grid, Monday
// first, plus the action row.
func builderKeyboard(b *scale.Builder) tgbotapi.InlineKeyboardMarkup {
	anchor := b.Anchor()
	daysInMonth := anchor.AddDate(0, 1, -1).Day()
	leading := (int(anchor.Weekday()) + 6) % 7 // Monday-first column of day 1

	var rows [][]tgbotapi.InlineKeyboardButton

	header := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for _, wd := range []string{"S", "T", "Q", "Q", "S", "S", "D"} {
		header = append(header, tgbotapi.NewInlineKeyboardButtonData(wd, "scale_noop"))
	}
	rows = append(rows, header)

	row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < leading; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "scale_noop"))
	}
	for day := 1; day <= daysInMonth; day++ {
		offset := day - 1
		label := strconv.Itoa(day)
		switch b.Cell(offset) {
		case models.Work:
			label += "T"
		case models.Off:
			label += "F"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("scale_toggle:%d", offset)))
		if len(row) == 7 {
			rows = append(rows, row)
			row = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "scale_noop"))
		}
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Limpar", "scale_clear"),
		tgbotapi.NewInlineKeyboardButtonData("Salvar", "scale_save"),
		tgbotapi.NewInlineKeyboardButtonData("Cancelar", "scale_cancel"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// builderPreview shows the month after the anchor month, filled by repeating
// the marked pattern, so the user sees the rotation before saving.
func builderPreview(b *scale.Builder) string {
	if b.Len() == 0 {
		return ""
	}
	anchor := b.Anchor()
	next := anchor.AddDate(0, 1, 0)
	daysInNext := next.AddDate(0, 1, -1).Day()

	var sb strings.Builder
	fmt.Fprintf(&sb, "```\n%s:\n", monthNames[next.Month()-1])
	for day := 1; day <= daysInNext; day++ {
		offset := models.DaysBetween(next.AddDate(0, 0, day-1), anchor)
		switch b.Preview(offset) {
		case models.Work:
			sb.WriteString("T")
		default:
			sb.WriteString("F")
		}
		if day%7 == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("\n```\n")
	return sb.String()
}

func (h *Handlers) handleToday(ctx context.Context, msg *tgbotapi.Message) {
	h.sendDaySummary(ctx, msg.Chat.ID, msg.From.ID, models.Midnight(time.Now()))
}

func (h *Handlers) handleDay(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.sendMessage(msg.Chat.ID, "Informe a data: /dia 2025-12-25")
		return
	}
	date, err := models.ParseDate(arg)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Data inválida. Use o formato AAAA-MM-DD, por exemplo /dia 2025-12-25.")
		return
	}
	h.sendDaySummary(ctx, msg.Chat.ID, msg.From.ID, date)
}

// sendDaySummary composes the per-day view: duty status, holiday, events.
func (h *Handlers) sendDaySummary(ctx context.Context, chatID, userID int64, date time.Time) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 **%s (%s)**\n", date.Format("02/01/2006"), weekdayShort(date))

	def, err := h.scales.LoadScale(ctx, userID)
	if err != nil {
		log.Printf("Failed to load scale for %d: %v", userID, err)
	}
	if def != nil {
		if result, err := scale.Evaluate(date, *def); err == nil {
			if result.IsOff {
				fmt.Fprintf(&sb, "\n🏖 **%s** (escala %s)\n", result.Status, result.Scale)
			} else {
				fmt.Fprintf(&sb, "\n💼 **%s** (escala %s)\n", result.Status, result.Scale)
			}
		}
	} else {
		sb.WriteString("\nSem escala configurada. Use /escala para configurar.\n")
	}

	if holiday, ok := holidays.Lookup(date); ok {
		fmt.Fprintf(&sb, "🎉 Feriado: %s\n", holiday.Name)
	}

	dateStr := models.FormatDate(date)
	err = h.manager.WithStore(ctx, userID, func(s *store.Store) error {
		events := s.EventsOn(dateStr)
		if len(events) == 0 {
			sb.WriteString("\nNenhum evento neste dia.")
			return nil
		}
		sb.WriteString("\nEventos:\n")
		for _, e := range events {
			sb.WriteString(formatEventLine(e))
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to read events for %d: %v", userID, err)
	}

	h.sendMessage(chatID, sb.String())
}

func weekdayShort(t time.Time) string {
	switch t.Weekday() {
	case time.Monday:
		return "seg"
	case time.Tuesday:
		return "ter"
	case time.Wednesday:
		return "qua"
	case time.Thursday:
		return "qui"
	case time.Friday:
		return "sex"
	case time.Saturday:
		return "sáb"
	default:
		return "dom"
	}
}
