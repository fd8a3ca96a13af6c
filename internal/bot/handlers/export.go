package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agbizu/agbizu/internal/ics"
	"github.com/agbizu/agbizu/internal/store"
)

// handleExport sends the whole agenda as an .ics attachment.
func (h *Handlers) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	var payload string
	err := h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		if s.Len() == 0 {
			h.sendMessage(msg.Chat.ID, "Sua agenda está vazia, nada para exportar.")
			return nil
		}
		var err error
		payload, err = ics.Export(s.All())
		return err
	})
	if err != nil {
		log.Printf("Failed to export events for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Não consegui gerar o arquivo. Tente novamente.")
		return
	}
	if payload == "" {
		return
	}

	file := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("agbizu_%s.ics", time.Now().Format("2006-01-02")),
		Bytes: []byte(payload),
	}
	doc := tgbotapi.NewDocument(msg.Chat.ID, file)
	doc.Caption = "📆 Sua agenda em formato iCalendar. Importe no Google Agenda ou no app de calendário do celular."
	if _, err := h.api.Send(doc); err != nil {
		log.Printf("Failed to send export for %d: %v", msg.From.ID, err)
	}
}
