package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agbizu/agbizu/internal/ics"
	"github.com/agbizu/agbizu/internal/store"
)

// maxImportSize caps downloaded calendar files at 1 MiB.
const maxImportSize = 1 << 20

// handleImport explains how to hand the bot a calendar file. The actual
// work happens in handleImportDocument once the attachment arrives.
func (h *Handlers) handleImport(ctx context.Context, msg *tgbotapi.Message) {
	h.sendMessage(msg.Chat.ID, "📥 Me envie um arquivo .ics (exportado do Google Agenda ou de outro calendário) e eu adiciono os eventos na sua agenda.")
}

// handleImportDocument downloads an attached .ics file and creates one
// event per VEVENT. Entries the agenda cannot represent are skipped and
// counted, not fatal.
func (h *Handlers) handleImportDocument(ctx context.Context, msg *tgbotapi.Message) {
	doc := msg.Document
	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".ics") {
		h.sendMessage(msg.Chat.ID, "Só consigo importar arquivos .ics. Use /importar para saber mais.")
		return
	}

	payload, err := h.downloadFile(doc.FileID)
	if err != nil {
		log.Printf("Failed to download import file for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Não consegui baixar o arquivo. Tente enviar de novo.")
		return
	}

	drafts, err := ics.Import(payload)
	if errors.Is(err, ics.ErrNoEvents) {
		h.sendMessage(msg.Chat.ID, "Não encontrei nenhum evento aproveitável nesse arquivo.")
		return
	}
	if err != nil {
		log.Printf("Failed to parse import file for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Esse arquivo não parece ser um calendário válido.")
		return
	}

	var created, skipped int
	err = h.manager.WithStore(ctx, msg.From.ID, func(s *store.Store) error {
		for _, draft := range drafts {
			if _, err := s.Create(ctx, draft); err != nil {
				if errors.Is(err, store.ErrValidation) {
					skipped++
					continue
				}
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to import events for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Algo deu errado ao salvar os eventos. Tente novamente.")
		return
	}

	text := fmt.Sprintf("📥 Importação concluída: %d evento(s) adicionados.", created)
	if skipped > 0 {
		text += fmt.Sprintf("\n%d entrada(s) foram ignoradas por dados incompletos.", skipped)
	}
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) downloadFile(fileID string) ([]byte, error) {
	url, err := h.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch file: unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImportSize))
}
