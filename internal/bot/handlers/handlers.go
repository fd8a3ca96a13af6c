// Package handlers implements the Telegram command surface: work scale
// management, the agenda, natural-language input and calendar export.
package handlers

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agbizu/agbizu/internal/ai"
	"github.com/agbizu/agbizu/internal/format"
	"github.com/agbizu/agbizu/internal/models"
	"github.com/agbizu/agbizu/internal/store"
)

// ScaleStorage persists one work schedule per account.
type ScaleStorage interface {
	LoadScale(ctx context.Context, accountID int64) (*models.ScheduleDefinition, error)
	SaveScale(ctx context.Context, accountID int64, def models.ScheduleDefinition) error
}

type Handlers struct {
	api     *tgbotapi.BotAPI
	manager *store.Manager
	scales  ScaleStorage
	ai      *ai.Client
}

func New(api *tgbotapi.BotAPI, manager *store.Manager, scales ScaleStorage, aiClient *ai.Client) *Handlers {
	return &Handlers{
		api:     api,
		manager: manager,
		scales:  scales,
		ai:      aiClient,
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help", "ajuda":
		h.handleHelp(ctx, msg)
	case "escala":
		h.handleScale(ctx, msg)
	case "dia":
		h.handleDay(ctx, msg)
	case "hoje":
		h.handleToday(ctx, msg)
	case "novo":
		h.handleNewEvent(ctx, msg)
	case "eventos":
		h.handleEventList(ctx, msg)
	case "buscar":
		h.handleSearch(ctx, msg)
	case "editar":
		h.handleEditEvent(ctx, msg)
	case "apagar":
		h.handleDelete(ctx, msg)
	case "export":
		h.handleExport(ctx, msg)
	case "importar":
		h.handleImport(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Comando desconhecido. Use /help para ver os comandos disponíveis.")
	}
}

func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Document != nil {
		h.handleImportDocument(ctx, msg)
		return
	}
	h.handleAIMessage(ctx, msg)
}

func (h *Handlers) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Answer callback to remove loading state
	answer := tgbotapi.NewCallback(callback.ID, "")
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	h.handleScaleCallback(ctx, callback)
}

func (h *Handlers) answerCallbackWithAlert(callbackID string, text string) {
	answer := tgbotapi.NewCallbackWithAlert(callbackID, text)
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback with alert: %v", err)
	}
}

// sendMessage renders the Markdown subset into plain text plus entities, so
// user-provided titles never break Telegram's Markdown parser.
func (h *Handlers) sendMessage(chatID int64, text string) {
	parsed := format.ParseMarkdown(text)
	msg := tgbotapi.NewMessage(chatID, parsed.Text)
	msg.Entities = parsed.Entities
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) editMessageText(chatID int64, messageID int, text string) {
	parsed := format.ParseMarkdown(text)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, parsed.Text)
	edit.Entities = parsed.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func (h *Handlers) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	text := fmt.Sprintf(`👋 Olá %s!

Sou o AgBizu, seu organizador de escala e agenda.

O que eu faço:
📅 Calculo sua escala de trabalho (ALFA, BRAVO ou personalizada)
🗓 Guardo seus eventos, com repetição diária, semanal, mensal ou anual
🎂 Aviso dos feriados nacionais
🤖 Entendo linguagem natural: "plantão toda segunda às 7h"

Comece configurando sua escala com /escala.

Use /help para ver todos os comandos.`, msg.From.FirstName)
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	text := `📖 **Comandos**

**Escala**
/escala - configurar ou ver sua escala de trabalho
/dia <data> - folga ou trabalho em uma data (ex: /dia 2025-12-25)
/hoje - resumo de hoje

**Agenda**
/novo <data> [hora] [categoria] [repetição] <título> - criar evento
/eventos [dias] - próximos eventos (padrão: 30 dias)
/buscar <termo> - procurar eventos
/editar <id> campo=valor... - editar evento (data, hora, categoria, repeticao, titulo, descricao)
/apagar <id> - apagar evento (apaga a série inteira)
/export - baixar a agenda em formato iCalendar
/importar - importar eventos de um arquivo .ics

💡 Você também pode escrever em linguagem natural, por exemplo:
• "consulta no dentista dia 10 às 14h"
• "aluguel todo dia 5"
• "estou de folga no natal?"`
	h.sendMessage(msg.Chat.ID, text)
}
