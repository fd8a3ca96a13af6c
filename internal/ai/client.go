package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *Client) SetModel(model string) {
	c.model = model
}

type Intent struct {
	Action      string            `json:"action"`
	Parameters  map[string]string `json:"parameters"`
	Reply       string            `json:"reply"`
	RawResponse string            `json:"-"`
}

const systemPromptTemplate = `Você é o assistente do AgBizu, um organizador de escala de trabalho e agenda pessoal. Interprete a mensagem do usuário e converta em uma intenção estruturada.

Data e hora atual: %s

Actions disponíveis:
- create_event: criar evento na agenda
- list_events: listar eventos (pode levar keyword de busca)
- update_event: alterar um evento existente (precisa de id ou keyword, mais os campos novos)
- delete_event: apagar evento (precisa de id ou keyword)
- query_day: consultar um dia (folga/trabalho, feriado, eventos)
- unknown: não foi possível identificar

Conforme a action, parameters pode conter:
- title: título do evento
- description: descrição
- date: data (formato YYYY-MM-DD)
- time: horário (formato HH:MM)
- category: evento, aniversario, trabalho, pessoal, saude ou estudo
- recurrence: none, daily, weekly, monthly ou yearly
- id: identificador do evento (para alterar ou apagar)
- keyword: termo de busca (para list_events, update_event ou delete_event)

Para update_event, inclua em parameters apenas os campos que o usuário quer mudar.

Regras:
1. Quando o usuário usar tempo relativo ("amanhã", "segunda que vem", "daqui a 3 dias"), calcule a data concreta a partir da data atual e responda em YYYY-MM-DD.
2. "todo dia" / "toda semana" / "todo mês" / "todo ano" mapeiam para recurrence daily/weekly/monthly/yearly.
3. Escolha a category mais adequada pelo contexto: plantão e serviço são trabalho, consulta e exame são saude, prova e aula são estudo.
4. reply é uma mensagem curta e amigável em português para o usuário, por exemplo confirmando o que foi entendido.`

func getSystemPrompt() string {
	now := time.Now()
	return fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 15:04 (Monday)"))
}

// JSON Schema for structured output
var intentSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"action": {
			"type": "string",
			"enum": ["create_event", "list_events", "update_event", "delete_event", "query_day", "unknown"],
			"description": "The action to perform"
		},
		"parameters": {
			"type": "object",
			"additionalProperties": {
				"type": "string"
			},
			"description": "Parameters for the action"
		},
		"reply": {
			"type": "string",
			"description": "Short friendly reply to show the user, in Portuguese"
		}
	},
	"required": ["action"],
	"additionalProperties": false
}`)

func (c *Client) ParseIntent(ctx context.Context, userMessage string) (*Intent, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: getSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userMessage,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "intent",
				Schema: intentSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	content := resp.Choices[0].Message.Content
	intent := &Intent{RawResponse: content}

	if err := json.Unmarshal([]byte(content), intent); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return intent, nil
}
