package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/honeypot/internal/domain"
	"github.com/gosuda/honeypot/internal/honeypot"
)

// MessageBody is a single conversation message on the wire.
type MessageBody struct {
	Sender    string `json:"sender" enum:"scammer,user,counterparty,agent" doc:"Message author"`
	Text      string `json:"text" doc:"Message content"`
	Timestamp int64  `json:"timestamp" doc:"Epoch time in milliseconds"`
}

// MetadataBody describes the channel the conversation arrived on.
type MetadataBody struct {
	Channel  string `json:"channel,omitempty" doc:"SMS, WhatsApp, Email, Chat"`
	Language string `json:"language,omitempty" doc:"Language used"`
	Locale   string `json:"locale,omitempty" doc:"Country or region"`
}

type HoneypotInput struct {
	Body struct {
		SessionID           string        `json:"sessionId" minLength:"1" doc:"Conversation identifier"`
		Message             MessageBody   `json:"message" doc:"Latest incoming message"`
		ConversationHistory []MessageBody `json:"conversationHistory,omitempty" doc:"Previous messages"`
		Metadata            *MetadataBody `json:"metadata,omitempty" doc:"Additional context"`
	}
}

type HoneypotOutput struct {
	Body struct {
		Status string `json:"status" doc:"Always success"`
		Reply  string `json:"reply" doc:"Persona reply to send back"`
	}
}

func RegisterHoneypotRoutes(api huma.API, processor TurnProcessor) {
	huma.Register(api, huma.Operation{
		OperationID: "process-turn",
		Method:      http.MethodPost,
		Path:        "/api/honeypot",
		Summary:     "Process one inbound message and reply in persona",
		Tags:        []string{"Honeypot"},
	}, func(ctx context.Context, input *HoneypotInput) (*HoneypotOutput, error) {
		msg, err := toMessage(input.Body.Message)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		history := make([]domain.Message, 0, len(input.Body.ConversationHistory))
		for _, raw := range input.Body.ConversationHistory {
			m, convErr := toMessage(raw)
			if convErr != nil {
				return nil, huma.Error422UnprocessableEntity(convErr.Error())
			}
			history = append(history, m)
		}

		turn := honeypot.Turn{
			SessionID: input.Body.SessionID,
			Message:   msg,
			History:   history,
		}
		if md := input.Body.Metadata; md != nil {
			turn.Metadata = honeypot.Metadata{Channel: md.Channel, Language: md.Language, Locale: md.Locale}
		}

		reply, err := processor.Process(ctx, turn)
		if err != nil {
			log.Error().Err(err).Str("session_id", turn.SessionID).Msg("api: process turn failed")
			return nil, huma.Error500InternalServerError("failed to process message", err)
		}

		out := &HoneypotOutput{}
		out.Body.Status = "success"
		out.Body.Reply = reply
		return out, nil
	})
}

func toMessage(b MessageBody) (domain.Message, error) {
	sender, err := domain.ParseSender(b.Sender)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{Sender: sender, Text: b.Text, Timestamp: b.Timestamp}, nil
}
