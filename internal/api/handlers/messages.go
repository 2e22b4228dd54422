package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/validation"
)

type MessageClient interface {
	Conversations(ctx context.Context) domain.Result[[]domain.Conversation]
	Thread(ctx context.Context, conversationID string) domain.Result[[]domain.Message]
	Send(ctx context.Context, msg domain.SendMessage) domain.Result[domain.Message]
}

type MessageHandler struct {
	api MessageClient
}

func NewMessageHandler(api MessageClient) *MessageHandler {
	return &MessageHandler{api: api}
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Conversations(r.Context()), http.StatusOK)
}

func (h *MessageHandler) Thread(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Thread(r.Context(), chi.URLParam(r, "id")), http.StatusOK)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var msg domain.SendMessage
	if err := decodeJSON(w, r, &msg); err != nil {
		writeError(w, r, err)
		return
	}
	msg.Content = strings.TrimSpace(msg.Content)
	if v := validateMessage(msg); !v.IsValid {
		writeValidation(w, r, v)
		return
	}
	writeResult(w, r, h.api.Send(r.Context(), msg), http.StatusCreated)
}

func validateMessage(msg domain.SendMessage) validation.Result {
	v := validation.Struct(msg)
	if msg.ConversationID == "" && msg.RecipientID == "" {
		v = validation.Merge(v, validation.Result{Errors: []string{"conversation or recipient is required"}})
	}
	return v
}
