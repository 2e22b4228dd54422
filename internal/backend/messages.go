package backend

import (
	"context"

	"github.com/baechuer/careportal/internal/domain"
)

type MessageAPI struct {
	r Requester
}

func NewMessageAPI(r Requester) *MessageAPI { return &MessageAPI{r: r} }

func (m *MessageAPI) Conversations(ctx context.Context) domain.Result[[]domain.Conversation] {
	return get[[]domain.Conversation](ctx, m.r, "/messages/conversations", nil)
}

func (m *MessageAPI) Thread(ctx context.Context, conversationID string) domain.Result[[]domain.Message] {
	return get[[]domain.Message](ctx, m.r, "/messages/conversations/"+seg(conversationID), nil)
}

func (m *MessageAPI) Send(ctx context.Context, msg domain.SendMessage) domain.Result[domain.Message] {
	return post[domain.Message](ctx, m.r, "/messages", msg)
}
