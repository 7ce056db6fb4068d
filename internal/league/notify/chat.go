package notify

import (
	"context"

	"github.com/radieske/betbuddy-league/internal/league/chat"
	"github.com/radieske/betbuddy-league/internal/league/model"
)

// ChatSink escreve lances importantes como mensagens de sistema no chat do partido
type ChatSink struct {
	store *chat.Store
}

func NewChatSink(store *chat.Store) *ChatSink { return &ChatSink{store: store} }

func (c *ChatSink) Name() string { return "chat" }

func (c *ChatSink) Deliver(ctx context.Context, n model.Notification) error {
	switch n.Kind {
	case model.NotifyKickoff, model.NotifyGoal, model.NotifyCard, model.NotifyFullTime:
		_, err := c.store.Post(ctx, n.MatchID, chat.SystemUsername, n.Text, true)
		return err
	}
	return nil
}
