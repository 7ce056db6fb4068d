package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/betbuddy-league/internal/league/model"
	"github.com/radieske/betbuddy-league/pkg/contracts/events"
)

// RedisBroadcaster publica atualizações ao vivo no canal Pub/Sub lido pelo
// websocket. Recebe todos os tipos, inclusive os minutos.
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Name() string { return "redis" }

func (b *RedisBroadcaster) Publish(ctx context.Context, payload []byte) error {
	return b.r.Publish(ctx, b.channel, payload).Err()
}

// PublishLive embrulha payload num LiveUpdate do partido
func (b *RedisBroadcaster) PublishLive(ctx context.Context, matchID int64, kind string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	upd, err := json.Marshal(events.LiveUpdate{MatchID: matchID, Kind: kind, Payload: raw})
	if err != nil {
		return err
	}
	return b.Publish(ctx, upd)
}

func (b *RedisBroadcaster) Deliver(ctx context.Context, n model.Notification) error {
	return b.PublishLive(ctx, n.MatchID, string(n.Kind), n)
}
