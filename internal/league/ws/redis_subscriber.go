package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/pkg/contracts/events"
)

// StartRedisSubscriber escuta o canal Pub/Sub de atualizações ao vivo e
// repassa cada mensagem aos clientes inscritos no partido via Hub.
// Devolve quando a inscrição está ativa.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub) error {
	sub := r.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var upd events.LiveUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					hub.Log.Warn("ws subscriber unmarshal error", zap.Error(err))
					continue
				}
				hub.Broadcast(upd)
			}
		}
	}()
	return nil
}
