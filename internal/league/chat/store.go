package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/radieske/betbuddy-league/internal/dependencies/clock"
	"github.com/radieske/betbuddy-league/internal/league/model"
)

const (
	MaxTextLength  = 500
	SystemUsername = "BetBuddy"
	LiveKind       = "chat"
)

var ErrInvalidMessage = fmt.Errorf("%w: invalid chat message", model.ErrInvalidInput)

// Publisher repassa mensagens novas para os clientes ao vivo
type Publisher interface {
	PublishLive(ctx context.Context, matchID int64, kind string, payload any) error
}

type Config struct {
	History int           // mensagens mantidas por partido
	TTL     time.Duration // expiração da lista após a última mensagem
}

func DefaultConfig() Config {
	return Config{History: 100, TTL: 24 * time.Hour}
}

// Store guarda o chat de cada partido numa lista Redis (RPUSH + LTRIM)
type Store struct {
	client *redis.Client
	cfg    Config
	clock  clock.Clock
	pub    Publisher
}

func NewStore(client *redis.Client, cfg Config, clk clock.Clock, pub Publisher) *Store {
	d := DefaultConfig()
	if cfg.History <= 0 {
		cfg.History = d.History
	}
	if cfg.TTL <= 0 {
		cfg.TTL = d.TTL
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Store{client: client, cfg: cfg, clock: clk, pub: pub}
}

func key(matchID int64) string { return fmt.Sprintf("chat:match:%d", matchID) }

// Post grava a mensagem e a publica ao vivo. Falha na publicação não desfaz
// a gravação.
func (s *Store) Post(ctx context.Context, matchID int64, username, text string, system bool) (model.ChatMessage, error) {
	username = strings.TrimSpace(username)
	text = strings.TrimSpace(text)
	if matchID <= 0 || username == "" || text == "" || utf8.RuneCountInString(text) > MaxTextLength {
		return model.ChatMessage{}, ErrInvalidMessage
	}

	msg := model.ChatMessage{
		ID:       uuid.NewString(),
		MatchID:  matchID,
		Username: username,
		Text:     text,
		Time:     s.clock.Now().UTC(),
		System:   system,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return model.ChatMessage{}, err
	}

	k := key(matchID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, k, b)
	pipe.LTrim(ctx, k, int64(-s.cfg.History), -1)
	pipe.Expire(ctx, k, s.cfg.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return model.ChatMessage{}, fmt.Errorf("chat post: %w", err)
	}

	if s.pub != nil {
		if err := s.pub.PublishLive(ctx, matchID, LiveKind, msg); err != nil {
			return msg, fmt.Errorf("chat publish: %w", err)
		}
	}
	return msg, nil
}

// List devolve o histórico do partido em ordem cronológica
func (s *Store) List(ctx context.Context, matchID int64) ([]model.ChatMessage, error) {
	raw, err := s.client.LRange(ctx, key(matchID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("chat list: %w", err)
	}
	out := make([]model.ChatMessage, 0, len(raw))
	for _, r := range raw {
		var m model.ChatMessage
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
