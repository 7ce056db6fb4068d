package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

// Sink entrega notificações para um destino externo. Cada sink decide quais
// tipos lhe interessam; ignorar um tipo não é erro.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n model.Notification) error
}

// Notifier desacopla o tick das entregas: Notify só enfileira num buffer
// limitado e descarta quando ele está cheio.
type Notifier struct {
	Log *zap.Logger

	OnDropped   func()
	OnDelivered func(sink string)
	OnError     func(sink string)

	sinks   []Sink
	ch      chan model.Notification
	timeout time.Duration
}

func New(buffer int, timeout time.Duration, log *zap.Logger, sinks ...Sink) *Notifier {
	if buffer <= 0 {
		buffer = 1024
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{Log: log, sinks: sinks, ch: make(chan model.Notification, buffer), timeout: timeout}
}

// Notify nunca bloqueia
func (n *Notifier) Notify(note model.Notification) {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	select {
	case n.ch <- note:
	default:
		n.Log.Debug("notification dropped", zap.String("kind", string(note.Kind)), zap.Int64("match_id", note.MatchID))
		if n.OnDropped != nil {
			n.OnDropped()
		}
	}
}

// Pending devolve quantas notificações aguardam entrega
func (n *Notifier) Pending() int { return len(n.ch) }

// Run entrega até ctx ser cancelado
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case note := <-n.ch:
			n.deliver(ctx, note)
		}
	}
}

// Drain entrega o que já está no buffer, sem esperar por novas
func (n *Notifier) Drain(ctx context.Context) {
	for {
		select {
		case note := <-n.ch:
			n.deliver(ctx, note)
		default:
			return
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, note model.Notification) {
	for _, s := range n.sinks {
		dctx, cancel := context.WithTimeout(ctx, n.timeout)
		err := s.Deliver(dctx, note)
		cancel()
		if err != nil {
			n.Log.Warn("notification delivery failed",
				zap.String("sink", s.Name()),
				zap.String("kind", string(note.Kind)),
				zap.Error(err))
			if n.OnError != nil {
				n.OnError(s.Name())
			}
			continue
		}
		if n.OnDelivered != nil {
			n.OnDelivered(s.Name())
		}
	}
}
