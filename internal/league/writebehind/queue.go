package writebehind

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

// Applier grava uma mutação no store durável. Mutações carregam valores
// absolutos, então reaplicar a mesma mutação é seguro.
type Applier interface {
	Apply(ctx context.Context, mut model.Mutation) error
}

type Config struct {
	Interval    time.Duration // ciclo de flush
	MaxAttempts int           // tentativas por mutação em cada ciclo
	Backoff     time.Duration // espera linear entre tentativas (attempt * Backoff)
	HighWater   int           // acima disso o flush é antecipado
}

func DefaultConfig() Config {
	return Config{Interval: time.Second, MaxAttempts: 3, Backoff: 100 * time.Millisecond, HighWater: 512}
}

// Queue é a fila write-behind entre o espelho e o Postgres.
// Enqueue nunca bloqueia; mutações pendentes com a mesma chave são fundidas
// e a chave vai para a posição do último enqueue. O flush grava em ordem e
// para na primeira falha, então o store sempre tem um prefixo da sequência
// de mutações. Entrega é at-least-once: o que falhou fica retido, na mesma
// ordem, para o próximo ciclo.
type Queue struct {
	Log *zap.Logger

	OnApplied func()
	OnError   func(key string)
	OnDepth   func(n int)

	applier Applier
	cfg     Config

	mu      sync.Mutex
	pending map[string]entry
	held    []entry
	seq     uint64
	closed  bool
	signal  chan struct{}

	flushMu sync.Mutex
}

type entry struct {
	mut model.Mutation
	seq uint64
}

func New(applier Applier, cfg Config, log *zap.Logger) *Queue {
	d := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = d.Interval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = d.MaxAttempts
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	if cfg.HighWater <= 0 {
		cfg.HighWater = d.HighWater
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{
		Log:     log,
		applier: applier,
		cfg:     cfg,
		pending: map[string]entry{},
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue agenda mutações para gravação. Depois de Close as mutações são
// descartadas com log.
func (q *Queue) Enqueue(muts ...model.Mutation) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.Log.Warn("write-behind closed, mutations dropped", zap.Int("count", len(muts)))
		return
	}
	for _, m := range muts {
		q.seq++
		q.pending[m.Key()] = entry{mut: m, seq: q.seq}
	}
	depth := len(q.held) + len(q.pending)
	q.mu.Unlock()

	if q.OnDepth != nil {
		q.OnDepth(depth)
	}
	if depth >= q.cfg.HighWater {
		select {
		case q.signal <- struct{}{}:
		default:
		}
	}
}

// Len devolve o número de mutações na fila, retidas incluídas
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.held) + len(q.pending)
}

// Run faz flush a cada Interval (ou antes, acima de HighWater) até ctx ser
// cancelado. Não faz o flush final: isso é papel de Close.
func (q *Queue) Run(ctx context.Context) {
	t := time.NewTicker(q.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		case <-q.signal:
		}
		q.Flush(ctx)
	}
}

// Flush grava o que está pendente agora, em ordem. Na primeira mutação que
// esgota as tentativas o ciclo para: ela e as seguintes voltam para a fila.
// Devolve quantas mutações foram gravadas e quantas voltaram.
func (q *Queue) Flush(ctx context.Context) (applied, failed int) {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	batch := q.take()
	if len(batch) == 0 {
		return 0, 0
	}

	for i, e := range batch {
		if ctx.Err() != nil {
			return applied, q.requeue(batch[i:])
		}
		if err := q.apply(ctx, e.mut); err != nil {
			q.Log.Warn("write-behind apply failed, holding the rest of the batch",
				zap.String("key", e.mut.Key()),
				zap.Int("held", len(batch)-i-1),
				zap.Error(err))
			if q.OnError != nil {
				q.OnError(e.mut.Key())
			}
			return applied, q.requeue(batch[i:])
		}
		applied++
		if q.OnApplied != nil {
			q.OnApplied()
		}
	}
	return applied, 0
}

// Close marca a fila como fechada e faz o flush final dentro de ctx
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	applied, failed := q.Flush(ctx)
	q.Log.Info("write-behind closed", zap.Int("applied", applied), zap.Int("left", failed))
	if failed > 0 {
		return ErrUnflushed
	}
	return nil
}

// take esvazia a fila: primeiro o que ficou retido do ciclo anterior, depois
// as pendentes em ordem de seq
func (q *Queue) take() []entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	fresh := make([]entry, 0, len(q.pending))
	for _, e := range q.pending {
		fresh = append(fresh, e)
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].seq < fresh[j].seq })
	out := append(q.held, fresh...)
	q.pending = map[string]entry{}
	q.held = nil
	return out
}

// requeue retém as entradas não gravadas, na ordem, à frente de tudo que
// chegou depois. Uma chave repetida entre as retidas fica só com a última
// versão; retidas nunca são fundidas com o que está pendente.
func (q *Queue) requeue(left []entry) int {
	last := make(map[string]int, len(left))
	for i, e := range left {
		last[e.mut.Key()] = i
	}
	held := make([]entry, 0, len(last))
	for i, e := range left {
		if last[e.mut.Key()] == i {
			held = append(held, e)
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.held = held
	return len(held)
}

func (q *Queue) apply(ctx context.Context, m model.Mutation) error {
	var err error
	for attempt := 1; attempt <= q.cfg.MaxAttempts; attempt++ {
		if err = q.applier.Apply(ctx, m); err == nil {
			return nil
		}
		if attempt == q.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * q.cfg.Backoff):
		}
	}
	return err
}
