package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable é devolvido a todo chamador quando a carga inicial falhou.
var ErrUnavailable = errors.New("service unavailable")

type State int

const (
	StatePending State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "initializing"
	}
}

// Gate é a barreira de prontidão do espelho de estado. Resolve no máximo uma
// vez: depois de falhar, todo Wait recebe a mesma falha (sem retry automático).
type Gate struct {
	once    sync.Once
	runOnce sync.Once
	done    chan struct{}

	mu    sync.RWMutex
	state State
	err   error
}

func New() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Resolve marca o gate como pronto (err == nil) ou falho. Chamadas após a
// primeira são ignoradas e devolvem false.
func (g *Gate) Resolve(err error) bool {
	resolved := false
	g.once.Do(func() {
		g.mu.Lock()
		if err != nil {
			g.state = StateFailed
			g.err = fmt.Errorf("%w: initialization failed: %v", ErrUnavailable, err)
		} else {
			g.state = StateReady
		}
		g.mu.Unlock()
		close(g.done)
		resolved = true
	})
	return resolved
}

// Run executa load e resolve o gate com o resultado. load roda no máximo uma
// vez por gate: chamadas concorrentes esperam a primeira terminar, e com o
// gate já resolvido (por Resolve) load não roda.
func (g *Gate) Run(ctx context.Context, load func(ctx context.Context) error) error {
	g.runOnce.Do(func() {
		select {
		case <-g.done:
			return
		default:
		}
		g.Resolve(load(ctx))
	})
	return g.Err()
}

// Wait bloqueia até o gate resolver ou ctx expirar. Enquanto a inicialização
// está em curso e ctx expira, devolve ErrUnavailable embrulhando ctx.Err().
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return g.Err()
	case <-ctx.Done():
		return fmt.Errorf("%w: still initializing: %w", ErrUnavailable, ctx.Err())
	}
}

// Done fecha quando o gate resolve
func (g *Gate) Done() <-chan struct{} { return g.done }

func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Gate) Ready() bool { return g.State() == StateReady }

// Err devolve a falha terminal, ou nil se pronto/pendente
func (g *Gate) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.err
}
