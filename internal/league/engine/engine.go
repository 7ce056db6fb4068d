package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/internal/dependencies/clock"
	"github.com/radieske/betbuddy-league/internal/league/gate"
	"github.com/radieske/betbuddy-league/internal/league/generator"
	"github.com/radieske/betbuddy-league/internal/league/mirror"
	"github.com/radieske/betbuddy-league/internal/league/model"
	"github.com/radieske/betbuddy-league/internal/league/settlement"
)

// Config da simulação. Zero values são trocados pelos defaults em New.
type Config struct {
	TickInterval    time.Duration // tempo real por minuto simulado
	MatchLength     int           // minuto em que o partido termina
	BetCutoffMinute int           // último minuto ao vivo que aceita aposta
	JornadaBreak    time.Duration // intervalo antes de uma jornada atrasada começar
	CheckpointEvery int           // ticks entre persistências sem transição
}

func DefaultConfig() Config {
	return Config{
		TickInterval:    2 * time.Second,
		MatchLength:     90,
		BetCutoffMinute: 10,
		JornadaBreak:    time.Minute,
		CheckpointEvery: 5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.MatchLength <= 0 {
		c.MatchLength = d.MatchLength
	}
	if c.JornadaBreak <= 0 {
		c.JornadaBreak = d.JornadaBreak
	}
	if c.CheckpointEvery <= 0 {
		c.CheckpointEvery = d.CheckpointEvery
	}
	// uma aposta aceita no minuto do cutoff não pode ver o partido terminar
	// no tick seguinte
	if c.BetCutoffMinute > c.MatchLength-2 {
		c.BetCutoffMinute = c.MatchLength - 2
	}
	return c
}

// JornadaSpan é o espaçamento entre kickoffs de jornadas consecutivas num
// calendário novo: um partido inteiro mais o intervalo.
func (c Config) JornadaSpan() time.Duration {
	c = c.withDefaults()
	return time.Duration(c.MatchLength)*c.TickInterval + c.JornadaBreak
}

// Notifier recebe resumos de eventos. Notify não pode bloquear nem falhar o tick.
type Notifier interface {
	Notify(n model.Notification)
}

// LoadFunc devolve o snapshot completo da liga (store.LoadAll + seed)
type LoadFunc func(ctx context.Context) (*model.Snapshot, error)

// Hooks são callbacks de métricas; todos opcionais.
type Hooks struct {
	OnTick          func(d time.Duration)
	OnGoal          func()
	OnCard          func()
	OnMatchFinished func()
	OnBetsSettled   func(n int)
	OnBetPlaced     func()
	OnBetRejected   func(reason string)
}

// Engine amarra o espelho, o gate e a simulação. É o único escritor de
// estado de partidos, tabela e pontos.
type Engine struct {
	Log   *zap.Logger
	Hooks Hooks

	cfg      Config
	mirror   *mirror.Mirror
	gate     *gate.Gate
	gen      *generator.Generator
	policy   settlement.Policy
	clock    clock.Clock
	notifier Notifier

	tickMu sync.Mutex
}

type Options struct {
	Config    Config
	Mirror    *mirror.Mirror
	Gate      *gate.Gate
	Generator *generator.Generator
	Policy    settlement.Policy
	Clock     clock.Clock
	Notifier  Notifier
	Log       *zap.Logger
}

func New(o Options) *Engine {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Gate == nil {
		o.Gate = gate.New()
	}
	if o.Policy == (settlement.Policy{}) {
		o.Policy = settlement.DefaultPolicy
	}
	return &Engine{
		Log:      o.Log,
		cfg:      o.Config.withDefaults(),
		mirror:   o.Mirror,
		gate:     o.Gate,
		gen:      o.Generator,
		policy:   o.Policy,
		clock:    o.Clock,
		notifier: o.Notifier,
	}
}

func (e *Engine) Gate() *gate.Gate { return e.gate }

func (e *Engine) Config() Config { return e.cfg }

// Initialize carrega o espelho e resolve o gate uma única vez. Falhas são
// terminais: quem chamar depois recebe o mesmo erro. Apostas de partidos que
// terminaram sem liquidação gravada (queda entre o fim do partido e o flush)
// são liquidadas antes do gate abrir.
func (e *Engine) Initialize(ctx context.Context, load LoadFunc) error {
	return e.gate.Run(ctx, func(ctx context.Context) error {
		snap, err := load(ctx)
		if err != nil {
			return err
		}
		fixes, err := e.mirror.Load(snap)
		if err != nil {
			return err
		}
		for _, f := range fixes {
			e.Log.Warn("derived state reconciled", zap.String("fix", f))
		}

		var (
			settled int
			notes   []model.Notification
		)
		err = e.mirror.Update(func(tx *mirror.Tx) error {
			settled, notes = e.settleOverdue(tx, e.clock.Now())
			return nil
		})
		if err != nil {
			return err
		}
		if settled > 0 {
			e.Log.Warn("settled bets left pending by a previous run", zap.Int("bets", settled))
			if e.Hooks.OnBetsSettled != nil {
				e.Hooks.OnBetsSettled(settled)
			}
			e.notify(notes)
		}

		cp := e.mirror.Checkpoint()
		e.Log.Info("league loaded",
			zap.Int("teams", len(snap.Teams)),
			zap.Int("matches", len(snap.Matches)),
			zap.Int("bets", len(snap.Bets)),
			zap.Int("jornada", cp.Jornada),
			zap.Int64("tick", cp.Tick))
		return nil
	})
}

func (e *Engine) notify(ns []model.Notification) {
	if e.notifier == nil {
		return
	}
	for _, n := range ns {
		e.notifier.Notify(n)
	}
}
