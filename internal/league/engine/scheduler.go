package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler dispara Engine.Tick a cada TickInterval em uma única goroutine.
// Cancelar ctx impede novos ticks; um tick em andamento sempre termina.
type Scheduler struct {
	engine   *Engine
	interval time.Duration

	wg   sync.WaitGroup
	stop chan struct{}
	once sync.Once
}

func NewScheduler(e *Engine) *Scheduler {
	return &Scheduler{engine: e, interval: e.cfg.TickInterval, stop: make(chan struct{})}
}

// Run espera o gate e então roda o loop até ctx ser cancelado ou Stop.
// Devolve o erro do gate se a inicialização falhou.
func (s *Scheduler) Run(ctx context.Context) error {
	s.wg.Add(1)
	defer s.wg.Done()

	if err := s.engine.gate.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	log := s.engine.Log
	log.Info("simulation clock started", zap.Duration("interval", s.interval))

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("simulation clock stopped (context cancelled)")
			return nil
		case <-s.stop:
			log.Info("simulation clock stopped")
			return nil
		case <-t.C:
			if _, err := s.engine.Tick(); err != nil {
				log.Error("tick failed", zap.Error(err))
			}
		}
	}
}

// Stop encerra o loop e espera o tick corrente terminar
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}
