package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/internal/league/gate"
	"github.com/radieske/betbuddy-league/internal/league/generator"
	"github.com/radieske/betbuddy-league/internal/league/mirror"
	"github.com/radieske/betbuddy-league/internal/league/model"
	"github.com/radieske/betbuddy-league/internal/league/settlement"
	"github.com/radieske/betbuddy-league/internal/league/standings"
)

// TickReport resume o que um tick mudou
type TickReport struct {
	Tick            int64
	Advanced        int
	KickedOff       []int64
	Finished        []int64
	Events          int
	Settled         int
	JornadaAdvanced bool
	SeasonComplete  bool
}

// Tick avança a simulação em um minuto. Todo o trabalho (minutos, eventos,
// encerramentos, liquidação, tabela e jornada) acontece dentro de um único
// Update do espelho. Ticks nunca se sobrepõem.
func (e *Engine) Tick() (TickReport, error) {
	if err := e.ready(); err != nil {
		return TickReport{}, err
	}
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	start := time.Now()
	var (
		rep   TickReport
		notes []model.Notification
	)
	err := e.mirror.Update(func(tx *mirror.Tx) error {
		now := e.clock.Now()
		cp := tx.Checkpoint()
		cp.Tick++
		cp.LastTickAt = now
		periodic := cp.Tick%int64(e.cfg.CheckpointEvery) == 0
		persist := periodic

		if n, overdue := e.settleOverdue(tx, now); n > 0 {
			rep.Settled += n
			notes = append(notes, overdue...)
			if e.Hooks.OnBetsSettled != nil {
				e.Hooks.OnBetsSettled(n)
			}
		}

		for _, mt := range tx.MatchesWithStatus(model.StatusLive) {
			n, finished := e.advance(tx, mt, now, periodic, &rep)
			notes = append(notes, n...)
			if finished {
				persist = true
			}
		}

		if !cp.SeasonComplete {
			for _, mt := range tx.JornadaMatches(cp.Jornada) {
				if mt.Status != model.StatusPending || mt.Kickoff.After(now) {
					continue
				}
				mt.Status = model.StatusLive
				mt.Minute = 0
				tx.TouchMatch(mt)
				rep.KickedOff = append(rep.KickedOff, mt.ID)
				notes = append(notes, model.Notification{
					Kind:      model.NotifyKickoff,
					MatchID:   mt.ID,
					Text:      fmt.Sprintf("¡Comienza el partido! %s vs %s", mt.Home, mt.Away),
					Match:     ptr(mt.Clone()),
					CreatedAt: now,
				})
				persist = true
			}

			if e.advanceJornada(tx, &cp, now) {
				rep.JornadaAdvanced = true
				persist = true
			}
		}

		rep.Tick = cp.Tick
		rep.SeasonComplete = cp.SeasonComplete
		tx.SetCheckpoint(cp, persist)
		return nil
	})
	if err != nil {
		return rep, err
	}

	e.notify(notes)
	if e.Hooks.OnTick != nil {
		e.Hooks.OnTick(time.Since(start))
	}
	if len(rep.Finished) > 0 || rep.JornadaAdvanced || len(rep.KickedOff) > 0 {
		e.Log.Info("tick",
			zap.Int64("tick", rep.Tick),
			zap.Int64s("kicked_off", rep.KickedOff),
			zap.Int64s("finished", rep.Finished),
			zap.Int("settled", rep.Settled),
			zap.Bool("jornada_advanced", rep.JornadaAdvanced))
	}
	return rep, nil
}

// advance move um partido ao vivo um minuto; ao atingir MatchLength o
// partido termina e liquidação e tabela rodam na mesma Tx.
func (e *Engine) advance(tx *mirror.Tx, mt *model.Match, now time.Time, periodic bool, rep *TickReport) ([]model.Notification, bool) {
	var notes []model.Notification
	rep.Advanced++

	if mt.Minute < e.cfg.MatchLength {
		mt.Minute++
		home, away := e.side(tx, mt.HomeTeamID), e.side(tx, mt.AwayTeamID)
		evs := e.gen.Minute(mt, home, away)
		rep.Events += len(evs)
		for i := range evs {
			ev := evs[i]
			kind := model.NotifyCard
			if ev.Type == model.EventGoal {
				kind = model.NotifyGoal
				if ev.PlayerID != 0 {
					tx.CreditGoal(ev.PlayerID)
				}
				if e.Hooks.OnGoal != nil {
					e.Hooks.OnGoal()
				}
			} else if e.Hooks.OnCard != nil {
				e.Hooks.OnCard()
			}
			notes = append(notes, model.Notification{
				Kind:      kind,
				MatchID:   mt.ID,
				Text:      eventText(ev),
				Event:     &ev,
				CreatedAt: now,
			})
		}
		notes = append(notes, model.Notification{
			Kind:      model.NotifyMinute,
			MatchID:   mt.ID,
			Text:      fmt.Sprintf("%d' %s %s %s", mt.Minute, mt.Home, model.ScoreLine(mt.HomeScore, mt.AwayScore), mt.Away),
			Match:     ptr(mt.Clone()),
			CreatedAt: now,
		})
		if len(evs) > 0 || periodic {
			tx.TouchMatch(mt)
		}
	}

	if mt.Minute < e.cfg.MatchLength {
		return notes, false
	}
	return append(notes, e.finish(tx, mt, now, rep)...), true
}

func (e *Engine) finish(tx *mirror.Tx, mt *model.Match, now time.Time, rep *TickReport) []model.Notification {
	mt.Status = model.StatusFinished
	tx.TouchMatch(mt)
	final := mt.Clone()

	res := settlement.Settle(tx, final, e.policy)
	tx.SetStandings(standings.Apply(tx.Standings(), final))

	rep.Finished = append(rep.Finished, mt.ID)
	rep.Settled += len(res.Settled)
	if e.Hooks.OnMatchFinished != nil {
		e.Hooks.OnMatchFinished()
	}
	if e.Hooks.OnBetsSettled != nil && len(res.Settled) > 0 {
		e.Hooks.OnBetsSettled(len(res.Settled))
	}

	notes := []model.Notification{{
		Kind:      model.NotifyFullTime,
		MatchID:   mt.ID,
		Text:      fmt.Sprintf("Final del partido: %s %s %s", mt.Home, model.ScoreLine(mt.HomeScore, mt.AwayScore), mt.Away),
		Match:     &final,
		CreatedAt: now,
	}}
	return append(notes, settledNotes(final, res.Settled, now)...)
}

// settleOverdue liquida apostas pendentes de partidos já finalizados: as que
// sobraram de uma execução anterior e as que entraram no estado depois do
// apito final. Devolve quantas foram liquidadas.
func (e *Engine) settleOverdue(tx *mirror.Tx, now time.Time) (int, []model.Notification) {
	var (
		n     int
		notes []model.Notification
	)
	for _, mt := range tx.FinishedWithUnsettledBets() {
		final := mt.Clone()
		res := settlement.Settle(tx, final, e.policy)
		n += len(res.Settled)
		notes = append(notes, settledNotes(final, res.Settled, now)...)
	}
	return n, notes
}

func settledNotes(final model.Match, bets []model.Bet, now time.Time) []model.Notification {
	notes := make([]model.Notification, 0, len(bets))
	for i := range bets {
		b := bets[i]
		notes = append(notes, model.Notification{
			Kind:      model.NotifyBetSettled,
			MatchID:   final.ID,
			UserID:    b.UserID,
			Text:      fmt.Sprintf("Tu apuesta %s en %s vs %s ganó %d puntos", model.ScoreLine(b.HomeScore, b.AwayScore), final.Home, final.Away, *b.PointsEarned),
			Match:     &final,
			Bet:       &b,
			CreatedAt: now,
		})
	}
	return notes
}

// advanceJornada move o ponteiro quando todos os partidos da jornada
// terminaram. Partidos da próxima jornada com horário já passado são
// reagendados para now + JornadaBreak.
func (e *Engine) advanceJornada(tx *mirror.Tx, cp *model.Checkpoint, now time.Time) bool {
	matches := tx.JornadaMatches(cp.Jornada)
	for _, mt := range matches {
		if mt.Status != model.StatusFinished {
			return false
		}
	}
	if cp.Jornada >= tx.LastJornada() {
		cp.SeasonComplete = true
		e.Log.Info("season complete", zap.Int("jornada", cp.Jornada))
		return true
	}
	cp.Jornada++
	next := now.Add(e.cfg.JornadaBreak)
	for _, mt := range tx.JornadaMatches(cp.Jornada) {
		if mt.Status == model.StatusPending && mt.Kickoff.Before(now) {
			mt.Kickoff = next
			tx.TouchMatch(mt)
		}
	}
	e.Log.Info("jornada advanced", zap.Int("jornada", cp.Jornada))
	return true
}

func (e *Engine) side(tx *mirror.Tx, teamID int64) generator.Side {
	t, _ := tx.Team(teamID)
	return generator.Side{Team: t, Squad: tx.Squad(teamID)}
}

func eventText(ev model.MatchEvent) string {
	who := ev.Team
	if ev.Player != "" {
		who = fmt.Sprintf("%s (%s)", ev.Player, ev.Team)
	}
	switch ev.Type {
	case model.EventGoal:
		return fmt.Sprintf("⚽ %d' ¡Gol de %s! %s", ev.Minute, who, ev.Score)
	case model.EventRedCard:
		return fmt.Sprintf("🟥 %d' Tarjeta roja para %s", ev.Minute, who)
	default:
		return fmt.Sprintf("🟨 %d' Tarjeta amarilla para %s", ev.Minute, who)
	}
}

func ptr[T any](v T) *T { return &v }

// ready não bloqueia: o tick só roda com o gate pronto
func (e *Engine) ready() error {
	if e.gate.Ready() {
		return nil
	}
	if err := e.gate.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: still initializing", gate.ErrUnavailable)
}
