package engine

import (
	"context"
	"errors"
	"time"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

// Operações expostas à camada HTTP. Todas esperam o gate antes de tocar no
// espelho; com o gate falho devolvem gate.ErrUnavailable.

func (e *Engine) PlaceBet(ctx context.Context, userID, matchID int64, predHome, predAway int) (model.Bet, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return model.Bet{}, err
	}
	b, err := e.mirror.PlaceBet(userID, matchID, predHome, predAway, e.cfg.BetCutoffMinute)
	if err != nil {
		if e.Hooks.OnBetRejected != nil {
			e.Hooks.OnBetRejected(rejectReason(err))
		}
		return model.Bet{}, err
	}
	if e.Hooks.OnBetPlaced != nil {
		e.Hooks.OnBetPlaced()
	}
	return b, nil
}

// Matches devolve todos os partidos em ordem de calendário
func (e *Engine) Matches(ctx context.Context) ([]model.Match, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return nil, err
	}
	return e.mirror.Matches(), nil
}

// CurrentMatches devolve os partidos da jornada corrente
func (e *Engine) CurrentMatches(ctx context.Context) ([]model.Match, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return nil, err
	}
	_, matches := e.mirror.CurrentJornada()
	return matches, nil
}

func (e *Engine) Match(ctx context.Context, id int64) (model.Match, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return model.Match{}, err
	}
	m, ok := e.mirror.Match(id)
	if !ok {
		return model.Match{}, model.ErrNotFound
	}
	return m, nil
}

// Results devolve os partidos finalizados de uma jornada
func (e *Engine) Results(ctx context.Context, jornada int) ([]model.Match, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return nil, err
	}
	out := []model.Match{}
	for _, m := range e.mirror.MatchesByJornada(jornada) {
		if m.Status == model.StatusFinished {
			out = append(out, m)
		}
	}
	return out, nil
}

func (e *Engine) Standings(ctx context.Context) ([]model.Standing, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return nil, err
	}
	return e.mirror.Standings(), nil
}

func (e *Engine) UserBets(ctx context.Context, userID int64) ([]model.Bet, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return nil, err
	}
	return e.mirror.UserBets(userID), nil
}

func (e *Engine) Leaderboard(ctx context.Context) ([]model.User, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return nil, err
	}
	return e.mirror.Leaderboard(), nil
}

func (e *Engine) TeamPlayers(ctx context.Context, team string) ([]model.Player, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return nil, err
	}
	ps, ok := e.mirror.TeamPlayers(team)
	if !ok {
		return nil, model.ErrNotFound
	}
	return ps, nil
}

func (e *Engine) TopScorers(ctx context.Context, limit int) ([]model.Player, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return nil, err
	}
	return e.mirror.TopScorers(limit), nil
}

// SimulationState é a visão pública do relógio
type SimulationState struct {
	Jornada        int       `json:"jornada"`
	Tick           int64     `json:"tick"`
	LastTickAt     time.Time `json:"lastTickAt"`
	SeasonComplete bool      `json:"seasonComplete"`
	LiveMatches    int       `json:"liveMatches"`
	TickInterval   string    `json:"tickInterval"`
}

func (e *Engine) SimulationState(ctx context.Context) (SimulationState, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return SimulationState{}, err
	}
	cp, matches := e.mirror.CurrentJornada()
	live := 0
	for _, m := range matches {
		if m.Status == model.StatusLive {
			live++
		}
	}
	return SimulationState{
		Jornada:        cp.Jornada,
		Tick:           cp.Tick,
		LastTickAt:     cp.LastTickAt,
		SeasonComplete: cp.SeasonComplete,
		LiveMatches:    live,
		TickInterval:   e.cfg.TickInterval.String(),
	}, nil
}

func (e *Engine) User(ctx context.Context, id int64) (model.User, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return model.User{}, err
	}
	u, ok := e.mirror.User(id)
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (e *Engine) UpdateProfile(ctx context.Context, userID int64, username, avatar string) (model.User, error) {
	if err := e.gate.Wait(ctx); err != nil {
		return model.User{}, err
	}
	return e.mirror.UpdateProfile(userID, username, avatar)
}

// RegisterUser adiciona um usuário já criado pela camada de autenticação
func (e *Engine) RegisterUser(ctx context.Context, u model.User) error {
	if err := e.gate.Wait(ctx); err != nil {
		return err
	}
	if u.ID <= 0 || u.Username == "" {
		return model.ErrInvalidInput
	}
	e.mirror.PutUser(u)
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, model.ErrMatchNotFound):
		return "match_not_found"
	case errors.Is(err, model.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, model.ErrMatchFinished):
		return "match_finished"
	case errors.Is(err, model.ErrBettingClosed):
		return "betting_closed"
	case errors.Is(err, model.ErrDuplicateBet):
		return "duplicate"
	case errors.Is(err, model.ErrInvalidPrediction):
		return "invalid_prediction"
	}
	return "other"
}
