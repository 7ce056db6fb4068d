package generator

import (
	"github.com/radieske/betbuddy-league/internal/dependencies/random"
	"github.com/radieske/betbuddy-league/internal/league/model"
)

// Config controla as probabilidades por lado e por minuto simulado.
type Config struct {
	GoalRate      float64 // taxa média de gol por lado/minuto entre times iguais
	HomeAdvantage float64 // multiplicador aplicado ao mandante
	YellowRate    float64
	RedRate       float64
	MaxGoalProb   float64 // teto por minuto, mantém placares realistas
}

// DefaultConfig gera ~2.6 gols por partido entre times de mesma força
func DefaultConfig() Config {
	return Config{
		GoalRate:      0.0145,
		HomeAdvantage: 1.1,
		YellowRate:    0.02,
		RedRate:       0.0015,
		MaxGoalProb:   0.5,
	}
}

// Side agrupa o time e o elenco de um lado do partido
type Side struct {
	Team  model.Team
	Squad []model.Player
}

type Generator struct {
	cfg Config
	rnd random.Random
}

func New(cfg Config, rnd random.Random) *Generator {
	return &Generator{cfg: cfg, rnd: rnd}
}

// GoalProbabilities devolve a chance de gol do mandante e do visitante em um minuto
func (g *Generator) GoalProbabilities(home, away model.Team) (float64, float64) {
	hs, as := float64(max(home.Strength, 0)), float64(max(away.Strength, 0))
	homeShare, awayShare := 0.5, 0.5
	if total := hs + as; total > 0 {
		homeShare, awayShare = hs/total, as/total
	}
	pHome := g.cfg.GoalRate * 2 * homeShare * g.cfg.HomeAdvantage
	pAway := g.cfg.GoalRate * 2 * awayShare
	return clamp(pHome, g.cfg.MaxGoalProb), clamp(pAway, g.cfg.MaxGoalProb)
}

// Minute sorteia os eventos do minuto atual de m (m.Minute) e os aplica:
// placar, log de eventos e snapshot do placar. Devolve os eventos novos na
// ordem de inserção. Gols são sorteados antes de cartões, mandante primeiro.
func (g *Generator) Minute(m *model.Match, home, away Side) []model.MatchEvent {
	if m.Status != model.StatusLive {
		return nil
	}
	pHome, pAway := g.GoalProbabilities(home.Team, away.Team)

	var out []model.MatchEvent
	if g.rnd.Float64() < pHome {
		m.HomeScore++
		out = append(out, g.event(m, model.EventGoal, home))
	}
	if g.rnd.Float64() < pAway {
		m.AwayScore++
		out = append(out, g.event(m, model.EventGoal, away))
	}
	for _, side := range []Side{home, away} {
		r := g.rnd.Float64()
		switch {
		case r < g.cfg.RedRate:
			out = append(out, g.event(m, model.EventRedCard, side))
		case r < g.cfg.RedRate+g.cfg.YellowRate:
			out = append(out, g.event(m, model.EventYellowCard, side))
		}
	}
	m.Events = append(m.Events, out...)
	return out
}

func (g *Generator) event(m *model.Match, typ model.EventType, side Side) model.MatchEvent {
	ev := model.MatchEvent{
		Type:      typ,
		TeamID:    side.Team.ID,
		Team:      side.Team.Name,
		Minute:    m.Minute,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		Score:     model.ScoreLine(m.HomeScore, m.AwayScore),
	}
	if len(side.Squad) > 0 {
		p := side.Squad[g.rnd.Intn(len(side.Squad))]
		ev.PlayerID = p.ID
		ev.Player = p.Name
	}
	return ev
}

func clamp(p, ceiling float64) float64 {
	if p < 0 {
		return 0
	}
	if ceiling > 0 && p > ceiling {
		return ceiling
	}
	return p
}
