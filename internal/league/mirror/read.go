package mirror

import (
	"sort"
	"strings"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

// Leituras: todas sobre a view publicada, todas devolvem cópias.

func (m *Mirror) Matches() []model.Match {
	s := m.view.Load()
	out := make([]model.Match, 0, len(s.matchOrder))
	for _, id := range s.matchOrder {
		out = append(out, s.matches[id].Clone())
	}
	return out
}

func (m *Mirror) MatchesByJornada(jornada int) []model.Match {
	return m.view.Load().jornada(jornada)
}

// CurrentJornada devolve o checkpoint e os partidos da jornada dele, lidos
// da mesma view
func (m *Mirror) CurrentJornada() (model.Checkpoint, []model.Match) {
	s := m.view.Load()
	return s.checkpoint, s.jornada(s.checkpoint.Jornada)
}

func (s *state) jornada(n int) []model.Match {
	var out []model.Match
	for _, id := range s.matchOrder {
		if mt := s.matches[id]; mt.Jornada == n {
			out = append(out, mt.Clone())
		}
	}
	return out
}

func (m *Mirror) Match(id int64) (model.Match, bool) {
	mt, ok := m.view.Load().matches[id]
	if !ok {
		return model.Match{}, false
	}
	return mt.Clone(), true
}

func (m *Mirror) Standings() []model.Standing {
	s := m.view.Load()
	out := make([]model.Standing, len(s.standings))
	copy(out, s.standings)
	return out
}

// UserBets devolve as apostas do usuário (mais recentes primeiro) com o
// partido anexado. O inbox é lido antes da view: uma aposta que já saiu do
// inbox está em toda view publicada depois disso.
func (m *Mirror) UserBets(userID int64) []model.Bet {
	var accepted []model.Bet
	m.betMu.Lock()
	for _, b := range m.inbox {
		if b.UserID == userID {
			accepted = append(accepted, b)
		}
	}
	m.betMu.Unlock()

	s := m.view.Load()
	var out []model.Bet
	for i := len(accepted) - 1; i >= 0; i-- {
		if _, merged := s.bets[accepted[i].ID]; merged {
			continue
		}
		out = append(out, s.withMatch(accepted[i]))
	}
	for i := len(s.betOrder) - 1; i >= 0; i-- {
		b := *s.bets[s.betOrder[i]]
		if b.UserID != userID {
			continue
		}
		out = append(out, s.withMatch(b))
	}
	return out
}

func (s *state) withMatch(b model.Bet) model.Bet {
	if mt, ok := s.matches[b.MatchID]; ok {
		c := mt.Clone()
		b.Match = &c
	}
	return b
}

func (m *Mirror) User(id int64) (model.User, bool) {
	u, ok := m.view.Load().users[id]
	if !ok {
		return model.User{}, false
	}
	return *u, true
}

// Leaderboard ordena usuários por pontos desc, depois username
func (m *Mirror) Leaderboard() []model.User {
	s := m.view.Load()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// TeamPlayers busca o elenco pelo nome do time (sem diferenciar maiúsculas)
func (m *Mirror) TeamPlayers(teamName string) ([]model.Player, bool) {
	s := m.view.Load()
	id, ok := s.teamByName[strings.ToLower(strings.TrimSpace(teamName))]
	if !ok {
		return nil, false
	}
	out := make([]model.Player, 0, len(s.squads[id]))
	for _, pid := range s.squads[id] {
		out = append(out, *s.players[pid])
	}
	return out, true
}

// TopScorers devolve os n maiores artilheiros com ao menos um gol
func (m *Mirror) TopScorers(n int) []model.Player {
	s := m.view.Load()
	var out []model.Player
	for _, p := range s.players {
		if p.Goals > 0 {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Goals != out[j].Goals {
			return out[i].Goals > out[j].Goals
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (m *Mirror) Checkpoint() model.Checkpoint {
	return m.view.Load().checkpoint
}

func (m *Mirror) Teams() []model.Team {
	return m.view.Load().teamList()
}
