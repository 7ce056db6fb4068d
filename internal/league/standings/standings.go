package standings

import (
	"sort"
	"strings"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// Compute recalcula a tabela inteira a partir dos partidos finalizados.
// Partidos que não estão finished são ignorados. Times sem jogos aparecem zerados.
func Compute(teams []model.Team, matches []model.Match) []model.Standing {
	table := empty(teams)
	for _, m := range matches {
		table = Apply(table, m)
	}
	Sort(table)
	return table
}

// Apply incorpora um único partido finalizado a uma tabela, devolvendo uma nova
// tabela ordenada. Aplicar todos os partidos um a um é equivalente a Compute.
func Apply(table []model.Standing, m model.Match) []model.Standing {
	out := make([]model.Standing, len(table))
	copy(out, table)
	if m.Status != model.StatusFinished {
		return out
	}
	home, away := -1, -1
	for i := range out {
		switch out[i].TeamID {
		case m.HomeTeamID:
			home = i
		case m.AwayTeamID:
			away = i
		}
	}
	if home < 0 || away < 0 {
		return out
	}
	record(&out[home], m.HomeScore, m.AwayScore)
	record(&out[away], m.AwayScore, m.HomeScore)
	Sort(out)
	return out
}

func record(s *model.Standing, scored, conceded int) {
	s.Played++
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		s.Won++
		s.Points += pointsWin
	case scored == conceded:
		s.Drawn++
		s.Points += pointsDraw
	default:
		s.Lost++
	}
}

func empty(teams []model.Team) []model.Standing {
	out := make([]model.Standing, 0, len(teams))
	for _, t := range teams {
		out = append(out, model.Standing{TeamID: t.ID, Name: t.Name, Strength: t.Strength})
	}
	return out
}

// Sort ordena por pontos, saldo de gols, gols pró (todos desc) e nome asc.
// O id do time desempata nomes iguais, então a ordem é total.
func Sort(table []model.Standing) {
	sort.SliceStable(table, func(i, j int) bool { return Less(table[i], table[j]) })
}

func Less(a, b model.Standing) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDiff() != b.GoalDiff() {
		return a.GoalDiff() > b.GoalDiff()
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c < 0
	}
	return a.TeamID < b.TeamID
}
