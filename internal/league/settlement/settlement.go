package settlement

import (
	"github.com/radieske/betbuddy-league/internal/league/model"
)

// Policy define os pontos da quiniela. Fixa durante a vida do processo.
type Policy struct {
	Exact   int // placar exato
	Outcome int // acertou vencedor/empate, errou o placar
}

// DefaultPolicy: 3 pontos pelo placar exato, 1 pelo resultado, 0 caso contrário.
var DefaultPolicy = Policy{Exact: 3, Outcome: 1}

// Points calcula o prêmio de um palpite contra o placar final
func (p Policy) Points(predHome, predAway, home, away int) int {
	if predHome == home && predAway == away {
		return p.Exact
	}
	if model.ResultOf(predHome, predAway) == model.ResultOf(home, away) {
		return p.Outcome
	}
	return 0
}

// Ledger é a visão mutável das apostas que a liquidação precisa.
// SettleBet deve ser no-op (false) para apostas já liquidadas e creditar os
// pontos no usuário exatamente uma vez.
type Ledger interface {
	BetsForMatch(matchID int64) []model.Bet
	SettleBet(betID int64, points int) bool
}

type Result struct {
	Settled []model.Bet // apostas liquidadas nesta chamada, já com PointsEarned
	Skipped int         // apostas que já estavam liquidadas
	Awarded int         // soma de pontos concedidos nesta chamada
}

// Settle liquida todas as apostas pendentes de um partido finalizado.
// Chamar de novo sobre o mesmo partido não altera nada.
func Settle(l Ledger, m model.Match, p Policy) Result {
	var res Result
	if m.Status != model.StatusFinished {
		return res
	}
	for _, b := range l.BetsForMatch(m.ID) {
		if b.Settled() {
			res.Skipped++
			continue
		}
		pts := p.Points(b.HomeScore, b.AwayScore, m.HomeScore, m.AwayScore)
		if !l.SettleBet(b.ID, pts) {
			res.Skipped++
			continue
		}
		b.PointsEarned = &pts
		res.Settled = append(res.Settled, b)
		res.Awarded += pts
	}
	return res
}
