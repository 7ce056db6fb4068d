package mirror

import (
	"github.com/radieske/betbuddy-league/internal/league/model"
)

// Tx é a visão mutável do estado dentro de Mirror.Update. Só é válida durante
// a chamada de fn. Ponteiros devolvidos apontam para o estado vivo.
type Tx struct {
	s       *state
	muts    []model.Mutation
	touched map[string]int
}

// record adiciona uma mutação; uma segunda mutação com a mesma chave na mesma
// Tx substitui a anterior mantendo a posição original.
func (tx *Tx) record(mut model.Mutation) {
	if i, ok := tx.touched[mut.Key()]; ok {
		tx.muts[i] = mut
		return
	}
	tx.touched[mut.Key()] = len(tx.muts)
	tx.muts = append(tx.muts, mut)
}

// Mutations devolve o que será enviado ao sink ao final do Update
func (tx *Tx) Mutations() []model.Mutation { return tx.muts }

func (tx *Tx) Checkpoint() model.Checkpoint { return tx.s.checkpoint }

// SetCheckpoint atualiza o checkpoint; persist controla se vira escrita durável
func (tx *Tx) SetCheckpoint(cp model.Checkpoint, persist bool) {
	tx.s.checkpoint = cp
	if persist {
		tx.record(model.CheckpointSave{Checkpoint: cp})
	}
}

// LastJornada é a maior jornada do calendário
func (tx *Tx) LastJornada() int { return tx.s.lastJornada }

func (tx *Tx) Match(id int64) *model.Match { return tx.s.matches[id] }

// MatchesWithStatus devolve os partidos no status pedido, na ordem do calendário
func (tx *Tx) MatchesWithStatus(status model.MatchStatus) []*model.Match {
	var out []*model.Match
	for _, id := range tx.s.matchOrder {
		if mt := tx.s.matches[id]; mt.Status == status {
			out = append(out, mt)
		}
	}
	return out
}

func (tx *Tx) JornadaMatches(jornada int) []*model.Match {
	var out []*model.Match
	for _, id := range tx.s.matchOrder {
		if mt := tx.s.matches[id]; mt.Jornada == jornada {
			out = append(out, mt)
		}
	}
	return out
}

// TouchMatch agenda a persistência do estado atual do partido
func (tx *Tx) TouchMatch(mt *model.Match) {
	tx.record(model.MatchUpsert{Match: mt.Clone()})
}

func (tx *Tx) Team(id int64) (model.Team, bool) {
	t, ok := tx.s.teams[id]
	if !ok {
		return model.Team{}, false
	}
	return *t, true
}

func (tx *Tx) Teams() []model.Team { return tx.s.teamList() }

// Squad devolve o elenco do time em ordem de id
func (tx *Tx) Squad(teamID int64) []model.Player {
	ids := tx.s.squads[teamID]
	out := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, *tx.s.players[id])
	}
	return out
}

// CreditGoal soma um gol ao artilheiro
func (tx *Tx) CreditGoal(playerID int64) {
	p, ok := tx.s.players[playerID]
	if !ok {
		return
	}
	p.Goals++
	tx.record(model.PlayerGoals{PlayerID: p.ID, Goals: p.Goals})
}

func (tx *Tx) FinishedMatches() []model.Match { return tx.s.finishedMatches() }

func (tx *Tx) Standings() []model.Standing {
	out := make([]model.Standing, len(tx.s.standings))
	copy(out, tx.s.standings)
	return out
}

// SetStandings troca a tabela inteira de uma vez
func (tx *Tx) SetStandings(table []model.Standing) {
	out := make([]model.Standing, len(table))
	copy(out, table)
	tx.s.standings = out
	tx.record(model.StandingsReplace{Standings: out})
}

// BetsForMatch devolve cópias das apostas do partido em ordem de id
func (tx *Tx) BetsForMatch(matchID int64) []model.Bet {
	var out []model.Bet
	for _, id := range tx.s.betOrder {
		if b := tx.s.bets[id]; b.MatchID == matchID {
			out = append(out, *b)
		}
	}
	return out
}

// SettleBet fixa os pontos da aposta e credita o usuário. Apostas já
// liquidadas não mudam (devolve false).
func (tx *Tx) SettleBet(betID int64, points int) bool {
	b, ok := tx.s.bets[betID]
	if !ok || b.Settled() {
		return false
	}
	pts := points
	b.PointsEarned = &pts
	tx.record(model.BetUpsert{Bet: *b})

	if u, ok := tx.s.users[b.UserID]; ok {
		u.Points += points
		tx.record(model.UserPoints{UserID: u.ID, Points: u.Points})
	}
	return true
}

// FinishedWithUnsettledBets devolve, em ordem de calendário, os partidos
// finalizados que ainda têm apostas sem pontos
func (tx *Tx) FinishedWithUnsettledBets() []*model.Match {
	due := map[int64]bool{}
	for _, id := range tx.s.betOrder {
		b := tx.s.bets[id]
		if b.Settled() {
			continue
		}
		if mt, ok := tx.s.matches[b.MatchID]; ok && mt.Status == model.StatusFinished {
			due[mt.ID] = true
		}
	}
	if len(due) == 0 {
		return nil
	}
	var out []*model.Match
	for _, id := range tx.s.matchOrder {
		if due[id] {
			out = append(out, tx.s.matches[id])
		}
	}
	return out
}

func (tx *Tx) User(id int64) *model.User { return tx.s.users[id] }

// PutUser registra ou substitui um usuário criado fora do motor. Pontos
// existentes no espelho são preservados.
func (tx *Tx) PutUser(u model.User) {
	if cur, ok := tx.s.users[u.ID]; ok {
		u.Points = cur.Points
	} else {
		u.Points = 0
	}
	tx.s.users[u.ID] = &u
}

// UpdateProfile altera username/avatar; campos vazios ficam como estão
func (tx *Tx) UpdateProfile(userID int64, username, avatar string) (model.User, bool) {
	u, ok := tx.s.users[userID]
	if !ok {
		return model.User{}, false
	}
	if username != "" {
		u.Username = username
	}
	if avatar != "" {
		u.Avatar = avatar
	}
	tx.record(model.UserProfile{UserID: u.ID, Username: u.Username, Avatar: u.Avatar})
	return *u, true
}
