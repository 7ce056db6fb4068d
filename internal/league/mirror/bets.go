package mirror

import (
	"github.com/radieske/betbuddy-league/internal/league/model"
)

// PlaceBet valida e registra um palpite. Rejeições não mutam nada.
// cutoffMinute limita apostas em partidos ao vivo (minuto > cutoff é rejeitado);
// valor negativo aceita apenas partidos pendentes.
//
// A validação usa a última view publicada e a aposta aceita vai para o
// inbox, então PlaceBet nunca espera um Update em curso. A persistência é
// agendada aqui mesmo; o próximo Update move a aposta para o estado.
func (m *Mirror) PlaceBet(userID, matchID int64, predHome, predAway, cutoffMinute int) (model.Bet, error) {
	if predHome < 0 || predAway < 0 {
		return model.Bet{}, model.ErrInvalidPrediction
	}

	m.betMu.Lock()
	defer m.betMu.Unlock()

	v := m.view.Load()
	if _, ok := v.users[userID]; !ok {
		return model.Bet{}, model.ErrUserNotFound
	}
	mt, ok := v.matches[matchID]
	if !ok {
		return model.Bet{}, model.ErrMatchNotFound
	}
	switch mt.Status {
	case model.StatusFinished:
		return model.Bet{}, model.ErrMatchFinished
	case model.StatusLive:
		if cutoffMinute < 0 || mt.Minute > cutoffMinute {
			return model.Bet{}, model.ErrBettingClosed
		}
	}
	k := betKey{userID, matchID}
	if _, dup := v.betIndex[k]; dup {
		return model.Bet{}, model.ErrDuplicateBet
	}
	if _, dup := m.inboxIndex[k]; dup {
		return model.Bet{}, model.ErrDuplicateBet
	}

	b := model.Bet{
		ID:        m.nextBetID,
		UserID:    userID,
		MatchID:   matchID,
		HomeScore: predHome,
		AwayScore: predAway,
		CreatedAt: m.now(),
	}
	m.nextBetID++
	m.inbox = append(m.inbox, b)
	m.inboxIndex[k] = b.ID
	if m.sink != nil {
		m.sink.Enqueue(model.BetUpsert{Bet: b})
	}
	return b, nil
}

// PutUser adiciona ao espelho um usuário já persistido pela camada de auth
func (m *Mirror) PutUser(u model.User) {
	_ = m.Update(func(tx *Tx) error {
		tx.PutUser(u)
		return nil
	})
}

// UpdateProfile altera username/avatar de um usuário existente
func (m *Mirror) UpdateProfile(userID int64, username, avatar string) (model.User, error) {
	var out model.User
	err := m.Update(func(tx *Tx) error {
		u, ok := tx.UpdateProfile(userID, username, avatar)
		if !ok {
			return model.ErrNotFound
		}
		out = u
		return nil
	})
	return out, err
}
