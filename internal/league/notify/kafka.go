package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/radieske/betbuddy-league/internal/league/model"
	"github.com/radieske/betbuddy-league/internal/shared/kafka"
	"github.com/radieske/betbuddy-league/pkg/contracts/events"
)

// KafkaSink publica eventos de partido e liquidações. Minutos não vão para
// o Kafka.
type KafkaSink struct {
	MatchEvents kafka.MessageWriter
	BetSettled  kafka.MessageWriter
}

func NewKafkaSink(matchEvents, betSettled kafka.MessageWriter) *KafkaSink {
	return &KafkaSink{MatchEvents: matchEvents, BetSettled: betSettled}
}

func (k *KafkaSink) Name() string { return "kafka" }

func (k *KafkaSink) Deliver(ctx context.Context, n model.Notification) error {
	switch n.Kind {
	case model.NotifyKickoff, model.NotifyGoal, model.NotifyCard, model.NotifyFullTime:
		b, err := json.Marshal(matchEvent(n))
		if err != nil {
			return err
		}
		return kafka.WriteJSON(ctx, k.MatchEvents, strconv.FormatInt(n.MatchID, 10), b)
	case model.NotifyBetSettled:
		if n.Bet == nil || n.Bet.PointsEarned == nil {
			return nil
		}
		e := events.BetSettled{
			EventID:      n.ID,
			BetID:        n.Bet.ID,
			UserID:       n.Bet.UserID,
			MatchID:      n.MatchID,
			PredHome:     n.Bet.HomeScore,
			PredAway:     n.Bet.AwayScore,
			PointsEarned: *n.Bet.PointsEarned,
			Ts:           n.CreatedAt,
		}
		if n.Match != nil {
			e.FinalHome, e.FinalAway = n.Match.HomeScore, n.Match.AwayScore
		}
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return kafka.WriteJSON(ctx, k.BetSettled, strconv.FormatInt(n.Bet.UserID, 10), b)
	}
	return nil
}

func matchEvent(n model.Notification) events.MatchEvent {
	e := events.MatchEvent{
		EventID: n.ID,
		Kind:    string(n.Kind),
		MatchID: n.MatchID,
		Text:    n.Text,
		Ts:      n.CreatedAt,
	}
	if m := n.Match; m != nil {
		e.Jornada = m.Jornada
		e.HomeTeam, e.AwayTeam = m.Home, m.Away
		e.Minute = m.Minute
		e.HomeScore, e.AwayScore = m.HomeScore, m.AwayScore
		e.Status = string(m.Status)
	}
	if ev := n.Event; ev != nil {
		e.Team = ev.Team
		e.Player = ev.Player
		e.Type = string(ev.Type)
		e.Minute = ev.Minute
		e.HomeScore, e.AwayScore = ev.HomeScore, ev.AwayScore
	}
	return e
}
