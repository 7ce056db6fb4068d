package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

type memLedger struct {
	bets   map[int64]*model.Bet
	points map[int64]int
}

func newLedger(bets ...model.Bet) *memLedger {
	l := &memLedger{bets: map[int64]*model.Bet{}, points: map[int64]int{}}
	for i := range bets {
		b := bets[i]
		l.bets[b.ID] = &b
	}
	return l
}

func (l *memLedger) BetsForMatch(matchID int64) []model.Bet {
	var out []model.Bet
	for id := int64(1); id <= int64(len(l.bets)); id++ {
		if b, ok := l.bets[id]; ok && b.MatchID == matchID {
			out = append(out, *b)
		}
	}
	return out
}

func (l *memLedger) SettleBet(betID int64, points int) bool {
	b := l.bets[betID]
	if b == nil || b.Settled() {
		return false
	}
	b.PointsEarned = &points
	l.points[b.UserID] += points
	return true
}

func TestPolicyPoints(t *testing.T) {
	p := DefaultPolicy
	cases := []struct {
		name                 string
		ph, pa, h, a, expect int
	}{
		{"exact home win", 2, 1, 2, 1, 3},
		{"draw predicted, home win actual", 1, 1, 2, 1, 0},
		{"right winner wrong score", 3, 0, 2, 1, 1},
		{"exact draw", 0, 0, 0, 0, 3},
		{"draw category", 2, 2, 1, 1, 1},
		{"away win category", 0, 2, 1, 4, 1},
		{"wrong category", 0, 2, 1, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, p.Points(tc.ph, tc.pa, tc.h, tc.a))
		})
	}
}

func TestSettleAwardsAndIsIdempotent(t *testing.T) {
	match := model.Match{ID: 7, HomeScore: 2, AwayScore: 1, Status: model.StatusFinished}
	l := newLedger(
		model.Bet{ID: 1, UserID: 10, MatchID: 7, HomeScore: 2, AwayScore: 1},
		model.Bet{ID: 2, UserID: 11, MatchID: 7, HomeScore: 1, AwayScore: 1},
		model.Bet{ID: 3, UserID: 12, MatchID: 7, HomeScore: 1, AwayScore: 0},
		model.Bet{ID: 4, UserID: 12, MatchID: 8, HomeScore: 1, AwayScore: 0},
	)

	first := Settle(l, match, DefaultPolicy)
	require.Len(t, first.Settled, 3)
	assert.Equal(t, 4, first.Awarded)
	assert.Equal(t, map[int64]int{10: 3, 11: 0, 12: 1}, l.points)

	second := Settle(l, match, DefaultPolicy)
	assert.Empty(t, second.Settled)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, map[int64]int{10: 3, 11: 0, 12: 1}, l.points)
	assert.Equal(t, 3, *l.bets[1].PointsEarned)
	assert.False(t, l.bets[4].Settled(), "bet on another match untouched")
}

func TestSettleIgnoresUnfinishedMatch(t *testing.T) {
	l := newLedger(model.Bet{ID: 1, UserID: 1, MatchID: 1})
	res := Settle(l, model.Match{ID: 1, Status: model.StatusLive}, DefaultPolicy)
	assert.Empty(t, res.Settled)
	assert.False(t, l.bets[1].Settled())
}
