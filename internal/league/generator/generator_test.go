package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/betbuddy-league/internal/dependencies/mocks"
	"github.com/radieske/betbuddy-league/internal/dependencies/random"
	"github.com/radieske/betbuddy-league/internal/league/model"
)

var (
	strong = Side{
		Team:  model.Team{ID: 1, Name: "Strong", Strength: 80},
		Squad: []model.Player{{ID: 11, TeamID: 1, Name: "Nueve"}, {ID: 12, TeamID: 1, Name: "Diez"}},
	}
	weak = Side{
		Team:  model.Team{ID: 2, Name: "Weak", Strength: 20},
		Squad: []model.Player{{ID: 21, TeamID: 2, Name: "Siete"}},
	}
)

func liveMatch() *model.Match {
	return &model.Match{ID: 1, HomeTeamID: 1, AwayTeamID: 2, Home: "Strong", Away: "Weak", Status: model.StatusLive}
}

func playOut(g *Generator, length int) *model.Match {
	m := liveMatch()
	for m.Minute < length {
		m.Minute++
		g.Minute(m, strong, weak)
	}
	return m
}

func TestGoalProbabilitiesFavourStrongerSide(t *testing.T) {
	g := New(DefaultConfig(), random.NewSeeded(1))
	pHome, pAway := g.GoalProbabilities(strong.Team, weak.Team)
	assert.Greater(t, pHome, pAway)
	assert.Greater(t, pAway, 0.0, "weaker side can still score")
	assert.Less(t, pHome, 0.05)

	pEqH, pEqA := g.GoalProbabilities(model.Team{}, model.Team{})
	assert.InDelta(t, pEqA*DefaultConfig().HomeAdvantage, pEqH, 1e-9)
}

func TestGoalUpdatesScoreEventAndSnapshot(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.Floats = []float64{0.0, 0.0}
	rnd.Ints = []int{1, 0}
	g := New(DefaultConfig(), rnd)

	m := liveMatch()
	m.Minute = 33
	events := g.Minute(m, strong, weak)

	require.Len(t, events, 2)
	assert.Equal(t, 1, m.HomeScore)
	assert.Equal(t, 1, m.AwayScore)
	assert.Equal(t, model.MatchEvent{
		Type: model.EventGoal, TeamID: 1, Team: "Strong", PlayerID: 12, Player: "Diez",
		Minute: 33, HomeScore: 1, AwayScore: 0, Score: "1-0",
	}, events[0])
	assert.Equal(t, "1-1", events[1].Score)
	assert.Equal(t, events, m.Events)
}

func TestCardsDoNotChangeScore(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.Floats = []float64{0.99, 0.99, 0.0005, 0.01}
	g := New(DefaultConfig(), rnd)

	m := liveMatch()
	m.Minute = 5
	events := g.Minute(m, strong, weak)

	require.Len(t, events, 2)
	assert.Equal(t, model.EventRedCard, events[0].Type)
	assert.Equal(t, model.EventYellowCard, events[1].Type)
	assert.Zero(t, m.HomeScore+m.AwayScore)
}

func TestNoEventsUnlessLive(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.Fallback = 0
	g := New(DefaultConfig(), rnd)
	m := liveMatch()
	m.Status = model.StatusFinished
	assert.Empty(t, g.Minute(m, strong, weak))
	assert.Zero(t, m.HomeScore)
}

func TestFullMatchInvariants(t *testing.T) {
	g := New(DefaultConfig(), random.NewSeeded(7))
	for i := 0; i < 50; i++ {
		m := playOut(g, 90)
		home, away := m.GoalCounts()
		assert.Equal(t, m.HomeScore, home)
		assert.Equal(t, m.AwayScore, away)
		last := 0
		for _, ev := range m.Events {
			assert.GreaterOrEqual(t, ev.Minute, last)
			assert.LessOrEqual(t, ev.Minute, 90)
			last = ev.Minute
		}
	}
}

func TestStrongerHomeSideScoresMoreOnAverage(t *testing.T) {
	g := New(DefaultConfig(), random.NewSeeded(42))
	const runs = 2000
	homeGoals, awayGoals := 0, 0
	for i := 0; i < runs; i++ {
		m := playOut(g, 90)
		homeGoals += m.HomeScore
		awayGoals += m.AwayScore
	}
	homeAvg := float64(homeGoals) / runs
	awayAvg := float64(awayGoals) / runs

	assert.Greater(t, homeAvg, awayAvg)
	assert.Less(t, homeAvg+awayAvg, 6.0, "scores stay in low single digits")
	assert.Greater(t, awayAvg, 0.0)
}
