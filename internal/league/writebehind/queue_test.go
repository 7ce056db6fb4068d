package writebehind

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/betbuddy-league/internal/league/model"
)

type fakeApplier struct {
	mu      sync.Mutex
	applied []model.Mutation
	failFor map[string]int // chave -> quantas falhas ainda devolver
	before  func(m model.Mutation)
}

func newFakeApplier() *fakeApplier { return &fakeApplier{failFor: map[string]int{}} }

func (f *fakeApplier) Apply(_ context.Context, m model.Mutation) error {
	if f.before != nil {
		f.before(m)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[m.Key()] > 0 {
		f.failFor[m.Key()]--
		return errors.New("connection reset")
	}
	f.applied = append(f.applied, m)
	return nil
}

func (f *fakeApplier) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.applied {
		out = append(out, m.Key())
	}
	return out
}

func testConfig() Config {
	return Config{Interval: 5 * time.Millisecond, MaxAttempts: 2, Backoff: time.Millisecond}
}

func TestEnqueueCoalescesByKeyMovingToLastWrite(t *testing.T) {
	app := newFakeApplier()
	q := New(app, testConfig(), nil)

	q.Enqueue(model.UserPoints{UserID: 1, Points: 1}, model.PlayerGoals{PlayerID: 7, Goals: 1})
	q.Enqueue(model.UserPoints{UserID: 1, Points: 4})
	assert.Equal(t, 2, q.Len())

	applied, failed := q.Flush(context.Background())
	assert.Equal(t, 2, applied)
	assert.Zero(t, failed)
	assert.Equal(t, []string{"player:7", "user:1:points"}, app.keys())
	assert.Equal(t, model.UserPoints{UserID: 1, Points: 4}, app.applied[1])
	assert.Zero(t, q.Len())
}

func TestTransientFailureRetriedWithinCycle(t *testing.T) {
	app := newFakeApplier()
	app.failFor["checkpoint"] = 1
	q := New(app, testConfig(), nil)

	q.Enqueue(model.CheckpointSave{Checkpoint: model.Checkpoint{Jornada: 3}})
	applied, failed := q.Flush(context.Background())
	assert.Equal(t, 1, applied)
	assert.Zero(t, failed)
}

func TestPersistentFailureHoldsRestOfBatch(t *testing.T) {
	app := newFakeApplier()
	app.failFor["match:1"] = 2
	q := New(app, testConfig(), nil)

	var errs []string
	q.OnError = func(key string) { errs = append(errs, key) }

	q.Enqueue(model.MatchUpsert{Match: model.Match{ID: 1, Minute: 10}}, model.StandingsReplace{})
	applied, failed := q.Flush(context.Background())
	assert.Zero(t, applied)
	assert.Equal(t, 2, failed)
	assert.Equal(t, []string{"match:1"}, errs)
	assert.Empty(t, app.keys(), "nothing after the failed key is written")
	assert.Equal(t, 2, q.Len())

	applied, failed = q.Flush(context.Background())
	assert.Equal(t, 2, applied)
	assert.Zero(t, failed)
	assert.Equal(t, []string{"match:1", "standings"}, app.keys())
}

func TestSettledBetNeverLandsBeforeItsFinishedMatch(t *testing.T) {
	app := newFakeApplier()
	app.failFor["match:1"] = 100
	q := New(app, testConfig(), nil)

	pts := 3
	q.Enqueue(model.BetUpsert{Bet: model.Bet{ID: 7, UserID: 1, MatchID: 1}})
	// tick final: partido encerra e a aposta é liquidada na mesma Tx
	q.Enqueue(
		model.MatchUpsert{Match: model.Match{ID: 1, Minute: 90, Status: model.StatusFinished}},
		model.BetUpsert{Bet: model.Bet{ID: 7, UserID: 1, MatchID: 1, PointsEarned: &pts}},
		model.UserPoints{UserID: 1, Points: 3},
	)

	applied, failed := q.Flush(context.Background())
	assert.Zero(t, applied)
	assert.Equal(t, 3, failed)
	assert.Empty(t, app.keys())

	app.mu.Lock()
	app.failFor["match:1"] = 0
	app.mu.Unlock()

	applied, failed = q.Flush(context.Background())
	assert.Equal(t, 3, applied)
	assert.Zero(t, failed)
	assert.Equal(t, []string{"match:1", "bet:7", "user:1:points"}, app.keys())
	bet := app.applied[1].(model.BetUpsert).Bet
	require.NotNil(t, bet.PointsEarned)
	assert.Equal(t, 3, *bet.PointsEarned)
}

func TestFailedMutationKeptAheadOfNewerValue(t *testing.T) {
	app := newFakeApplier()
	app.failFor["match:1"] = 2
	q := New(app, testConfig(), nil)

	// a mutação mais nova chega enquanto o flush está falhando
	var once sync.Once
	app.before = func(model.Mutation) {
		once.Do(func() {
			q.Enqueue(model.MatchUpsert{Match: model.Match{ID: 1, Minute: 11}}, model.StandingsReplace{})
		})
	}
	q.Enqueue(model.MatchUpsert{Match: model.Match{ID: 1, Minute: 10}})

	_, failed := q.Flush(context.Background())
	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, q.Len())

	applied, _ := q.Flush(context.Background())
	assert.Equal(t, 3, applied)
	assert.Equal(t, []string{"match:1", "match:1", "standings"}, app.keys())
	assert.Equal(t, 10, app.applied[0].(model.MatchUpsert).Match.Minute)
	assert.Equal(t, 11, app.applied[1].(model.MatchUpsert).Match.Minute)
	assert.Zero(t, q.Len())
}

func TestRequeueKeepsLastVersionOfRepeatedKey(t *testing.T) {
	app := newFakeApplier()
	app.failFor["checkpoint"] = 4
	q := New(app, testConfig(), nil)

	q.Enqueue(model.CheckpointSave{Checkpoint: model.Checkpoint{Tick: 1}}, model.PlayerGoals{PlayerID: 7, Goals: 1})
	_, failed := q.Flush(context.Background())
	assert.Equal(t, 2, failed)

	// a chave volta a ser escrita durante a falha: retidas + pendentes
	q.Enqueue(model.PlayerGoals{PlayerID: 7, Goals: 2})
	_, failed = q.Flush(context.Background())
	assert.Equal(t, 2, failed, "player:7 held once, with its newest value")

	applied, _ := q.Flush(context.Background())
	assert.Equal(t, 2, applied)
	assert.Equal(t, []string{"checkpoint", "player:7"}, app.keys())
	assert.Equal(t, 2, app.applied[1].(model.PlayerGoals).Goals)
}

func TestRunFlushesAndCloseDrains(t *testing.T) {
	app := newFakeApplier()
	q := New(app, testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()

	q.Enqueue(model.BetUpsert{Bet: model.Bet{ID: 1}})
	require.Eventually(t, func() bool { return len(app.keys()) == 1 }, time.Second, 2*time.Millisecond)

	cancel()
	<-done
	q.Enqueue(model.BetUpsert{Bet: model.Bet{ID: 2}})
	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, []string{"bet:1", "bet:2"}, app.keys())

	q.Enqueue(model.BetUpsert{Bet: model.Bet{ID: 3}})
	assert.Zero(t, q.Len())
}

func TestCloseReportsUnflushed(t *testing.T) {
	app := newFakeApplier()
	app.failFor["standings"] = 10
	q := New(app, testConfig(), nil)
	q.Enqueue(model.StandingsReplace{})
	assert.ErrorIs(t, q.Close(context.Background()), ErrUnflushed)
}
