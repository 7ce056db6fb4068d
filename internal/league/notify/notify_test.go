package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/betbuddy-league/internal/league/chat"
	"github.com/radieske/betbuddy-league/internal/league/model"
	"github.com/radieske/betbuddy-league/pkg/contracts/events"
)

type fakeSink struct {
	name  string
	err   error
	block bool

	mu  sync.Mutex
	got []model.Notification
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Deliver(ctx context.Context, n model.Notification) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, n)
	return f.err
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestNotifyDropsWhenBufferFull(t *testing.T) {
	n := New(2, time.Second, nil)
	dropped := 0
	n.OnDropped = func() { dropped++ }

	for i := 0; i < 5; i++ {
		n.Notify(model.Notification{Kind: model.NotifyMinute, MatchID: 1})
	}
	assert.Equal(t, 2, n.Pending())
	assert.Equal(t, 3, dropped)
}

func TestFailingSinkDoesNotStopOthers(t *testing.T) {
	bad := &fakeSink{name: "bad", err: errors.New("boom")}
	slow := &fakeSink{name: "slow", block: true}
	good := &fakeSink{name: "good"}
	n := New(8, 10*time.Millisecond, nil, bad, slow, good)

	var failed []string
	n.OnError = func(s string) { failed = append(failed, s) }

	n.Notify(model.Notification{Kind: model.NotifyGoal, MatchID: 3})
	n.Drain(context.Background())

	assert.Equal(t, 1, good.count())
	assert.NotEmpty(t, good.got[0].ID)
	assert.Equal(t, []string{"bad", "slow"}, failed)
}

func TestRunDeliversUntilCancelled(t *testing.T) {
	sink := &fakeSink{name: "s"}
	n := New(8, time.Second, nil, sink)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(done)
	}()

	n.Notify(model.Notification{Kind: model.NotifyKickoff, MatchID: 1})
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestKafkaSinkRoutesByKind(t *testing.T) {
	matchW, betW := &fakeWriter{}, &fakeWriter{}
	k := NewKafkaSink(matchW, betW)
	ctx := context.Background()
	pts := 3
	final := model.Match{ID: 9, Home: "Sevilla", Away: "Betis", HomeScore: 2, AwayScore: 1, Minute: 90, Status: model.StatusFinished}

	require.NoError(t, k.Deliver(ctx, model.Notification{Kind: model.NotifyMinute, MatchID: 9}))
	require.NoError(t, k.Deliver(ctx, model.Notification{
		ID: "n1", Kind: model.NotifyGoal, MatchID: 9,
		Event: &model.MatchEvent{Type: model.EventGoal, Team: "Sevilla", Player: "Lukébakio", Minute: 77, HomeScore: 2, AwayScore: 1},
	}))
	require.NoError(t, k.Deliver(ctx, model.Notification{
		ID: "n2", Kind: model.NotifyBetSettled, MatchID: 9, Match: &final,
		Bet: &model.Bet{ID: 4, UserID: 2, MatchID: 9, HomeScore: 2, AwayScore: 1, PointsEarned: &pts},
	}))

	require.Len(t, matchW.msgs, 1)
	assert.Equal(t, "9", string(matchW.msgs[0].Key))
	var me events.MatchEvent
	require.NoError(t, json.Unmarshal(matchW.msgs[0].Value, &me))
	assert.Equal(t, "goal", me.Kind)
	assert.Equal(t, "Lukébakio", me.Player)
	assert.Equal(t, 77, me.Minute)

	require.Len(t, betW.msgs, 1)
	assert.Equal(t, "2", string(betW.msgs[0].Key))
	var bs events.BetSettled
	require.NoError(t, json.Unmarshal(betW.msgs[0].Value, &bs))
	assert.Equal(t, 3, bs.PointsEarned)
	assert.Equal(t, 2, bs.FinalHome)
}

func TestRedisBroadcasterAndChatSink(t *testing.T) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	ctx := context.Background()

	sub := client.Subscribe(ctx, "live")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b := NewRedisBroadcaster(client, "live")
	store := chat.NewStore(client, chat.DefaultConfig(), nil, b)
	cs := NewChatSink(store)

	goal := model.Notification{Kind: model.NotifyGoal, MatchID: 5, Text: "⚽ 12' ¡Gol!"}
	require.NoError(t, b.Deliver(ctx, goal))
	require.NoError(t, cs.Deliver(ctx, goal))
	require.NoError(t, cs.Deliver(ctx, model.Notification{Kind: model.NotifyMinute, MatchID: 5, Text: "13'"}))

	kinds := []string{}
	for i := 0; i < 2; i++ {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var upd events.LiveUpdate
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &upd))
		assert.Equal(t, int64(5), upd.MatchID)
		kinds = append(kinds, upd.Kind)
	}
	assert.ElementsMatch(t, []string{"goal", chat.LiveKind}, kinds)

	history, err := store.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].System)
	assert.Equal(t, chat.SystemUsername, history[0].Username)
}
