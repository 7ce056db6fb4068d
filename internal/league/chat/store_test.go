package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/radieske/betbuddy-league/internal/dependencies/mocks"
	"github.com/radieske/betbuddy-league/internal/league/model"
)

type fakePublisher struct {
	mu   sync.Mutex
	sent []any
	err  error
}

func (f *fakePublisher) PublishLive(_ context.Context, _ int64, _ string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, payload)
	return f.err
}

type ChatSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *Store
	pub   *fakePublisher
	clock *mocks.MockClock
	ctx   context.Context
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, new(ChatSuite))
}

func (s *ChatSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.pub = &fakePublisher{}
	s.clock = mocks.NewMockClock(time.Date(2025, 8, 15, 19, 0, 0, 0, time.UTC))
	s.store = NewStore(client, Config{History: 3, TTL: time.Hour}, s.clock, s.pub)
	s.ctx = context.Background()
}

func (s *ChatSuite) TestPostAndList() {
	msg, err := s.store.Post(s.ctx, 7, " ana ", "vamos Madrid", false)
	s.Require().NoError(err)
	s.NotEmpty(msg.ID)
	s.Equal("ana", msg.Username)

	list, err := s.store.List(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(msg, list[0])
	s.Len(s.pub.sent, 1)

	s.True(s.mini.Exists("chat:match:7"))
	s.Equal(time.Hour, s.mini.TTL("chat:match:7"))
}

func (s *ChatSuite) TestHistoryIsTrimmed() {
	for _, txt := range []string{"1", "2", "3", "4", "5"} {
		_, err := s.store.Post(s.ctx, 1, "bruno", txt, false)
		s.Require().NoError(err)
	}
	list, err := s.store.List(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("3", list[0].Text)
	s.Equal("5", list[2].Text)
}

func (s *ChatSuite) TestInvalidMessages() {
	cases := []struct {
		match int64
		user  string
		text  string
	}{
		{0, "ana", "hola"},
		{1, "", "hola"},
		{1, "ana", "   "},
		{1, "ana", strings.Repeat("x", MaxTextLength+1)},
	}
	for _, c := range cases {
		_, err := s.store.Post(s.ctx, c.match, c.user, c.text, false)
		s.ErrorIs(err, ErrInvalidMessage)
		s.ErrorIs(err, model.ErrInvalidInput)
	}
	s.Empty(s.pub.sent)
}

func (s *ChatSuite) TestPublishFailureKeepsMessage() {
	s.pub.err = errors.New("redis down")
	_, err := s.store.Post(s.ctx, 2, SystemUsername, "¡Gol!", true)
	s.Error(err)

	list, err := s.store.List(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.True(list[0].System)
}

func (s *ChatSuite) TestEmptyHistory() {
	list, err := s.store.List(s.ctx, 99)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)
}
