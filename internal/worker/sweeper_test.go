package worker

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stars-bot/internal/guard"
	"stars-bot/internal/lottery"
	"stars-bot/internal/models"
	"stars-bot/internal/notify"
	"stars-bot/internal/session"
	"stars-bot/internal/storage"
)

type recordingSender struct {
	mu    sync.Mutex
	chats []int64
}

func (r *recordingSender) Send(_ context.Context, chatID int64, _ notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats = append(r.chats, chatID)
	return nil
}

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	for _, id := range []int64{1, 2} {
		_, err := store.CreateUserIfAbsent(ctx, &models.User{ID: id, JoinedAt: time.Now()})
		require.NoError(t, err)
	}
	engine := lottery.NewEngine(store, guard.NewMemory(), lottery.Config{
		WinValue:       64,
		MaxValue:       64,
		AttemptTimeout: time.Nanosecond,
	}, testLogger())
	sessions := session.NewMemory(time.Hour)
	sender := &recordingSender{}

	g, err := engine.CreateGiveaway(ctx, 10, "https://t.me/nft/gift", 1)
	require.NoError(t, err)

	stale, err := engine.BeginAttempt(ctx, g.ID, 1)
	require.NoError(t, err)
	require.NoError(t, sessions.Set(ctx, 1, session.Session{State: session.StateWaitingDraw, GiveawayID: g.ID, AttemptID: stale.ID}))

	// User 2 abandoned an attempt but already waits on a newer one.
	old, err := engine.BeginAttempt(ctx, g.ID, 2)
	require.NoError(t, err)
	require.NoError(t, sessions.Set(ctx, 2, session.Session{State: session.StateWaitingDraw, GiveawayID: g.ID, AttemptID: old.ID + 100}))

	time.Sleep(time.Millisecond)
	sweeper := NewSweeper(engine, sessions, notify.NewNotifier(sender, testLogger()), "@every 1m", testLogger())
	assert.Equal(t, 2, sweeper.Sweep(ctx))

	s1, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.StateIdle, s1.State)

	s2, err := sessions.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingDraw, s2.State)

	assert.ElementsMatch(t, []int64{1, 2}, sender.chats)

	a, err := store.GetAttempt(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptLose, a.Result)
	assert.Nil(t, a.DrawValue)

	assert.Zero(t, sweeper.Sweep(ctx))
}

func TestRun_InvalidSchedule(t *testing.T) {
	engine := lottery.NewEngine(storage.NewMemoryStore(), guard.NewMemory(), lottery.Config{}, testLogger())
	sweeper := NewSweeper(engine, session.NewMemory(time.Minute), notify.NewNotifier(&recordingSender{}, testLogger()), "not a schedule", testLogger())
	assert.Error(t, sweeper.Run(context.Background()))
}

func TestRun_StopsWithContext(t *testing.T) {
	engine := lottery.NewEngine(storage.NewMemoryStore(), guard.NewMemory(), lottery.Config{AttemptTimeout: time.Minute}, testLogger())
	sweeper := NewSweeper(engine, session.NewMemory(time.Minute), notify.NewNotifier(&recordingSender{}, testLogger()), "@every 1h", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
