package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stars-bot/internal/models"
)

func seedUser(t *testing.T, s *MemoryStore, id int64, balance int64) {
	t.Helper()
	created, err := s.CreateUserIfAbsent(context.Background(), &models.User{ID: id})
	require.NoError(t, err)
	require.True(t, created)
	if balance > 0 {
		require.NoError(t, s.AdjustBalance(context.Background(), id, balance, false))
	}
}

func TestMemoryStore_CreateUserIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.CreateUserIfAbsent(ctx, &models.User{ID: 1, Username: "alice"})
	require.NoError(t, err)
	assert.True(t, created)

	again := models.User{ID: 1, Username: "changed"}
	created, err = s.CreateUserIfAbsent(ctx, &again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "alice", again.Username)
}

func TestMemoryStore_AddReferral(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, 1, 0)

	t.Run("credits once per invited user", func(t *testing.T) {
		ok, err := s.AddReferral(ctx, 1, 2, 1)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.AddReferral(ctx, 1, 2, 1)
		require.NoError(t, err)
		assert.False(t, ok)

		u, err := s.GetUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ReferralsCount)
		assert.Equal(t, int64(1), u.Balance)
	})

	t.Run("missing referrer", func(t *testing.T) {
		_, err := s.AddReferral(ctx, 99, 3, 1)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestMemoryStore_AdjustBalance(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, 1, 10)

	err := s.AdjustBalance(ctx, 1, -11, true)
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)

	require.NoError(t, s.AdjustBalance(ctx, 1, -10, true))
	u, _ := s.GetUser(ctx, 1)
	assert.Zero(t, u.Balance)

	assert.ErrorIs(t, s.AdjustBalance(ctx, 42, 5, false), models.ErrNotFound)
}

func TestMemoryStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, 1, 20)
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx Store) error {
		require.NoError(t, tx.AdjustBalance(ctx, 1, -15, true))
		require.NoError(t, tx.CreateWithdrawal(ctx, &models.WithdrawalRequest{UserID: 1, Amount: 15}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	u, err := s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), u.Balance)
	n, err := s.CountPendingWithdrawals(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStore_NestedTransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, 1, 20)

	err := s.Transaction(ctx, func(tx Store) error {
		require.NoError(t, tx.AdjustBalance(ctx, 1, -5, true))
		inner := tx.Transaction(ctx, func(tx Store) error {
			require.NoError(t, tx.AdjustBalance(ctx, 1, -5, true))
			return errors.New("inner")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	u, _ := s.GetUser(ctx, 1)
	assert.Equal(t, int64(15), u.Balance)
}

func TestMemoryStore_SwapWithdrawalStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, 1, 0)
	req := models.WithdrawalRequest{UserID: 1, Amount: 15}
	require.NoError(t, s.CreateWithdrawal(ctx, &req))
	assert.Equal(t, models.WithdrawalPending, req.Status)

	ok, err := s.SwapWithdrawalStatus(ctx, req.ID, models.WithdrawalPending, models.WithdrawalPaid)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SwapWithdrawalStatus(ctx, req.ID, models.WithdrawalPending, models.WithdrawalRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetWithdrawal(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPaid, got.Status)
}

func TestMemoryStore_GiveawayLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := models.Giveaway{BetAmount: 10, PrizeRef: "https://t.me/nft/1", CreatedBy: 7}
	require.NoError(t, s.CreateGiveaway(ctx, &first))
	second := models.Giveaway{BetAmount: 20, PrizeRef: "https://t.me/nft/2", CreatedBy: 7}
	require.NoError(t, s.CreateGiveaway(ctx, &second))

	active, err := s.ActiveGiveaway(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	old, err := s.GetGiveaway(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)
	assert.Nil(t, old.WinnerID)

	ok, err := s.CloseGiveaway(ctx, second.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.CloseGiveaway(ctx, second.ID, 6)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.ActiveGiveaway(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)

	history, err := s.GiveawayHistory(ctx, 5)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, int64(5), *history[0].WinnerID)
}

func TestMemoryStore_ExpireAttempts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	g := models.Giveaway{BetAmount: 1, PrizeRef: "p"}
	require.NoError(t, s.CreateGiveaway(ctx, &g))

	stale := models.Attempt{GiveawayID: g.ID, UserID: 1, CreatedAt: time.Now().Add(-time.Hour)}
	fresh := models.Attempt{GiveawayID: g.ID, UserID: 2}
	require.NoError(t, s.CreateAttempt(ctx, &stale))
	require.NoError(t, s.CreateAttempt(ctx, &fresh))

	expired, err := s.ExpireAttempts(ctx, time.Now().Add(-10*time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
	assert.Equal(t, models.AttemptLose, expired[0].Result)
	assert.Nil(t, expired[0].DrawValue)

	got, _ := s.GetAttempt(ctx, fresh.ID)
	assert.Equal(t, models.AttemptPending, got.Result)

	stats, err := s.AttemptStats(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStats{TotalAttempts: 2, UniqueUsers: 2}, stats)
}

func TestMemoryStore_TopReferrers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().Add(-time.Hour)
	for i, id := range []int64{10, 20, 30} {
		u := models.User{ID: id, JoinedAt: base.Add(time.Duration(i) * time.Minute)}
		_, err := s.CreateUserIfAbsent(ctx, &u)
		require.NoError(t, err)
	}
	for invited := int64(100); invited < 102; invited++ {
		_, err := s.AddReferral(ctx, 20, invited, 1)
		require.NoError(t, err)
	}
	_, err := s.AddReferral(ctx, 30, 200, 1)
	require.NoError(t, err)
	_, err = s.AddReferral(ctx, 10, 201, 1)
	require.NoError(t, err)

	top, err := s.TopReferrers(ctx, 10)
	require.NoError(t, err)
	ids := make([]int64, 0, len(top))
	for _, u := range top {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []int64{20, 10, 30}, ids)
}
