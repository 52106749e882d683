package ledger

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stars-bot/internal/models"
	"stars-bot/internal/storage"
)

func newTestLedger(t *testing.T) (*Ledger, *storage.MemoryStore) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := storage.NewMemoryStore()
	return New(store, 1, logrus.NewEntry(log)), store
}

func ptr(v int64) *int64 { return &v }

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("new user with referrer credits once", func(t *testing.T) {
		l, _ := newTestLedger(t)
		created, err := l.RegisterUser(ctx, Registration{ID: 1, Username: "ref"})
		require.NoError(t, err)
		require.True(t, created)

		created, err = l.RegisterUser(ctx, Registration{ID: 2, ReferrerID: ptr(1)})
		require.NoError(t, err)
		assert.True(t, created)

		created, err = l.RegisterUser(ctx, Registration{ID: 2, ReferrerID: ptr(1)})
		require.NoError(t, err)
		assert.False(t, created)

		referrer, err := l.Profile(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), referrer.ReferralsCount)
		assert.Equal(t, int64(1), referrer.Balance)

		invited, err := l.Profile(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, invited.ReferrerID)
		assert.Equal(t, int64(1), *invited.ReferrerID)
	})

	t.Run("self referral ignored", func(t *testing.T) {
		l, _ := newTestLedger(t)
		created, err := l.RegisterUser(ctx, Registration{ID: 5, ReferrerID: ptr(5)})
		require.NoError(t, err)
		assert.True(t, created)

		u, _ := l.Profile(ctx, 5)
		assert.Nil(t, u.ReferrerID)
		assert.Zero(t, u.ReferralsCount)
		assert.Zero(t, u.Balance)
	})

	t.Run("unknown referrer registers without credit", func(t *testing.T) {
		l, _ := newTestLedger(t)
		created, err := l.RegisterUser(ctx, Registration{ID: 6, ReferrerID: ptr(404)})
		require.NoError(t, err)
		assert.True(t, created)

		u, _ := l.Profile(ctx, 6)
		assert.Nil(t, u.ReferrerID)
	})

	t.Run("existing user never gains a referrer", func(t *testing.T) {
		l, _ := newTestLedger(t)
		_, err := l.RegisterUser(ctx, Registration{ID: 1})
		require.NoError(t, err)
		_, err = l.RegisterUser(ctx, Registration{ID: 2})
		require.NoError(t, err)

		created, err := l.RegisterUser(ctx, Registration{ID: 2, ReferrerID: ptr(1)})
		require.NoError(t, err)
		assert.False(t, created)

		referrer, _ := l.Profile(ctx, 1)
		assert.Zero(t, referrer.ReferralsCount)
	})

	t.Run("invalid id", func(t *testing.T) {
		l, _ := newTestLedger(t)
		_, err := l.RegisterUser(ctx, Registration{ID: 0})
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestRegisterUser_ConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	_, err := l.RegisterUser(ctx, Registration{ID: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := l.RegisterUser(ctx, Registration{ID: 2, ReferrerID: ptr(1)})
			assert.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount)
	referrer, _ := l.Profile(ctx, 1)
	assert.Equal(t, int64(1), referrer.ReferralsCount)
	assert.Equal(t, int64(1), referrer.Balance)
}

func TestCreditReferralReward(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	_, err := l.RegisterUser(ctx, Registration{ID: 1})
	require.NoError(t, err)

	ok, err := l.CreditReferralReward(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.CreditReferralReward(ctx, 404, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.CreditReferralReward(ctx, 1, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.CreditReferralReward(ctx, 1, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReserveAndRefund(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	_, err := l.RegisterUser(ctx, Registration{ID: 1})
	require.NoError(t, err)
	require.NoError(t, store.AdjustBalance(ctx, 1, 20, false))

	ok, err := l.Reserve(ctx, 1, 25)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Reserve(ctx, 1, 15)
	require.NoError(t, err)
	assert.True(t, ok)

	bal, err := l.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), bal)

	require.NoError(t, l.Refund(ctx, 1, 15))
	bal, _ = l.Balance(ctx, 1)
	assert.Equal(t, int64(20), bal)

	_, err = l.Reserve(ctx, 1, 0)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.ErrorIs(t, l.Refund(ctx, 1, -1), models.ErrValidation)
	assert.ErrorIs(t, l.Refund(ctx, 99, 5), models.ErrNotFound)
}

func TestReserve_NeverOverdraws(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	_, err := l.RegisterUser(ctx, Registration{ID: 1})
	require.NoError(t, err)
	require.NoError(t, store.AdjustBalance(ctx, 1, 50, false))

	var wg sync.WaitGroup
	var mu sync.Mutex
	reserved := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Reserve(ctx, 1, 15)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				reserved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, reserved)
	bal, _ := l.Balance(ctx, 1)
	assert.Equal(t, int64(5), bal)
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	l.now = func() time.Time { return time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC) }
	_, err := l.RegisterUser(ctx, Registration{ID: 1})
	require.NoError(t, err)

	l.now = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }
	_, err = l.RegisterUser(ctx, Registration{ID: 2, ReferrerID: ptr(1)})
	require.NoError(t, err)

	stats, err := l.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.NewUsersToday)
	assert.Equal(t, int64(1), stats.TotalReferrals)
	assert.Equal(t, int64(1), stats.TotalBalance)
}

func TestTopReferrers_RanksUsersWithoutReferrals(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, reg := range []Registration{
		{ID: 1},
		{ID: 2},
		{ID: 3},
		{ID: 4, ReferrerID: ptr(3)},
	} {
		l.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := l.RegisterUser(ctx, reg)
		require.NoError(t, err)
	}

	top, err := l.TopReferrers(ctx, 10)
	require.NoError(t, err)
	ids := make([]int64, 0, len(top))
	for _, u := range top {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []int64{3, 1, 2, 4}, ids)

	top, err = l.TopReferrers(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}
