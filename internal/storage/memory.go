package storage

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"stars-bot/internal/models"
)

type memData struct {
	users       map[int64]models.User
	referrals   map[int64]models.ReferralTransaction
	withdrawals map[uint]models.WithdrawalRequest
	giveaways   map[uint]models.Giveaway
	attempts    map[uint]models.Attempt

	lastReferral   uint
	lastWithdrawal uint
	lastGiveaway   uint
	lastAttempt    uint
}

func (d *memData) clone() memData {
	c := *d
	c.users = maps.Clone(d.users)
	c.referrals = maps.Clone(d.referrals)
	c.withdrawals = maps.Clone(d.withdrawals)
	c.giveaways = maps.Clone(d.giveaways)
	c.attempts = maps.Clone(d.attempts)
	return c
}

// MemoryStore is an in-process Store. A single mutex serializes every call,
// and a transaction holds it for its whole duration, restoring a snapshot on
// error.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memData{
			users:       make(map[int64]models.User),
			referrals:   make(map[int64]models.ReferralTransaction),
			withdrawals: make(map[uint]models.WithdrawalRequest),
			giveaways:   make(map[uint]models.Giveaway),
			attempts:    make(map[uint]models.Attempt),
		},
	}
}

func (m *MemoryStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	defer m.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := m.data.clone()
	err := fn(&MemoryStore{mu: m.mu, data: m.data, inTx: true})
	if err != nil {
		*m.data = snapshot
	}
	return err
}

func (m *MemoryStore) CreateUserIfAbsent(_ context.Context, user *models.User) (bool, error) {
	defer m.lock()()
	if existing, ok := m.data.users[user.ID]; ok {
		*user = existing
		return false, nil
	}
	now := time.Now().UTC()
	if user.JoinedAt.IsZero() {
		user.JoinedAt = now
	}
	user.UpdatedAt = now
	m.data.users[user.ID] = *user
	return true, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id int64) (models.User, error) {
	defer m.lock()()
	user, ok := m.data.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	return user, nil
}

func (m *MemoryStore) LockUser(ctx context.Context, id int64) (models.User, error) {
	return m.GetUser(ctx, id)
}

func (m *MemoryStore) AddReferral(_ context.Context, referrerID, invitedID, amount int64) (bool, error) {
	defer m.lock()()
	referrer, ok := m.data.users[referrerID]
	if !ok {
		return false, fmt.Errorf("referrer %d: %w", referrerID, models.ErrNotFound)
	}
	if _, done := m.data.referrals[invitedID]; done {
		return false, nil
	}

	m.data.lastReferral++
	m.data.referrals[invitedID] = models.ReferralTransaction{
		ID:            m.data.lastReferral,
		ReferrerID:    referrerID,
		InvitedUserID: invitedID,
		Amount:        amount,
		CreatedAt:     time.Now().UTC(),
	}
	referrer.ReferralsCount++
	referrer.Balance += amount
	referrer.UpdatedAt = time.Now().UTC()
	m.data.users[referrerID] = referrer
	return true, nil
}

func (m *MemoryStore) AdjustBalance(_ context.Context, userID, delta int64, requireSufficient bool) error {
	defer m.lock()()
	user, ok := m.data.users[userID]
	if !ok {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	if requireSufficient && user.Balance+delta < 0 {
		return fmt.Errorf("user %d: %w", userID, models.ErrInsufficientBalance)
	}
	user.Balance += delta
	user.UpdatedAt = time.Now().UTC()
	m.data.users[userID] = user
	return nil
}

func (m *MemoryStore) TopReferrers(_ context.Context, limit int) ([]models.User, error) {
	defer m.lock()()
	users := slices.Collect(maps.Values(m.data.users))
	slices.SortFunc(users, func(a, b models.User) int {
		if c := cmp.Compare(b.ReferralsCount, a.ReferralsCount); c != 0 {
			return c
		}
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return truncate(users, limit), nil
}

func (m *MemoryStore) ListUserIDs(_ context.Context) ([]int64, error) {
	defer m.lock()()
	ids := slices.Collect(maps.Keys(m.data.users))
	slices.Sort(ids)
	return ids, nil
}

func (m *MemoryStore) CreateWithdrawal(_ context.Context, req *models.WithdrawalRequest) error {
	defer m.lock()()
	if _, ok := m.data.users[req.UserID]; !ok {
		return fmt.Errorf("user %d: %w", req.UserID, models.ErrNotFound)
	}
	m.data.lastWithdrawal++
	now := time.Now().UTC()
	req.ID = m.data.lastWithdrawal
	if req.Status == "" {
		req.Status = models.WithdrawalPending
	}
	req.CreatedAt, req.UpdatedAt = now, now
	m.data.withdrawals[req.ID] = *req
	return nil
}

func (m *MemoryStore) GetWithdrawal(_ context.Context, id uint) (models.WithdrawalRequest, error) {
	defer m.lock()()
	req, ok := m.data.withdrawals[id]
	if !ok {
		return models.WithdrawalRequest{}, fmt.Errorf("withdrawal %d: %w", id, models.ErrNotFound)
	}
	return req, nil
}

func (m *MemoryStore) SwapWithdrawalStatus(_ context.Context, id uint, from, to models.WithdrawalStatus) (bool, error) {
	defer m.lock()()
	req, ok := m.data.withdrawals[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	req.UpdatedAt = time.Now().UTC()
	m.data.withdrawals[id] = req
	return true, nil
}

func (m *MemoryStore) ListWithdrawals(_ context.Context, userID int64, limit int) ([]models.WithdrawalRequest, error) {
	defer m.lock()()
	var reqs []models.WithdrawalRequest
	for _, r := range m.data.withdrawals {
		if r.UserID == userID {
			reqs = append(reqs, r)
		}
	}
	slices.SortFunc(reqs, func(a, b models.WithdrawalRequest) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return truncate(reqs, limit), nil
}

func (m *MemoryStore) ListPendingWithdrawals(_ context.Context, limit int) ([]models.WithdrawalRequest, error) {
	defer m.lock()()
	var reqs []models.WithdrawalRequest
	for _, r := range m.data.withdrawals {
		if r.Status == models.WithdrawalPending {
			reqs = append(reqs, r)
		}
	}
	slices.SortFunc(reqs, func(a, b models.WithdrawalRequest) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return truncate(reqs, limit), nil
}

func (m *MemoryStore) CountPendingWithdrawals(_ context.Context, userID int64) (int64, error) {
	defer m.lock()()
	var n int64
	for _, r := range m.data.withdrawals {
		if r.UserID == userID && r.Status == models.WithdrawalPending {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CreateGiveaway(_ context.Context, g *models.Giveaway) error {
	defer m.lock()()
	now := time.Now().UTC()
	for id, existing := range m.data.giveaways {
		if existing.IsActive {
			existing.IsActive = false
			existing.EndedAt = &now
			m.data.giveaways[id] = existing
		}
	}
	m.data.lastGiveaway++
	g.ID = m.data.lastGiveaway
	g.IsActive = true
	g.CreatedAt = now
	m.data.giveaways[g.ID] = *g
	return nil
}

func (m *MemoryStore) GetGiveaway(_ context.Context, id uint) (models.Giveaway, error) {
	defer m.lock()()
	g, ok := m.data.giveaways[id]
	if !ok {
		return models.Giveaway{}, fmt.Errorf("giveaway %d: %w", id, models.ErrNotFound)
	}
	return g, nil
}

func (m *MemoryStore) ActiveGiveaway(_ context.Context) (models.Giveaway, error) {
	defer m.lock()()
	for _, g := range m.data.giveaways {
		if g.IsActive {
			return g, nil
		}
	}
	return models.Giveaway{}, fmt.Errorf("active giveaway: %w", models.ErrNotFound)
}

func (m *MemoryStore) CloseGiveaway(_ context.Context, id uint, winnerID int64) (bool, error) {
	defer m.lock()()
	g, ok := m.data.giveaways[id]
	if !ok || !g.IsActive || g.WinnerID != nil {
		return false, nil
	}
	now := time.Now().UTC()
	g.IsActive = false
	g.WinnerID = &winnerID
	g.EndedAt = &now
	m.data.giveaways[id] = g
	return true, nil
}

func (m *MemoryStore) StopGiveaway(_ context.Context, id uint) (bool, error) {
	defer m.lock()()
	g, ok := m.data.giveaways[id]
	if !ok || !g.IsActive {
		return false, nil
	}
	now := time.Now().UTC()
	g.IsActive = false
	g.EndedAt = &now
	m.data.giveaways[id] = g
	return true, nil
}

func (m *MemoryStore) GiveawayHistory(_ context.Context, limit int) ([]models.Giveaway, error) {
	defer m.lock()()
	var list []models.Giveaway
	for _, g := range m.data.giveaways {
		if !g.IsActive {
			list = append(list, g)
		}
	}
	slices.SortFunc(list, func(a, b models.Giveaway) int {
		if a.EndedAt != nil && b.EndedAt != nil {
			if c := b.EndedAt.Compare(*a.EndedAt); c != 0 {
				return c
			}
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return truncate(list, limit), nil
}

func (m *MemoryStore) CreateAttempt(_ context.Context, a *models.Attempt) error {
	defer m.lock()()
	if _, ok := m.data.giveaways[a.GiveawayID]; !ok {
		return fmt.Errorf("giveaway %d: %w", a.GiveawayID, models.ErrNotFound)
	}
	m.data.lastAttempt++
	a.ID = m.data.lastAttempt
	if a.Result == "" {
		a.Result = models.AttemptPending
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	m.data.attempts[a.ID] = *a
	return nil
}

func (m *MemoryStore) GetAttempt(_ context.Context, id uint) (models.Attempt, error) {
	defer m.lock()()
	a, ok := m.data.attempts[id]
	if !ok {
		return models.Attempt{}, fmt.Errorf("attempt %d: %w", id, models.ErrNotFound)
	}
	return a, nil
}

func (m *MemoryStore) ResolveAttempt(_ context.Context, id uint, result models.AttemptResult, drawValue *int) (bool, error) {
	defer m.lock()()
	a, ok := m.data.attempts[id]
	if !ok || a.Result != models.AttemptPending {
		return false, nil
	}
	now := time.Now().UTC()
	a.Result = result
	a.DrawValue = drawValue
	a.ResolvedAt = &now
	m.data.attempts[id] = a
	return true, nil
}

func (m *MemoryStore) AttemptStats(_ context.Context, giveawayID uint) (models.GiveawayStats, error) {
	defer m.lock()()
	var stats models.GiveawayStats
	users := make(map[int64]struct{})
	for _, a := range m.data.attempts {
		if a.GiveawayID == giveawayID {
			stats.TotalAttempts++
			users[a.UserID] = struct{}{}
		}
	}
	stats.UniqueUsers = int64(len(users))
	return stats, nil
}

func (m *MemoryStore) CountUserAttempts(_ context.Context, giveawayID uint, userID int64) (int64, error) {
	defer m.lock()()
	var n int64
	for _, a := range m.data.attempts {
		if a.GiveawayID == giveawayID && a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) ExpireAttempts(_ context.Context, before time.Time) ([]models.Attempt, error) {
	defer m.lock()()
	var expired []models.Attempt
	now := time.Now().UTC()
	for id, a := range m.data.attempts {
		if a.Result != models.AttemptPending || !a.CreatedAt.Before(before) {
			continue
		}
		a.Result = models.AttemptLose
		a.ResolvedAt = &now
		m.data.attempts[id] = a
		expired = append(expired, a)
	}
	slices.SortFunc(expired, func(a, b models.Attempt) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return expired, nil
}

func (m *MemoryStore) AdminStats(_ context.Context, dayStart time.Time) (models.AdminStats, error) {
	defer m.lock()()
	var stats models.AdminStats
	for _, u := range m.data.users {
		stats.TotalUsers++
		if !u.JoinedAt.Before(dayStart) {
			stats.NewUsersToday++
		}
		stats.TotalReferrals += u.ReferralsCount
		stats.TotalBalance += u.Balance
	}
	for _, r := range m.data.withdrawals {
		switch r.Status {
		case models.WithdrawalPending:
			stats.PendingWithdrawals++
			stats.PendingAmount += r.Amount
		case models.WithdrawalPaid:
			stats.PaidWithdrawals++
			stats.PaidAmount += r.Amount
		case models.WithdrawalRejected:
			stats.RejectedWithdrawals++
		}
	}
	for _, g := range m.data.giveaways {
		stats.GiveawaysTotal++
		if g.Won() {
			stats.GiveawaysWon++
		}
		if g.IsActive {
			stats.ActiveGiveawayID = g.ID
		}
	}
	return stats, nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
