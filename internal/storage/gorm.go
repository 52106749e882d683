package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stars-bot/internal/models"
)

// GormStore is the SQL-backed Store. It works with any gorm dialector that
// supports row locks; postgres and mysql are wired in the database package.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func storeErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrStoreFailure, err)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.inTx(ctx, "transaction", func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// inTx runs fn in a transaction (a savepoint when already inside one).
// Errors from fn pass through unchanged; begin and commit failures are
// wrapped as store failures.
func (s *GormStore) inTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return storeErr(op, err)
	}
	return err
}

func (s *GormStore) CreateUserIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user)
	if res.Error != nil {
		return false, storeErr("create user", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return models.User{}, storeErr("get user", err)
	}
	return user, nil
}

func (s *GormStore) LockUser(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return models.User{}, storeErr("lock user", err)
	}
	return user, nil
}

func (s *GormStore) AddReferral(ctx context.Context, referrerID, invitedID, amount int64) (bool, error) {
	var credited bool
	err := s.inTx(ctx, "add referral", func(tx *gorm.DB) error {
		var referrer models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&referrer, "id = ?", referrerID).Error; err != nil {
			return storeErr("get referrer", err)
		}

		record := models.ReferralTransaction{
			ReferrerID:    referrerID,
			InvitedUserID: invitedID,
			Amount:        amount,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		if res.Error != nil {
			return storeErr("record referral", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		err := tx.Model(&models.User{}).Where("id = ?", referrerID).Updates(map[string]interface{}{
			"referrals_count": gorm.Expr("referrals_count + ?", 1),
			"balance":         gorm.Expr("balance + ?", amount),
		}).Error
		if err != nil {
			return storeErr("credit referrer", err)
		}
		credited = true
		return nil
	})
	return credited, err
}

func (s *GormStore) AdjustBalance(ctx context.Context, userID, delta int64, requireSufficient bool) error {
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID)
	if requireSufficient && delta < 0 {
		q = q.Where("balance >= ?", -delta)
	}
	res := q.Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return storeErr("adjust balance", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return storeErr("adjust balance", err)
	}
	if count == 0 {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	return fmt.Errorf("user %d: %w", userID, models.ErrInsufficientBalance)
}

func (s *GormStore) TopReferrers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Order("referrals_count DESC").
		Order("joined_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, storeErr("top referrers", err)
	}
	return users, nil
}

func (s *GormStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, storeErr("list users", err)
	}
	return ids, nil
}

func (s *GormStore) CreateWithdrawal(ctx context.Context, req *models.WithdrawalRequest) error {
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return storeErr("create withdrawal", err)
	}
	return nil
}

func (s *GormStore) GetWithdrawal(ctx context.Context, id uint) (models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	if err := s.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return models.WithdrawalRequest{}, storeErr("get withdrawal", err)
	}
	return req, nil
}

func (s *GormStore) SwapWithdrawalStatus(ctx context.Context, id uint, from, to models.WithdrawalStatus) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, storeErr("update withdrawal", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) ListWithdrawals(ctx context.Context, userID int64, limit int) ([]models.WithdrawalRequest, error) {
	var reqs []models.WithdrawalRequest
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&reqs).Error
	if err != nil {
		return nil, storeErr("list withdrawals", err)
	}
	return reqs, nil
}

func (s *GormStore) ListPendingWithdrawals(ctx context.Context, limit int) ([]models.WithdrawalRequest, error) {
	var reqs []models.WithdrawalRequest
	err := s.db.WithContext(ctx).
		Where("status = ?", models.WithdrawalPending).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&reqs).Error
	if err != nil {
		return nil, storeErr("list pending withdrawals", err)
	}
	return reqs, nil
}

func (s *GormStore) CountPendingWithdrawals(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).
		Where("user_id = ? AND status = ?", userID, models.WithdrawalPending).
		Count(&count).Error
	if err != nil {
		return 0, storeErr("count pending withdrawals", err)
	}
	return count, nil
}

func (s *GormStore) CreateGiveaway(ctx context.Context, g *models.Giveaway) error {
	return s.inTx(ctx, "create giveaway", func(tx *gorm.DB) error {
		now := time.Now().UTC()
		err := tx.Model(&models.Giveaway{}).
			Where("is_active = ?", true).
			Updates(map[string]interface{}{"is_active": false, "ended_at": now}).Error
		if err != nil {
			return storeErr("deactivate giveaways", err)
		}
		g.IsActive = true
		if err := tx.Create(g).Error; err != nil {
			return storeErr("create giveaway", err)
		}
		return nil
	})
}

func (s *GormStore) GetGiveaway(ctx context.Context, id uint) (models.Giveaway, error) {
	var g models.Giveaway
	if err := s.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return models.Giveaway{}, storeErr("get giveaway", err)
	}
	return g, nil
}

func (s *GormStore) ActiveGiveaway(ctx context.Context) (models.Giveaway, error) {
	var g models.Giveaway
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id DESC").
		First(&g).Error
	if err != nil {
		return models.Giveaway{}, storeErr("active giveaway", err)
	}
	return g, nil
}

func (s *GormStore) CloseGiveaway(ctx context.Context, id uint, winnerID int64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Giveaway{}).
		Where("id = ? AND is_active = ? AND winner_id IS NULL", id, true).
		Updates(map[string]interface{}{
			"is_active": false,
			"winner_id": winnerID,
			"ended_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, storeErr("close giveaway", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) StopGiveaway(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Giveaway{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{"is_active": false, "ended_at": time.Now().UTC()})
	if res.Error != nil {
		return false, storeErr("stop giveaway", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) GiveawayHistory(ctx context.Context, limit int) ([]models.Giveaway, error) {
	var list []models.Giveaway
	err := s.db.WithContext(ctx).
		Where("is_active = ?", false).
		Order("ended_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, storeErr("giveaway history", err)
	}
	return list, nil
}

func (s *GormStore) CreateAttempt(ctx context.Context, a *models.Attempt) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return storeErr("create attempt", err)
	}
	return nil
}

func (s *GormStore) GetAttempt(ctx context.Context, id uint) (models.Attempt, error) {
	var a models.Attempt
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return models.Attempt{}, storeErr("get attempt", err)
	}
	return a, nil
}

func (s *GormStore) ResolveAttempt(ctx context.Context, id uint, result models.AttemptResult, drawValue *int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Attempt{}).
		Where("id = ? AND result = ?", id, models.AttemptPending).
		Updates(map[string]interface{}{
			"result":      result,
			"draw_value":  drawValue,
			"resolved_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, storeErr("resolve attempt", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) AttemptStats(ctx context.Context, giveawayID uint) (models.GiveawayStats, error) {
	var stats models.GiveawayStats
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total_attempts, COUNT(DISTINCT user_id) AS unique_users
		 FROM attempts WHERE giveaway_id = ?`, giveawayID,
	).Scan(&stats).Error
	if err != nil {
		return models.GiveawayStats{}, storeErr("attempt stats", err)
	}
	return stats, nil
}

func (s *GormStore) CountUserAttempts(ctx context.Context, giveawayID uint, userID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Attempt{}).
		Where("giveaway_id = ? AND user_id = ?", giveawayID, userID).
		Count(&count).Error
	if err != nil {
		return 0, storeErr("count attempts", err)
	}
	return count, nil
}

func (s *GormStore) ExpireAttempts(ctx context.Context, before time.Time) ([]models.Attempt, error) {
	var expired []models.Attempt
	err := s.inTx(ctx, "expire attempts", func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("result = ? AND created_at < ?", models.AttemptPending, before).
			Find(&expired).Error
		if err != nil {
			return storeErr("find stale attempts", err)
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(expired))
		for _, a := range expired {
			ids = append(ids, a.ID)
		}
		now := time.Now().UTC()
		err = tx.Model(&models.Attempt{}).
			Where("id IN ? AND result = ?", ids, models.AttemptPending).
			Updates(map[string]interface{}{"result": models.AttemptLose, "resolved_at": now}).Error
		if err != nil {
			return storeErr("expire attempts", err)
		}
		for i := range expired {
			expired[i].Result = models.AttemptLose
			expired[i].ResolvedAt = &now
		}
		return nil
	})
	return expired, err
}

type statusTotal struct {
	Status models.WithdrawalStatus
	Count  int64
	Total  int64
}

func (s *GormStore) AdminStats(ctx context.Context, dayStart time.Time) (models.AdminStats, error) {
	var stats models.AdminStats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return stats, storeErr("count users", err)
	}
	if err := db.Model(&models.User{}).Where("joined_at >= ?", dayStart).Count(&stats.NewUsersToday).Error; err != nil {
		return stats, storeErr("count new users", err)
	}
	err := db.Model(&models.User{}).
		Select("COALESCE(SUM(referrals_count), 0) AS total_referrals, COALESCE(SUM(balance), 0) AS total_balance").
		Scan(&stats).Error
	if err != nil {
		return stats, storeErr("sum users", err)
	}

	var totals []statusTotal
	err = db.Model(&models.WithdrawalRequest{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("status").
		Scan(&totals).Error
	if err != nil {
		return stats, storeErr("sum withdrawals", err)
	}
	for _, t := range totals {
		switch t.Status {
		case models.WithdrawalPending:
			stats.PendingWithdrawals, stats.PendingAmount = t.Count, t.Total
		case models.WithdrawalPaid:
			stats.PaidWithdrawals, stats.PaidAmount = t.Count, t.Total
		case models.WithdrawalRejected:
			stats.RejectedWithdrawals = t.Count
		}
	}

	if err := db.Model(&models.Giveaway{}).Count(&stats.GiveawaysTotal).Error; err != nil {
		return stats, storeErr("count giveaways", err)
	}
	if err := db.Model(&models.Giveaway{}).Where("winner_id IS NOT NULL").Count(&stats.GiveawaysWon).Error; err != nil {
		return stats, storeErr("count won giveaways", err)
	}
	active, err := s.ActiveGiveaway(ctx)
	switch {
	case err == nil:
		stats.ActiveGiveawayID = active.ID
	case !errors.Is(err, models.ErrNotFound):
		return stats, err
	}
	return stats, nil
}
