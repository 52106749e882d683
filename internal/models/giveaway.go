package models

import (
	"time"
)

// Giveaway is a lottery round. At most one row has IsActive set.
type Giveaway struct {
	ID        uint   `gorm:"primaryKey"`
	BetAmount int64  `gorm:"not null"`
	PrizeRef  string `gorm:"size:512;not null"`
	IsActive  bool   `gorm:"not null;default:true;index"`
	CreatedBy int64  `gorm:"not null"`
	WinnerID  *int64 `gorm:"index"`
	CreatedAt time.Time
	EndedAt   *time.Time
}

// Won reports whether the giveaway was closed by a winning draw.
func (g Giveaway) Won() bool {
	return g.WinnerID != nil
}

type AttemptResult string

const (
	AttemptPending AttemptResult = "pending"
	AttemptWin     AttemptResult = "win"
	AttemptLose    AttemptResult = "lose"
)

type Attempt struct {
	ID         uint          `gorm:"primaryKey"`
	GiveawayID uint          `gorm:"not null;index"`
	UserID     int64         `gorm:"not null;index"`
	Result     AttemptResult `gorm:"size:16;not null;default:'pending';index"`
	DrawValue  *int
	CreatedAt  time.Time `gorm:"index"`
	ResolvedAt *time.Time
}
