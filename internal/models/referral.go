package models

import (
	"time"
)

// ReferralTransaction records one credited invitation. InvitedUserID is unique,
// so an invited user is credited at most once.
type ReferralTransaction struct {
	ID            uint  `gorm:"primaryKey"`
	ReferrerID    int64 `gorm:"not null;index"`
	InvitedUserID int64 `gorm:"not null;uniqueIndex"`
	Amount        int64 `gorm:"not null"`
	CreatedAt     time.Time
}
