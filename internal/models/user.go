package models

import (
	"time"
)

// User is a bot user keyed by Telegram ID.
type User struct {
	ID             int64     `gorm:"primaryKey;autoIncrement:false"`
	Username       string    `gorm:"size:255"`
	DisplayName    string    `gorm:"size:255"`
	ReferrerID     *int64    `gorm:"index"`
	ReferralsCount int64     `gorm:"not null;default:0;index"`
	Balance        int64     `gorm:"not null;default:0;check:chk_users_balance,balance >= 0"`
	JoinedAt       time.Time `gorm:"not null;index"`
	UpdatedAt      time.Time
}

// Mention returns @username when known, otherwise the display name.
func (u User) Mention() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return "user"
}
