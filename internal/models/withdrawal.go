package models

import (
	"time"
)

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalPaid     WithdrawalStatus = "paid"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalPaid || s == WithdrawalRejected
}

type WithdrawalRequest struct {
	ID        uint             `gorm:"primaryKey"`
	UserID    int64            `gorm:"not null;index"`
	Amount    int64            `gorm:"not null;check:chk_withdrawal_requests_amount,amount > 0"`
	Status    WithdrawalStatus `gorm:"size:16;not null;default:'pending';index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
