package models

// GiveawayStats aggregates attempts of a single giveaway.
type GiveawayStats struct {
	TotalAttempts int64 `json:"total_attempts"`
	UniqueUsers   int64 `json:"unique_users"`
}

// AdminStats is the operator overview.
type AdminStats struct {
	TotalUsers          int64 `json:"total_users"`
	NewUsersToday       int64 `json:"new_users_today"`
	TotalReferrals      int64 `json:"total_referrals"`
	TotalBalance        int64 `json:"total_balance"`
	PendingWithdrawals  int64 `json:"pending_withdrawals"`
	PendingAmount       int64 `json:"pending_amount"`
	PaidWithdrawals     int64 `json:"paid_withdrawals"`
	PaidAmount          int64 `json:"paid_amount"`
	RejectedWithdrawals int64 `json:"rejected_withdrawals"`
	GiveawaysTotal      int64 `json:"giveaways_total"`
	GiveawaysWon        int64 `json:"giveaways_won"`
	ActiveGiveawayID    uint  `json:"active_giveaway_id,omitempty"`
}
