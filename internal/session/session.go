// Package session keeps the short-lived conversation state of each chat:
// waiting for a draw, or walking an admin through giveaway creation.
package session

import (
	"context"
	"time"
)

type State string

const (
	StateIdle           State = ""
	StateWaitingDraw    State = "waiting_draw"
	StateAdminBetAmount State = "admin_bet_amount"
	StateAdminPrizeRef  State = "admin_prize_ref"
)

type Session struct {
	State      State     `json:"state"`
	GiveawayID uint      `json:"giveaway_id,omitempty"`
	AttemptID  uint      `json:"attempt_id,omitempty"`
	BetAmount  int64     `json:"bet_amount,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Store holds one session per user. Sessions expire after the store's TTL;
// an expired or missing session reads as idle.
type Store interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Set(ctx context.Context, userID int64, s Session) error
	Clear(ctx context.Context, userID int64) error
}
