package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientReferrals = errors.New("not enough referrals")
	ErrTooManyPending        = errors.New("too many pending withdrawals")
	ErrAlreadyInProgress     = errors.New("operation already in progress")
	ErrAlreadyProcessed      = errors.New("already processed")
	ErrGiveawayClosed        = errors.New("giveaway is closed")
	ErrDeliveryFailed        = errors.New("message delivery failed")
	ErrStoreFailure          = errors.New("store failure")
)

// ShortfallError reports how far a user is from a threshold. It unwraps to
// ErrInsufficientBalance or ErrInsufficientReferrals.
type ShortfallError struct {
	Err  error
	Have int64
	Need int64
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("%v: have %d, need %d", e.Err, e.Have, e.Need)
}

func (e *ShortfallError) Unwrap() error {
	return e.Err
}
