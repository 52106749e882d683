// Package guard provides per-key mutual exclusion for user-triggered
// operations. A held key makes the second caller fail fast instead of waiting.
package guard

import (
	"context"
	"fmt"
	"strings"

	"stars-bot/internal/metrics"
	"stars-bot/internal/models"
)

type Guard interface {
	// TryAcquire claims key. ok is false when another holder has it. release
	// is safe to call more than once.
	TryAcquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

func WithdrawKey(userID int64) string {
	return fmt.Sprintf("withdraw:%d", userID)
}

func DrawKey(userID int64) string {
	return fmt.Sprintf("draw:%d", userID)
}

// Do runs fn while holding key. It returns ErrAlreadyInProgress without
// calling fn when the key is held.
func Do(ctx context.Context, g Guard, key string, fn func(ctx context.Context) error) error {
	release, ok, err := g.TryAcquire(ctx, key)
	if err != nil {
		return fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		scope, _, _ := strings.Cut(key, ":")
		metrics.GuardRejections.WithLabelValues(scope).Inc()
		return fmt.Errorf("%s: %w", key, models.ErrAlreadyInProgress)
	}
	defer release()
	return fn(ctx)
}
