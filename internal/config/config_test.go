package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFile(t *testing.T) {
	t.Helper()
	fileValues = map[string]string{}
	t.Cleanup(func() { fileValues = map[string]string{} })
}

func TestLoadConfigDefaults(t *testing.T) {
	resetFile(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_ID", "42")

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(15), cfg.MinReferrals)
	assert.Equal(t, []int64{15, 25, 50, 100}, cfg.WithdrawAmounts)
	assert.Equal(t, int64(3), cfg.MaxPendingWithdrawals)
	assert.Equal(t, 64, cfg.WinValue)
	assert.Equal(t, 10*time.Minute, cfg.AttemptTimeout)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.True(t, cfg.NeedsRedis())
}

func TestLoadConfigOverrides(t *testing.T) {
	resetFile(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_ID", "42")
	t.Setenv("WITHDRAW_AMOUNTS", "10, 20")
	t.Setenv("ATTEMPT_TIMEOUT", "90s")
	t.Setenv("GUARD_BACKEND", "memory")
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("ADMIN_ALLOWED_CIDRS", "10.0.0.0/8,192.168.0.0/16")

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int64{10, 20}, cfg.WithdrawAmounts)
	assert.Equal(t, 90*time.Second, cfg.AttemptTimeout)
	assert.False(t, cfg.NeedsRedis())
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.0/16"}, cfg.AdminAllowedCIDRs)
}

func TestLoadConfigFileLayer(t *testing.T) {
	resetFile(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("TELEGRAM_BOT_TOKEN: from-file\nADMIN_ID: \"7\"\nMIN_REFERRALS: \"5\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MIN_REFERRALS", "9")

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "from-file", cfg.BotToken)
	assert.Equal(t, int64(7), cfg.AdminID)
	assert.Equal(t, int64(9), cfg.MinReferrals)
}

func TestValidateReportsErrors(t *testing.T) {
	resetFile(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("ADMIN_ID", "not-a-number")
	t.Setenv("WIN_VALUE", "65")
	t.Setenv("DB_DRIVER", "sqlite")

	err := LoadConfig().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_ID")
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, err.Error(), "WIN_VALUE")
	assert.Contains(t, err.Error(), "DB_DRIVER")
}
