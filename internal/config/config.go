package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	BotToken       string
	AdminID        int64
	AdminChannelID int64

	MinReferrals          int64
	MinStarsWithdraw      int64
	WithdrawAmounts       []int64
	MaxPendingWithdrawals int64
	ReferralReward        int64

	WinValue           int
	MaxDrawValue       int
	AttemptTimeout     time.Duration
	DiceAnimationDelay time.Duration
	SweepSchedule      string

	BroadcastRate    float64
	BroadcastWorkers int

	DBDriver   string
	DBUser     string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	GuardBackend   string
	GuardTTL       time.Duration
	SessionBackend string
	SessionTTL     time.Duration

	HTTPAddr          string
	JWTSecret         string
	AdminAllowedCIDRs []string

	LogLevel string
	LogJSON  bool

	errs []error
}

// LoadConfig reads settings from the process environment, a .env file and
// an optional YAML file named by CONFIG_FILE, in that order of precedence.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	cfg := &Config{}
	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		if err := loadFile(path); err != nil {
			cfg.errs = append(cfg.errs, err)
		}
	}

	cfg.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.AdminID = cfg.getInt64("ADMIN_ID", 0)
	cfg.AdminChannelID = cfg.getInt64("ADMIN_CHANNEL_ID", 0)

	cfg.MinReferrals = cfg.getInt64("MIN_REFERRALS", 15)
	cfg.MinStarsWithdraw = cfg.getInt64("MIN_STARS_WITHDRAW", 15)
	cfg.WithdrawAmounts = cfg.getInt64List("WITHDRAW_AMOUNTS", []int64{15, 25, 50, 100})
	cfg.MaxPendingWithdrawals = cfg.getInt64("MAX_PENDING_WITHDRAWALS", 3)
	cfg.ReferralReward = cfg.getInt64("REFERRAL_REWARD", 1)

	cfg.WinValue = int(cfg.getInt64("WIN_VALUE", 64))
	cfg.MaxDrawValue = int(cfg.getInt64("MAX_DRAW_VALUE", 64))
	cfg.AttemptTimeout = cfg.getDuration("ATTEMPT_TIMEOUT", 10*time.Minute)
	cfg.DiceAnimationDelay = cfg.getDuration("DICE_ANIMATION_DELAY", 2*time.Second)
	cfg.SweepSchedule = getEnv("SWEEP_SCHEDULE", "@every 1m")

	cfg.BroadcastRate = cfg.getFloat("BROADCAST_RATE", 20)
	cfg.BroadcastWorkers = int(cfg.getInt64("BROADCAST_WORKERS", 4))

	cfg.DBDriver = getEnv("DB_DRIVER", "postgres")
	cfg.DBUser = getEnv("DB_USER", "postgres")
	cfg.DBPassword = getEnv("DB_PASSWORD", "postgres")
	cfg.DBName = getEnv("DB_NAME", "stars_bot")
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")

	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")

	cfg.GuardBackend = getEnv("GUARD_BACKEND", "redis")
	cfg.GuardTTL = cfg.getDuration("GUARD_TTL", 30*time.Second)
	cfg.SessionBackend = getEnv("SESSION_BACKEND", "redis")
	cfg.SessionTTL = cfg.getDuration("SESSION_TTL", time.Hour)

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.AdminAllowedCIDRs = getList("ADMIN_ALLOWED_CIDRS", []string{"127.0.0.1/32", "::1/128"})

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogJSON = cfg.getBool("LOG_JSON", false)

	return cfg
}

// Validate reports parse errors and inconsistent settings.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.errs...)
	if c.BotToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	if c.AdminID == 0 {
		errs = append(errs, errors.New("ADMIN_ID is required"))
	}
	if len(c.WithdrawAmounts) == 0 {
		errs = append(errs, errors.New("WITHDRAW_AMOUNTS must not be empty"))
	}
	for _, a := range c.WithdrawAmounts {
		if a <= 0 {
			errs = append(errs, fmt.Errorf("WITHDRAW_AMOUNTS: %d is not positive", a))
		}
	}
	if c.MaxDrawValue < 1 || c.WinValue < 1 || c.WinValue > c.MaxDrawValue {
		errs = append(errs, fmt.Errorf("WIN_VALUE %d must be within 1..%d", c.WinValue, c.MaxDrawValue))
	}
	if c.DBDriver != "postgres" && c.DBDriver != "mysql" {
		errs = append(errs, fmt.Errorf("DB_DRIVER %q: want postgres or mysql", c.DBDriver))
	}
	for key, backend := range map[string]string{"GUARD_BACKEND": c.GuardBackend, "SESSION_BACKEND": c.SessionBackend} {
		if backend != "redis" && backend != "memory" {
			errs = append(errs, fmt.Errorf("%s %q: want redis or memory", key, backend))
		}
	}
	return errors.Join(errs...)
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c *Config) NeedsRedis() bool {
	return c.GuardBackend == "redis" || c.SessionBackend == "redis"
}

var fileValues = map[string]string{}

func loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	fileValues = values
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if value, exists := fileValues[key]; exists {
		return value
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) getInt64(key string, fallback int64) int64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (c *Config) getInt64List(key string, fallback []int64) []int64 {
	parts := getList(key, nil)
	if parts == nil {
		return fallback
	}
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			c.errs = append(c.errs, fmt.Errorf("%s: %w", key, err))
			return fallback
		}
		out = append(out, v)
	}
	return out
}

func (c *Config) getFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (c *Config) getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (c *Config) getBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}
