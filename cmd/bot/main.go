package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/mymmrac/telego"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"stars-bot/internal/bot"
	"stars-bot/internal/config"
	"stars-bot/internal/database"
	"stars-bot/internal/guard"
	"stars-bot/internal/httpapi"
	"stars-bot/internal/ledger"
	"stars-bot/internal/lottery"
	"stars-bot/internal/notify"
	"stars-bot/internal/session"
	"stars-bot/internal/storage"
	"stars-bot/internal/withdrawal"
	"stars-bot/internal/worker"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()
	setupLogging(cfg)
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	log := logrus.WithField("service", "stars-bot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		logrus.Fatalf("Could not connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("Could not migrate database: %v", err)
	}
	store := storage.NewGormStore(db)

	// Connect to Redis when a component needs it
	var rdb *redis.Client
	if cfg.NeedsRedis() {
		if rdb, err = database.ConnectRedis(ctx, cfg); err != nil {
			logrus.Fatalf("Could not connect to redis: %v", err)
		}
		defer rdb.Close()
	}

	var g guard.Guard = guard.NewMemory()
	if cfg.GuardBackend == "redis" {
		g = guard.NewRedis(rdb, cfg.GuardTTL)
	}
	var sessions session.Store = session.NewMemory(cfg.SessionTTL)
	if cfg.SessionBackend == "redis" {
		sessions = session.NewRedis(rdb, cfg.SessionTTL)
	}

	tgBot, err := telego.NewBot(cfg.BotToken)
	if err != nil {
		logrus.Fatalf("Could not create bot: %v", err)
	}

	notifier := notify.NewNotifier(notify.NewTelegramSender(tgBot), log)
	broadcaster := notify.NewBroadcaster(notifier, cfg.BroadcastRate, cfg.BroadcastWorkers, log)

	l := ledger.New(store, cfg.ReferralReward, log)
	withdrawals := withdrawal.NewService(store, l, g, withdrawal.Config{
		MinReferrals:   cfg.MinReferrals,
		MinAmount:      cfg.MinStarsWithdraw,
		AllowedAmounts: cfg.WithdrawAmounts,
		MaxPending:     cfg.MaxPendingWithdrawals,
	}, log)
	engine := lottery.NewEngine(store, g, lottery.Config{
		WinValue:       cfg.WinValue,
		MaxValue:       cfg.MaxDrawValue,
		AttemptTimeout: cfg.AttemptTimeout,
	}, log)

	b := bot.NewBot(tgBot, cfg, bot.Deps{
		Ledger:      l,
		Withdrawals: withdrawals,
		Lottery:     engine,
		Sessions:    sessions,
		Notifier:    notifier,
		Broadcaster: broadcaster,
	}, log)

	api := httpapi.NewServer(httpapi.Config{
		Addr:         cfg.HTTPAddr,
		JWTSecret:    cfg.JWTSecret,
		AdminID:      cfg.AdminID,
		AllowedCIDRs: cfg.AdminAllowedCIDRs,
		WinValue:     cfg.WinValue,
	}, httpapi.Deps{
		Ledger:      l,
		Withdrawals: withdrawals,
		Lottery:     engine,
		Notifier:    notifier,
		Broadcaster: broadcaster,
	}, log)

	sweeper := worker.NewSweeper(engine, sessions, notifier, cfg.SweepSchedule, log)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return b.Start(gctx) })
	group.Go(func() error { return sweeper.Run(gctx) })
	if cfg.JWTSecret != "" {
		group.Go(func() error { return api.Run(gctx) })
	} else {
		log.Warn("JWT_SECRET is empty, admin HTTP API disabled")
	}

	log.Info("Service started successfully")
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Service stopped with error")
	}

	broadcaster.Wait()
	log.Info("Service stopped")
}

func setupLogging(cfg *config.Config) {
	if cfg.LogJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
