package main

import (
	"github.com/sirupsen/logrus"

	"stars-bot/internal/config"
	"stars-bot/internal/database"
)

func main() {
	cfg := config.LoadConfig()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.Fatalf("Could not connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("Migration failed: %v", err)
	}
	logrus.WithField("driver", cfg.DBDriver).Info("Migration finished")
}
