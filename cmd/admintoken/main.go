// Command admintoken prints a bearer token for the admin HTTP API.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"stars-bot/internal/config"
	"stars-bot/internal/httpapi"
)

func main() {
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.LoadConfig()
	if cfg.AdminID == 0 || cfg.JWTSecret == "" {
		logrus.Fatal("ADMIN_ID and JWT_SECRET must be set")
	}
	token, err := httpapi.GenerateAdminToken(cfg.AdminID, cfg.JWTSecret, *ttl)
	if err != nil {
		logrus.Fatalf("Could not sign token: %v", err)
	}
	fmt.Println(token)
}
