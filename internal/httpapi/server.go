// Package httpapi serves health checks, Prometheus metrics and the admin API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stars-bot/internal/ledger"
	"stars-bot/internal/lottery"
	"stars-bot/internal/metrics"
	"stars-bot/internal/notify"
	"stars-bot/internal/withdrawal"
)

type Config struct {
	Addr         string
	JWTSecret    string
	AdminID      int64
	AllowedCIDRs []string
	WinValue     int
}

type Deps struct {
	Ledger      *ledger.Ledger
	Withdrawals *withdrawal.Service
	Lottery     *lottery.Engine
	Notifier    *notify.Notifier
	Broadcaster *notify.Broadcaster
}

type Server struct {
	cfg  Config
	deps Deps
	log  *logrus.Entry
	// runCtx bounds background announcements started by requests.
	runCtx context.Context
}

func NewServer(cfg Config, deps Deps, log *logrus.Entry) *Server {
	return &Server{
		cfg:    cfg,
		deps:   deps,
		log:    log.WithField("component", "httpapi"),
		runCtx: context.Background(),
	}
}

// Router builds the gin engine. The /admin group is reachable only from the
// allowed networks and with a valid admin token.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.Use(gin.Recovery(), requestLogger(s.log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	admin := r.Group("/admin")
	admin.Use(AllowCIDRs(s.cfg.AllowedCIDRs, s.log), AdminJWT(s.cfg.JWTSecret, s.cfg.AdminID))
	admin.GET("/stats", s.handleStats)
	admin.GET("/top", s.handleTop)
	admin.GET("/withdrawals/pending", s.handlePendingWithdrawals)
	admin.POST("/withdrawals/:id/decision", s.handleDecision)
	admin.GET("/giveaways/active", s.handleActiveGiveaway)
	admin.POST("/giveaways", s.handleCreateGiveaway)
	admin.POST("/giveaways/active/stop", s.handleStopGiveaway)
	admin.GET("/giveaways/history", s.handleHistory)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.runCtx = ctx
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("HTTP server stopped")
	return nil
}
