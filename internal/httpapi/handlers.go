package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stars-bot/internal/models"
	"stars-bot/internal/render"
	"stars-bot/internal/withdrawal"
)

type userResponse struct {
	ID             int64  `json:"id"`
	Username       string `json:"username,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	ReferralsCount int64  `json:"referrals_count"`
	Balance        int64  `json:"balance"`
}

type withdrawalResponse struct {
	ID        uint      `json:"id"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type giveawayResponse struct {
	ID        uint       `json:"id"`
	BetAmount int64      `json:"bet_amount"`
	PrizeRef  string     `json:"prize_ref"`
	IsActive  bool       `json:"is_active"`
	WinnerID  *int64     `json:"winner_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

func toUser(u models.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		ReferralsCount: u.ReferralsCount,
		Balance:        u.Balance,
	}
}

func toWithdrawal(r models.WithdrawalRequest) withdrawalResponse {
	return withdrawalResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		Amount:    r.Amount,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

func toGiveaway(g models.Giveaway) giveawayResponse {
	return giveawayResponse{
		ID:        g.ID,
		BetAmount: g.BetAmount,
		PrizeRef:  g.PrizeRef,
		IsActive:  g.IsActive,
		WinnerID:  g.WinnerID,
		CreatedAt: g.CreatedAt,
		EndedAt:   g.EndedAt,
	}
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyProcessed),
		errors.Is(err, models.ErrAlreadyInProgress),
		errors.Is(err, models.ErrGiveawayClosed):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrInsufficientReferrals),
		errors.Is(err, models.ErrTooManyPending):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithField("route", c.FullPath()).Error("Admin API operation failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func queryLimit(c *gin.Context, fallback int) int {
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			return v
		}
	}
	return fallback
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.deps.Ledger.Overview(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleTop(c *gin.Context) {
	top, err := s.deps.Ledger.TopReferrers(c.Request.Context(), queryLimit(c, 10))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := make([]userResponse, len(top))
	for i, u := range top {
		resp[i] = toUser(u)
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (s *Server) handlePendingWithdrawals(c *gin.Context) {
	list, err := s.deps.Withdrawals.ListPending(c.Request.Context(), queryLimit(c, 50))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := make([]withdrawalResponse, len(list))
	for i, r := range list {
		resp[i] = toWithdrawal(r)
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": resp})
}

type decisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=paid rejected"`
}

func (s *Server) handleDecision(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	var body decisionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	req, err := s.deps.Withdrawals.Decide(ctx, uint(id), withdrawal.Decision(body.Decision))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.deps.Notifier.Notify(ctx, req.UserID, render.WithdrawalDecided(req))
	c.JSON(http.StatusOK, toWithdrawal(req))
}

func (s *Server) handleActiveGiveaway(c *gin.Context) {
	ctx := c.Request.Context()
	g, err := s.deps.Lottery.ActiveGiveaway(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	stats, err := s.deps.Lottery.Stats(ctx, g.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"giveaway": toGiveaway(g), "stats": stats})
}

type createGiveawayRequest struct {
	BetAmount int64  `json:"bet_amount" binding:"required,gt=0"`
	PrizeRef  string `json:"prize_ref" binding:"required"`
}

func (s *Server) handleCreateGiveaway(c *gin.Context) {
	var body createGiveawayRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	g, err := s.deps.Lottery.CreateGiveaway(ctx, body.BetAmount, body.PrizeRef, c.GetInt64(adminIDKey))
	if err != nil {
		s.fail(c, err)
		return
	}

	recipients, err := s.deps.Ledger.UserIDs(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to load recipients for giveaway announcement")
	} else {
		s.deps.Broadcaster.Go(s.runCtx, recipients, render.NewGiveawayAnnouncement(g, s.cfg.WinValue))
	}
	s.log.WithFields(logrus.Fields{"giveaway_id": g.ID, "recipients": len(recipients)}).Info("Giveaway created via API")
	c.JSON(http.StatusCreated, toGiveaway(g))
}

func (s *Server) handleStopGiveaway(c *gin.Context) {
	g, err := s.deps.Lottery.StopActive(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toGiveaway(g))
}

func (s *Server) handleHistory(c *gin.Context) {
	list, err := s.deps.Lottery.History(c.Request.Context(), queryLimit(c, 0))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := make([]giveawayResponse, len(list))
	for i, g := range list {
		resp[i] = toGiveaway(g)
	}
	c.JSON(http.StatusOK, gin.H{"giveaways": resp})
}
