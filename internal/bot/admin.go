package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/mymmrac/telego"

	"stars-bot/internal/models"
	"stars-bot/internal/notify"
	"stars-bot/internal/render"
	"stars-bot/internal/session"
	"stars-bot/internal/withdrawal"
)

func (b *Bot) handleAdmin(ctx context.Context, msg telego.Message) error {
	if !b.isAdmin(msg.From.ID) {
		b.reply(ctx, msg.Chat.ID, notify.Message{Text: render.Forbidden()})
		return nil
	}
	b.reply(ctx, msg.Chat.ID, render.AdminPanel(displayName(msg.From)))
	return nil
}

func (b *Bot) handleCreateCommand(ctx context.Context, msg telego.Message) error {
	if !b.isAdmin(msg.From.ID) {
		return nil
	}
	bet, prize, ok := parseCreateCommand(msg.Text)
	if !ok {
		b.reply(ctx, msg.Chat.ID, render.CreateUsage())
		return nil
	}
	return b.createGiveaway(ctx, msg.Chat.ID, msg.From.ID, bet, prize)
}

func (b *Bot) handleStopCommand(ctx context.Context, msg telego.Message) error {
	if !b.isAdmin(msg.From.ID) {
		return nil
	}
	g, err := b.lottery.StopActive(ctx)
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, render.GiveawayStopped(g))
	return nil
}

func (b *Bot) handleBroadcastCommand(ctx context.Context, msg telego.Message) error {
	if !b.isAdmin(msg.From.ID) {
		return nil
	}
	text := commandArgs(msg.Text)
	if text == "" {
		b.reply(ctx, msg.Chat.ID, render.BroadcastUsage())
		return nil
	}
	n, err := b.broadcastAll(ctx, notify.Message{Text: text})
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, render.BroadcastStarted(n))
	return nil
}

// createGiveaway replaces any active giveaway and announces the new one to
// every user.
func (b *Bot) createGiveaway(ctx context.Context, chatID, adminID, bet int64, prize string) error {
	g, err := b.lottery.CreateGiveaway(ctx, bet, prize, adminID)
	if err != nil {
		return err
	}
	b.reply(ctx, chatID, render.GiveawayCreated(g, b.cfg.WinValue))
	if _, err := b.broadcastAll(ctx, render.NewGiveawayAnnouncement(g, b.cfg.WinValue)); err != nil {
		b.log.WithError(err).Error("Failed to start giveaway announcement")
	}
	return nil
}

func (b *Bot) handleDecision(ctx context.Context, q telego.CallbackQuery) (string, error) {
	if !b.isAdmin(q.From.ID) {
		return render.Forbidden(), nil
	}
	decision := withdrawal.DecisionPay
	id, ok := parseCallbackID(q.Data, render.CbAdminPaidPrefix)
	if !ok {
		decision = withdrawal.DecisionReject
		if id, ok = parseCallbackID(q.Data, render.CbAdminRejectPrefix); !ok {
			return "", models.ErrValidation
		}
	}

	req, err := b.withdrawals.Decide(ctx, id, decision)
	if err != nil {
		return "", err
	}
	b.reply(ctx, req.UserID, render.WithdrawalDecided(req))

	admin := adminName(q.From)
	notice := q.Message
	edited := notice != nil && notice.IsAccessible() &&
		b.notifier.Edit(ctx, notice.GetChat().ID, notice.GetMessageID(), render.DecisionEdit(notice.Message().Text, req, admin))
	if !edited {
		b.toAdminChannel(ctx, render.DecisionRecorded(req, admin))
	}
	return render.DecisionAlert(req.Status), nil
}

func (b *Bot) handleAdminMenu(ctx context.Context, q telego.CallbackQuery) (string, error) {
	if !b.isAdmin(q.From.ID) {
		return render.Forbidden(), nil
	}
	if err := b.sessions.Clear(ctx, q.From.ID); err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.AdminPanel(displayName(&q.From)))
	return "", nil
}

func (b *Bot) handleAdminStats(ctx context.Context, q telego.CallbackQuery) (string, error) {
	if !b.isAdmin(q.From.ID) {
		return render.Forbidden(), nil
	}
	stats, err := b.ledger.Overview(ctx)
	if err != nil {
		return "", err
	}
	var current models.GiveawayStats
	if stats.ActiveGiveawayID != 0 {
		if current, err = b.lottery.Stats(ctx, stats.ActiveGiveawayID); err != nil {
			return "", err
		}
	}
	top, err := b.ledger.TopReferrers(ctx, 5)
	if err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.AdminStats(stats, current, top))
	return "", nil
}

func (b *Bot) handleAdminGiveaway(ctx context.Context, q telego.CallbackQuery) (string, error) {
	if !b.isAdmin(q.From.ID) {
		return render.Forbidden(), nil
	}
	active, err := b.lottery.ActiveGiveaway(ctx)
	if errors.Is(err, models.ErrNotFound) {
		b.reply(ctx, q.From.ID, render.AdminGiveaway(nil, models.GiveawayStats{}))
		return "", nil
	}
	if err != nil {
		return "", err
	}
	stats, err := b.lottery.Stats(ctx, active.ID)
	if err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.AdminGiveaway(&active, stats))
	return "", nil
}

func (b *Bot) handleAdminCreate(ctx context.Context, q telego.CallbackQuery) (string, error) {
	if !b.isAdmin(q.From.ID) {
		return render.Forbidden(), nil
	}
	err := b.sessions.Set(ctx, q.From.ID, session.Session{
		State:     session.StateAdminBetAmount,
		UpdatedAt: b.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.BetAmountPrompt())
	return "", nil
}

func (b *Bot) handleAdminStop(ctx context.Context, q telego.CallbackQuery) (string, error) {
	if !b.isAdmin(q.From.ID) {
		return render.Forbidden(), nil
	}
	g, err := b.lottery.StopActive(ctx)
	if err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.GiveawayStopped(g))
	return "", nil
}

func (b *Bot) handleAdminHistory(ctx context.Context, q telego.CallbackQuery) (string, error) {
	if !b.isAdmin(q.From.ID) {
		return render.Forbidden(), nil
	}
	list, err := b.lottery.History(ctx, 0)
	if err != nil {
		return "", err
	}
	winners := make(map[int64]models.User)
	for _, g := range list {
		if g.WinnerID == nil {
			continue
		}
		if u, err := b.ledger.Profile(ctx, *g.WinnerID); err == nil {
			winners[u.ID] = u
		}
	}
	b.reply(ctx, q.From.ID, render.AdminHistory(list, winners))
	return "", nil
}

func (b *Bot) handleAdminBroadcast(ctx context.Context, q telego.CallbackQuery) (string, error) {
	if !b.isAdmin(q.From.ID) {
		return render.Forbidden(), nil
	}
	b.reply(ctx, q.From.ID, render.BroadcastUsage())
	return "", nil
}

func (b *Bot) handleCancel(ctx context.Context, q telego.CallbackQuery) (string, error) {
	if err := b.sessions.Clear(ctx, q.From.ID); err != nil {
		return "", err
	}
	if b.isAdmin(q.From.ID) {
		b.reply(ctx, q.From.ID, render.AdminPanel(displayName(&q.From)))
		return "", nil
	}
	return b.handleBackToMenu(ctx, q)
}

// handleText drives the admin giveaway wizard and nudges users who type
// instead of throwing the slot machine.
func (b *Bot) handleText(ctx context.Context, msg telego.Message) error {
	userID := msg.From.ID
	s, err := b.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}

	switch s.State {
	case session.StateWaitingDraw:
		b.reply(ctx, msg.Chat.ID, render.NotDice())
	case session.StateAdminBetAmount:
		if !b.isAdmin(userID) {
			return b.sessions.Clear(ctx, userID)
		}
		bet, ok := parseBet(msg.Text)
		if !ok {
			b.reply(ctx, msg.Chat.ID, render.BetAmountPrompt())
			return nil
		}
		s.State = session.StateAdminPrizeRef
		s.BetAmount = bet
		s.UpdatedAt = b.now().UTC()
		if err := b.sessions.Set(ctx, userID, s); err != nil {
			return err
		}
		b.reply(ctx, msg.Chat.ID, render.PrizeRefPrompt(bet))
	case session.StateAdminPrizeRef:
		if !b.isAdmin(userID) {
			return b.sessions.Clear(ctx, userID)
		}
		prize := strings.TrimSpace(msg.Text)
		if prize == "" {
			b.reply(ctx, msg.Chat.ID, render.PrizeRefPrompt(s.BetAmount))
			return nil
		}
		if err := b.sessions.Clear(ctx, userID); err != nil {
			return err
		}
		return b.createGiveaway(ctx, msg.Chat.ID, userID, s.BetAmount, prize)
	}
	return nil
}

func adminName(u telego.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return displayName(&u)
}
