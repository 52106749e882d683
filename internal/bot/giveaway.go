package bot

import (
	"context"
	"errors"

	"github.com/mymmrac/telego"
	"github.com/sirupsen/logrus"

	"stars-bot/internal/lottery"
	"stars-bot/internal/models"
	"stars-bot/internal/render"
	"stars-bot/internal/session"
)

const slotMachineEmoji = "🎰"

func (b *Bot) handleGiveaway(ctx context.Context, q telego.CallbackQuery) (string, error) {
	active, err := b.lottery.ActiveGiveaway(ctx)
	if errors.Is(err, models.ErrNotFound) {
		b.reply(ctx, q.From.ID, render.NoGiveaway())
		return "", nil
	}
	if err != nil {
		return "", err
	}
	stats, err := b.lottery.Stats(ctx, active.ID)
	if err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.GiveawayCard(active, stats, b.cfg.WinValue))
	return "", nil
}

func (b *Bot) handleJoin(ctx context.Context, q telego.CallbackQuery) (string, error) {
	giveawayID, ok := parseCallbackID(q.Data, render.CbJoinPrefix)
	if !ok {
		return "", models.ErrValidation
	}
	userID := q.From.ID

	if _, err := b.ledger.Profile(ctx, userID); err != nil {
		return "", err
	}
	g, err := b.lottery.Giveaway(ctx, giveawayID)
	if err != nil {
		return "", err
	}

	// A second tap while a throw is awaited re-sends the prompt for the same attempt.
	current, err := b.sessions.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if current.State == session.StateWaitingDraw && current.GiveawayID == giveawayID && g.IsActive {
		n, err := b.lottery.UserAttemptCount(ctx, giveawayID, userID)
		if err != nil {
			return "", err
		}
		b.reply(ctx, userID, render.AttemptStarted(g, n, b.cfg.WinValue))
		return "", nil
	}

	attempt, err := b.lottery.BeginAttempt(ctx, giveawayID, userID)
	if err != nil {
		return "", err
	}
	err = b.sessions.Set(ctx, userID, session.Session{
		State:      session.StateWaitingDraw,
		GiveawayID: giveawayID,
		AttemptID:  attempt.ID,
		BetAmount:  g.BetAmount,
		UpdatedAt:  b.now().UTC(),
	})
	if err != nil {
		return "", err
	}

	n, err := b.lottery.UserAttemptCount(ctx, giveawayID, userID)
	if err != nil {
		return "", err
	}
	b.reply(ctx, userID, render.AttemptStarted(g, n, b.cfg.WinValue))
	return "", nil
}

func (b *Bot) handleDice(ctx context.Context, msg telego.Message) error {
	userID := msg.From.ID
	s, err := b.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if s.State != session.StateWaitingDraw {
		return nil
	}
	if msg.ForwardOrigin != nil {
		b.reply(ctx, msg.Chat.ID, render.NotDice())
		return nil
	}
	if msg.Dice.Emoji != slotMachineEmoji {
		b.reply(ctx, msg.Chat.ID, render.WrongDice(msg.Dice.Emoji))
		return nil
	}

	value := msg.Dice.Value
	out, err := b.lottery.ResolveAttempt(ctx, s.AttemptID, value)
	switch {
	case errors.Is(err, models.ErrAlreadyInProgress):
		b.log.WithField("user_id", userID).Debug("Duplicate throw dropped")
		return nil
	case errors.Is(err, models.ErrAlreadyProcessed), errors.Is(err, models.ErrNotFound):
		// The attempt expired or was resolved by an earlier throw.
		return b.sessions.Clear(ctx, userID)
	case err != nil:
		return err
	}
	if err := b.sessions.Clear(ctx, userID); err != nil {
		b.log.WithError(err).Warn("Failed to clear session after draw")
	}

	// Let the slot animation finish before revealing the result.
	b.sleep(ctx, b.cfg.DiceAnimationDelay)

	switch {
	case out.Won:
		b.reply(ctx, msg.Chat.ID, render.DrawWon(value))
		b.announceWinner(ctx, out, value)
	case out.GiveawayClosed:
		b.reply(ctx, msg.Chat.ID, render.DrawClosed(value))
	default:
		b.reply(ctx, msg.Chat.ID, render.DrawLost(value, b.cfg.WinValue))
	}
	return nil
}

// handleOther answers stickers, photos and other non-text messages while a
// throw is awaited.
func (b *Bot) handleOther(ctx context.Context, msg telego.Message) error {
	s, err := b.sessions.Get(ctx, msg.From.ID)
	if err != nil {
		return err
	}
	if s.State == session.StateWaitingDraw {
		b.reply(ctx, msg.Chat.ID, render.NotDice())
	}
	return nil
}

func (b *Bot) announceWinner(ctx context.Context, out lottery.Outcome, value int) {
	winner, err := b.ledger.Profile(ctx, out.Attempt.UserID)
	if err != nil {
		b.log.WithFields(logrus.Fields{"user_id": out.Attempt.UserID, "error": err}).Warn("Failed to load winner")
		winner = models.User{ID: out.Attempt.UserID}
	}
	b.toAdminChannel(ctx, render.WinnerAdminNotice(out.Giveaway, winner, value))
	if _, err := b.broadcastAll(ctx, render.WinnerAnnouncement(out.Giveaway, winner, value), winner.ID); err != nil {
		b.log.WithError(err).Error("Failed to start winner announcement")
	}
}
