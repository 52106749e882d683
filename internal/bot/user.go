package bot

import (
	"context"

	"github.com/mymmrac/telego"
	"github.com/sirupsen/logrus"

	"stars-bot/internal/ledger"
	"stars-bot/internal/models"
	"stars-bot/internal/render"
)

func (b *Bot) handleStart(ctx context.Context, msg telego.Message) error {
	from := msg.From
	if err := b.sessions.Clear(ctx, from.ID); err != nil {
		b.log.WithError(err).Warn("Failed to clear session")
	}

	reg := ledger.Registration{
		ID:          from.ID,
		Username:    from.Username,
		DisplayName: displayName(from),
		ReferrerID:  parseReferrer(msg.Text),
	}
	created, err := b.ledger.RegisterUser(ctx, reg)
	if err != nil {
		return err
	}
	if !created {
		user, err := b.ledger.Profile(ctx, from.ID)
		if err != nil {
			return err
		}
		b.reply(ctx, msg.Chat.ID, render.MainMenu(user))
		return nil
	}

	b.reply(ctx, msg.Chat.ID, render.Welcome(reg.DisplayName))

	user, err := b.ledger.Profile(ctx, from.ID)
	if err != nil {
		return err
	}
	if user.ReferrerID != nil {
		b.notifyReferrer(ctx, *user.ReferrerID, user)
	}
	return nil
}

func (b *Bot) notifyReferrer(ctx context.Context, referrerID int64, invited models.User) {
	balance, err := b.ledger.Balance(ctx, referrerID)
	if err != nil {
		b.log.WithFields(logrus.Fields{"referrer_id": referrerID, "error": err}).Warn("Failed to read referrer balance")
		return
	}
	b.reply(ctx, referrerID, render.ReferralCredited(invited, balance))
}

func (b *Bot) handleProfile(ctx context.Context, q telego.CallbackQuery) (string, error) {
	user, err := b.ledger.Profile(ctx, q.From.ID)
	if err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.Profile(user))
	return "", nil
}

func (b *Bot) handleTop(ctx context.Context, q telego.CallbackQuery) (string, error) {
	top, err := b.ledger.TopReferrers(ctx, ledger.DefaultTopLimit)
	if err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.Top(top))
	return "", nil
}

func (b *Bot) handleHowToEarn(ctx context.Context, q telego.CallbackQuery) (string, error) {
	link := render.RefLink(b.username, q.From.ID)
	b.reply(ctx, q.From.ID, render.HowToEarn(link, b.cfg.ReferralReward))
	return "", nil
}

func (b *Bot) handleRefLink(ctx context.Context, q telego.CallbackQuery) (string, error) {
	link := render.RefLink(b.username, q.From.ID)
	b.reply(ctx, q.From.ID, render.RefLinkCard(link, b.cfg.ReferralReward))
	return "", nil
}

func (b *Bot) handleBackToMenu(ctx context.Context, q telego.CallbackQuery) (string, error) {
	if err := b.sessions.Clear(ctx, q.From.ID); err != nil {
		return "", err
	}
	user, err := b.ledger.Profile(ctx, q.From.ID)
	if err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.MainMenu(user))
	return "", nil
}

func (b *Bot) handleWithdrawMenu(ctx context.Context, q telego.CallbackQuery) (string, error) {
	user, err := b.ledger.Profile(ctx, q.From.ID)
	if err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.WithdrawMenu(user, b.withdrawals.AllowedAmounts()))
	return "", nil
}

func (b *Bot) handleMyWithdrawals(ctx context.Context, q telego.CallbackQuery) (string, error) {
	list, err := b.withdrawals.ListForUser(ctx, q.From.ID, 0)
	if err != nil {
		return "", err
	}
	b.reply(ctx, q.From.ID, render.MyWithdrawals(list))
	return "", nil
}

func (b *Bot) handleWithdrawAmount(ctx context.Context, q telego.CallbackQuery) (string, error) {
	amount, ok := parseAmount(q.Data, render.CbWithdrawPrefix)
	if !ok {
		return "", models.ErrValidation
	}
	req, err := b.withdrawals.Create(ctx, q.From.ID, amount)
	if err != nil {
		return "", err
	}

	b.reply(ctx, q.From.ID, render.WithdrawalCreated(req))

	user, err := b.ledger.Profile(ctx, q.From.ID)
	if err != nil {
		b.log.WithError(err).Warn("Failed to load requester for admin notice")
		user = models.User{ID: q.From.ID}
	}
	b.toAdminChannel(ctx, render.AdminWithdrawalNotice(req, user))
	return "", nil
}
