package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/sirupsen/logrus"

	"stars-bot/internal/config"
	"stars-bot/internal/ledger"
	"stars-bot/internal/lottery"
	"stars-bot/internal/models"
	"stars-bot/internal/notify"
	"stars-bot/internal/render"
	"stars-bot/internal/session"
	"stars-bot/internal/withdrawal"
)

// Deps are the services the handlers drive.
type Deps struct {
	Ledger      *ledger.Ledger
	Withdrawals *withdrawal.Service
	Lottery     *lottery.Engine
	Sessions    session.Store
	Notifier    *notify.Notifier
	Broadcaster *notify.Broadcaster
}

type Bot struct {
	Instance *telego.Bot

	ledger      *ledger.Ledger
	withdrawals *withdrawal.Service
	lottery     *lottery.Engine
	sessions    session.Store
	notifier    *notify.Notifier
	broadcaster *notify.Broadcaster

	cfg      *config.Config
	log      *logrus.Entry
	username string

	// runCtx outlives single updates; background broadcasts run under it.
	runCtx context.Context
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
}

func NewBot(instance *telego.Bot, cfg *config.Config, deps Deps, log *logrus.Entry) *Bot {
	return &Bot{
		Instance:    instance,
		ledger:      deps.Ledger,
		withdrawals: deps.Withdrawals,
		lottery:     deps.Lottery,
		sessions:    deps.Sessions,
		notifier:    deps.Notifier,
		broadcaster: deps.Broadcaster,
		cfg:         cfg,
		log:         log.WithField("component", "bot"),
		runCtx:      context.Background(),
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Start polls for updates and dispatches them until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.runCtx = ctx

	me, err := b.Instance.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	b.username = me.Username

	updates, err := b.Instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.Instance, updates)
	if err != nil {
		return fmt.Errorf("create bot handler: %w", err)
	}
	handler.Use(th.PanicRecovery())

	// Commands
	handler.Handle(b.onMessage("start", b.handleStart), th.CommandEqual("start"))
	handler.Handle(b.onMessage("admin", b.handleAdmin), th.CommandEqual("admin"))
	handler.Handle(b.onMessage("create_nft", b.handleCreateCommand), th.CommandEqual("create_nft"))
	handler.Handle(b.onMessage("stop_nft", b.handleStopCommand), th.CommandEqual("stop_nft"))
	handler.Handle(b.onMessage("broadcast", b.handleBroadcastCommand), th.CommandEqual("broadcast"))

	// User menu
	handler.Handle(b.onCallback(b.handleProfile), th.CallbackDataEqual(render.CbProfile))
	handler.Handle(b.onCallback(b.handleTop), th.CallbackDataEqual(render.CbTop))
	handler.Handle(b.onCallback(b.handleHowToEarn), th.CallbackDataEqual(render.CbHowToEarn))
	handler.Handle(b.onCallback(b.handleRefLink), th.CallbackDataEqual(render.CbRefLink))
	handler.Handle(b.onCallback(b.handleBackToMenu), th.CallbackDataEqual(render.CbBackToMenu))

	// Withdrawals
	handler.Handle(b.onCallback(b.handleWithdrawMenu), th.CallbackDataEqual(render.CbWithdraw))
	handler.Handle(b.onCallback(b.handleMyWithdrawals), th.CallbackDataEqual(render.CbMyWithdrawals))
	handler.Handle(b.onCallback(b.handleWithdrawAmount), th.CallbackDataPrefix(render.CbWithdrawPrefix))
	handler.Handle(b.onCallback(b.handleDecision), th.CallbackDataPrefix(render.CbAdminPaidPrefix))
	handler.Handle(b.onCallback(b.handleDecision), th.CallbackDataPrefix(render.CbAdminRejectPrefix))

	// Giveaways
	handler.Handle(b.onCallback(b.handleGiveaway), th.CallbackDataEqual(render.CbGiveaway))
	handler.Handle(b.onCallback(b.handleJoin), th.CallbackDataPrefix(render.CbJoinPrefix))

	// Admin panel
	handler.Handle(b.onCallback(b.handleAdminMenu), th.CallbackDataEqual(render.CbAdminMenu))
	handler.Handle(b.onCallback(b.handleAdminStats), th.CallbackDataEqual(render.CbAdminStats))
	handler.Handle(b.onCallback(b.handleAdminGiveaway), th.CallbackDataEqual(render.CbAdminGiveaway))
	handler.Handle(b.onCallback(b.handleAdminCreate), th.CallbackDataEqual(render.CbAdminCreateGiveaway))
	handler.Handle(b.onCallback(b.handleAdminStop), th.CallbackDataEqual(render.CbAdminStopGiveaway))
	handler.Handle(b.onCallback(b.handleAdminHistory), th.CallbackDataEqual(render.CbAdminHistory))
	handler.Handle(b.onCallback(b.handleAdminBroadcast), th.CallbackDataEqual(render.CbAdminBroadcast))
	handler.Handle(b.onCallback(b.handleCancel), th.CallbackDataEqual(render.CbCancel))

	// Draws and free text
	handler.Handle(b.onMessage("dice", b.handleDice), isDice)
	handler.Handle(b.onMessage("text", b.handleText), th.AnyMessageWithText())
	handler.Handle(b.onMessage("other", b.handleOther), th.AnyMessage())

	go func() {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := handler.StopWithContext(stopCtx); err != nil {
			b.log.WithError(err).Warn("Bot handler did not stop cleanly")
		}
	}()

	b.log.WithField("username", b.username).Info("Bot started")
	return handler.Start()
}

func isDice(_ context.Context, update telego.Update) bool {
	return update.Message != nil && update.Message.Dice != nil
}

type messageHandler func(ctx context.Context, msg telego.Message) error

// callbackHandler returns the alert to show on the pressed button, if any.
type callbackHandler func(ctx context.Context, q telego.CallbackQuery) (string, error)

func (b *Bot) onMessage(name string, h messageHandler) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		msg := update.Message
		if msg == nil || msg.From == nil {
			return nil
		}
		if err := h(ctx.Context(), *msg); err != nil {
			b.logFailure(err, logrus.Fields{"handler": name, "user_id": msg.From.ID})
			b.reply(ctx.Context(), msg.Chat.ID, notify.Message{Text: render.ErrorText(err)})
		}
		return nil
	}
}

func (b *Bot) onCallback(h callbackHandler) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		q := update.CallbackQuery
		if q == nil {
			return nil
		}
		alert, err := h(ctx.Context(), *q)
		if err != nil {
			b.logFailure(err, logrus.Fields{"callback": q.Data, "user_id": q.From.ID})
			alert = render.ErrorText(err)
		}
		answer := tu.CallbackQuery(q.ID)
		if alert != "" {
			answer = answer.WithText(alert).WithShowAlert()
		}
		if err := ctx.Bot().AnswerCallbackQuery(ctx.Context(), answer); err != nil {
			b.log.WithError(err).Debug("Failed to answer callback query")
		}
		return nil
	}
}

// logFailure logs rule violations quietly and everything else as errors.
func (b *Bot) logFailure(err error, fields logrus.Fields) {
	entry := b.log.WithFields(fields).WithError(err)
	if isRuleViolation(err) {
		entry.Debug("Request refused")
		return
	}
	entry.Error("Handler failed")
}

func isRuleViolation(err error) bool {
	for _, target := range []error{
		models.ErrValidation,
		models.ErrNotFound,
		models.ErrInsufficientBalance,
		models.ErrInsufficientReferrals,
		models.ErrTooManyPending,
		models.ErrAlreadyInProgress,
		models.ErrAlreadyProcessed,
		models.ErrGiveawayClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (b *Bot) reply(ctx context.Context, chatID int64, msg notify.Message) {
	b.notifier.Notify(ctx, chatID, msg)
}

func (b *Bot) toAdminChannel(ctx context.Context, msg notify.Message) {
	chatID := b.cfg.AdminChannelID
	if chatID == 0 {
		chatID = b.cfg.AdminID
	}
	b.notifier.Notify(ctx, chatID, msg)
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.AdminID != 0 && userID == b.cfg.AdminID
}

// broadcastAll announces msg to every registered user except exclude, in the
// background.
func (b *Bot) broadcastAll(ctx context.Context, msg notify.Message, exclude ...int64) (int, error) {
	ids, err := b.ledger.UserIDs(ctx)
	if err != nil {
		return 0, err
	}
	b.broadcaster.Go(b.runCtx, ids, msg, exclude...)
	return len(ids), nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func displayName(u *telego.User) string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}
