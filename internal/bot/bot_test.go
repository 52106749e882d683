package bot

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stars-bot/internal/config"
	"stars-bot/internal/guard"
	"stars-bot/internal/ledger"
	"stars-bot/internal/lottery"
	"stars-bot/internal/models"
	"stars-bot/internal/notify"
	"stars-bot/internal/render"
	"stars-bot/internal/session"
	"stars-bot/internal/storage"
	"stars-bot/internal/withdrawal"
)

const (
	adminID   int64 = 1000
	channelID int64 = -100500
)

type sent struct {
	chatID int64
	msg    notify.Message
}

type edit struct {
	chatID    int64
	messageID int
	msg       notify.Message
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []sent
	edits []edit
}

func (r *recordingSender) Send(_ context.Context, chatID int64, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{chatID: chatID, msg: msg})
	return nil
}

func (r *recordingSender) Edit(_ context.Context, chatID int64, messageID int, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edits = append(r.edits, edit{chatID: chatID, messageID: messageID, msg: msg})
	return nil
}

func (r *recordingSender) to(chatID int64) []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Message
	for _, s := range r.sent {
		if s.chatID == chatID {
			out = append(out, s.msg)
		}
	}
	return out
}

func (r *recordingSender) last(t *testing.T, chatID int64) notify.Message {
	t.Helper()
	msgs := r.to(chatID)
	require.NotEmpty(t, msgs, "nothing sent to %d", chatID)
	return msgs[len(msgs)-1]
}

type fixture struct {
	bot      *Bot
	store    *storage.MemoryStore
	sessions *session.Memory
	sender   *recordingSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	entry := logrus.NewEntry(log)

	cfg := &config.Config{
		AdminID:               adminID,
		AdminChannelID:        channelID,
		MinReferrals:          1,
		WithdrawAmounts:       []int64{15, 25},
		MaxPendingWithdrawals: 3,
		ReferralReward:        15,
		WinValue:              64,
		MaxDrawValue:          64,
		AttemptTimeout:        time.Minute,
	}

	store := storage.NewMemoryStore()
	g := guard.NewMemory()
	l := ledger.New(store, cfg.ReferralReward, entry)
	sender := &recordingSender{}
	notifier := notify.NewNotifier(sender, entry)
	sessions := session.NewMemory(time.Hour)

	b := NewBot(nil, cfg, Deps{
		Ledger: l,
		Withdrawals: withdrawal.NewService(store, l, g, withdrawal.Config{
			MinReferrals:   cfg.MinReferrals,
			AllowedAmounts: cfg.WithdrawAmounts,
			MaxPending:     cfg.MaxPendingWithdrawals,
		}, entry),
		Lottery: lottery.NewEngine(store, g, lottery.Config{
			WinValue:       cfg.WinValue,
			MaxValue:       cfg.MaxDrawValue,
			AttemptTimeout: cfg.AttemptTimeout,
		}, entry),
		Sessions:    sessions,
		Notifier:    notifier,
		Broadcaster: notify.NewBroadcaster(notifier, 1000, 2, entry),
	}, entry)
	b.username = "stars_test_bot"
	b.sleep = func(context.Context, time.Duration) {}

	return &fixture{bot: b, store: store, sessions: sessions, sender: sender}
}

func message(userID int64, text string) telego.Message {
	return telego.Message{
		Chat: telego.Chat{ID: userID, Type: telego.ChatTypePrivate},
		From: &telego.User{ID: userID, FirstName: "User", Username: "user"},
		Text: text,
	}
}

func diceMessage(userID int64, emoji string, value int) telego.Message {
	msg := message(userID, "")
	msg.Dice = &telego.Dice{Emoji: emoji, Value: value}
	return msg
}

func callback(userID int64, data string) telego.CallbackQuery {
	return telego.CallbackQuery{
		ID:   "q",
		From: telego.User{ID: userID, FirstName: "User", Username: "user"},
		Data: data,
	}
}

func (f *fixture) start(t *testing.T, userID int64, text string) {
	t.Helper()
	require.NoError(t, f.bot.handleStart(context.Background(), message(userID, text)))
}

func TestStart_CreditsReferrerAndNotifies(t *testing.T) {
	f := newFixture(t)
	f.start(t, 1, "/start")
	f.start(t, 2, "/start 1")

	assert.Contains(t, f.sender.last(t, 2).Text, "Добро пожаловать")
	assert.Contains(t, f.sender.last(t, 1).Text, "Заработана звезда")

	referrer, err := f.store.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), referrer.Balance)
	assert.Equal(t, int64(1), referrer.ReferralsCount)

	// Returning users get the menu and never credit again.
	f.start(t, 2, "/start 1")
	assert.Contains(t, f.sender.last(t, 2).Text, "Главное меню")
	referrer, err = f.store.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), referrer.Balance)
}

func TestStart_SelfReferralIgnored(t *testing.T) {
	f := newFixture(t)
	f.start(t, 5, "/start 5")

	u, err := f.store.GetUser(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, u.ReferrerID)
	assert.Zero(t, u.Balance)
}

func TestWithdrawalFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.start(t, 1, "/start")
	f.start(t, 2, "/start 1")

	alert, err := f.bot.handleWithdrawAmount(ctx, callback(1, "withdraw_15"))
	require.NoError(t, err)
	assert.Empty(t, alert)

	notice := f.sender.last(t, channelID)
	assert.Contains(t, notice.Text, "Заявка на вывод #1")
	require.Len(t, notice.Buttons, 1)
	assert.Equal(t, "admin_reject_1", notice.Buttons[0][1].Data)

	user, err := f.store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, user.Balance)

	t.Run("non admin cannot decide", func(t *testing.T) {
		alert, err := f.bot.handleDecision(ctx, callback(1, "admin_paid_1"))
		require.NoError(t, err)
		assert.Equal(t, render.Forbidden(), alert)
	})

	alert, err = f.bot.handleDecision(ctx, callback(adminID, "admin_reject_1"))
	require.NoError(t, err)
	assert.NotEmpty(t, alert)
	assert.Contains(t, f.sender.last(t, 1).Text, "отклонена")

	user, err = f.store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), user.Balance)

	_, err = f.bot.handleDecision(ctx, callback(adminID, "admin_paid_1"))
	assert.ErrorIs(t, err, models.ErrAlreadyProcessed)

	user, err = f.store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), user.Balance)
}

func TestDecisionEditsAdminNotice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.start(t, 1, "/start")
	f.start(t, 2, "/start 1")

	_, err := f.bot.handleWithdrawAmount(ctx, callback(1, "withdraw_15"))
	require.NoError(t, err)
	noticesBefore := len(f.sender.to(channelID))

	q := callback(adminID, "admin_paid_1")
	q.Message = &telego.Message{
		MessageID: 77,
		Chat:      telego.Chat{ID: channelID},
		Text:      "Заявка на вывод #1 <15>",
	}
	alert, err := f.bot.handleDecision(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, render.DecisionAlert(models.WithdrawalPaid), alert)

	f.sender.mu.Lock()
	edits := f.sender.edits
	f.sender.mu.Unlock()
	require.Len(t, edits, 1)
	assert.Equal(t, channelID, edits[0].chatID)
	assert.Equal(t, 77, edits[0].messageID)
	assert.Contains(t, edits[0].msg.Text, "Заявка на вывод #1 &lt;15&gt;")
	assert.Contains(t, edits[0].msg.Text, "Статус обновлен: Выплачено")
	assert.Contains(t, edits[0].msg.Text, "@user")
	assert.Empty(t, edits[0].msg.Buttons)
	assert.Len(t, f.sender.to(channelID), noticesBefore)
}

func TestWithdraw_RefusedWithoutReferrals(t *testing.T) {
	f := newFixture(t)
	f.start(t, 1, "/start")

	_, err := f.bot.handleWithdrawAmount(context.Background(), callback(1, "withdraw_15"))
	assert.ErrorIs(t, err, models.ErrInsufficientReferrals)
	assert.Empty(t, f.sender.to(channelID))
}

func TestDrawFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, id := range []int64{adminID, 1, 2} {
		f.start(t, id, "/start")
	}

	require.NoError(t, f.bot.handleCreateCommand(ctx, message(adminID, "/create_nft 50 https://t.me/nft/gift-1")))
	f.bot.broadcaster.Wait()
	g, err := f.store.ActiveGiveaway(ctx)
	require.NoError(t, err)
	assert.Contains(t, f.sender.last(t, 1).Text, "НОВЫЙ РОЗЫГРЫШ")

	joinData := fmt.Sprintf("%s%d", render.CbJoinPrefix, g.ID)
	_, err = f.bot.handleJoin(ctx, callback(1, joinData))
	require.NoError(t, err)
	_, err = f.bot.handleJoin(ctx, callback(2, joinData))
	require.NoError(t, err)

	s, err := f.sessions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingDraw, s.State)
	assert.Equal(t, g.ID, s.GiveawayID)

	t.Run("wrong emoji keeps waiting", func(t *testing.T) {
		require.NoError(t, f.bot.handleDice(ctx, diceMessage(1, "🎲", 6)))
		assert.Contains(t, f.sender.last(t, 1).Text, "Слот-машины")
		s, err := f.sessions.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, session.StateWaitingDraw, s.State)
	})

	t.Run("text while waiting is nudged", func(t *testing.T) {
		require.NoError(t, f.bot.handleText(ctx, message(1, "hello")))
		assert.Equal(t, render.NotDice().Text, f.sender.last(t, 1).Text)
	})

	t.Run("sticker while waiting is nudged", func(t *testing.T) {
		sticker := message(2, "")
		sticker.Sticker = &telego.Sticker{FileID: "sticker", Emoji: "🎰"}
		before := len(f.sender.to(2))
		require.NoError(t, f.bot.handleOther(ctx, sticker))
		require.Len(t, f.sender.to(2), before+1)
		assert.Equal(t, render.NotDice().Text, f.sender.last(t, 2).Text)
		s, err := f.sessions.Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, session.StateWaitingDraw, s.State)
	})

	require.NoError(t, f.bot.handleDice(ctx, diceMessage(1, slotMachineEmoji, 64)))
	f.bot.broadcaster.Wait()
	assert.Contains(t, f.sender.last(t, 1).Text, "ДЖЕКПОТ")
	assert.Contains(t, f.sender.last(t, channelID).Text, "ПОБЕДИТЕЛЬ")
	assert.Contains(t, f.sender.last(t, 2).Text, "ПОБЕДИТЕЛЬ ОПРЕДЕЛЕН")

	s, err = f.sessions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.StateIdle, s.State)

	// The second player throws a jackpot too late.
	require.NoError(t, f.bot.handleDice(ctx, diceMessage(2, slotMachineEmoji, 64)))
	assert.Contains(t, f.sender.last(t, 2).Text, "уже завершен")

	closed, err := f.store.GetGiveaway(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.WinnerID)
	assert.Equal(t, int64(1), *closed.WinnerID)
	assert.False(t, closed.IsActive)
}

func TestDice_IgnoredWithoutPendingAttempt(t *testing.T) {
	f := newFixture(t)
	f.start(t, 1, "/start")

	require.NoError(t, f.bot.handleDice(context.Background(), diceMessage(1, slotMachineEmoji, 64)))
	assert.Len(t, f.sender.to(1), 1)

	photo := message(1, "")
	photo.Photo = []telego.PhotoSize{{FileID: "photo"}}
	require.NoError(t, f.bot.handleOther(context.Background(), photo))
	assert.Len(t, f.sender.to(1), 1)
}

func TestAdminGiveawayWizard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.start(t, adminID, "/start")

	_, err := f.bot.handleAdminCreate(ctx, callback(adminID, render.CbAdminCreateGiveaway))
	require.NoError(t, err)

	require.NoError(t, f.bot.handleText(ctx, message(adminID, "many")))
	assert.Contains(t, f.sender.last(t, adminID).Text, "Шаг 1/2")

	require.NoError(t, f.bot.handleText(ctx, message(adminID, "30")))
	assert.Contains(t, f.sender.last(t, adminID).Text, "Шаг 2/2")

	require.NoError(t, f.bot.handleText(ctx, message(adminID, "https://t.me/nft/gift-9")))
	f.bot.broadcaster.Wait()

	g, err := f.store.ActiveGiveaway(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(30), g.BetAmount)
	assert.Equal(t, "https://t.me/nft/gift-9", g.PrizeRef)

	s, err := f.sessions.Get(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, session.StateIdle, s.State)
}

func TestAdminCommandsRequireAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.start(t, 1, "/start")

	require.NoError(t, f.bot.handleCreateCommand(ctx, message(1, "/create_nft 50 link")))
	_, err := f.store.ActiveGiveaway(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, f.bot.handleAdmin(ctx, message(1, "/admin")))
	assert.Equal(t, render.Forbidden(), f.sender.last(t, 1).Text)

	alert, err := f.bot.handleAdminStats(ctx, callback(1, render.CbAdminStats))
	require.NoError(t, err)
	assert.Equal(t, render.Forbidden(), alert)
}

func TestBroadcastCommand(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, id := range []int64{adminID, 1, 2} {
		f.start(t, id, "/start")
	}

	require.NoError(t, f.bot.handleBroadcastCommand(ctx, message(adminID, "/broadcast")))
	assert.Contains(t, f.sender.last(t, adminID).Text, "МАССОВАЯ РАССЫЛКА")

	require.NoError(t, f.bot.handleBroadcastCommand(ctx, message(adminID, "/broadcast Всем привет")))
	f.bot.broadcaster.Wait()
	assert.Equal(t, "Всем привет", f.sender.last(t, 1).Text)
	assert.Equal(t, "Всем привет", f.sender.last(t, 2).Text)

	var confirmed bool
	for _, m := range f.sender.to(adminID) {
		confirmed = confirmed || strings.Contains(m.Text, "Рассылка начата")
	}
	assert.True(t, confirmed)
}
