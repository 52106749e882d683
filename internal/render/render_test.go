package render

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stars-bot/internal/models"
)

func TestWithdrawKeyboardLayout(t *testing.T) {
	kb := WithdrawKeyboard([]int64{15, 25, 50, 100, 200})
	require.Len(t, kb, 5)
	assert.Len(t, kb[0], 2)
	assert.Len(t, kb[2], 1)
	assert.Equal(t, "withdraw_200", kb[2][0].Data)
	assert.Equal(t, CbMyWithdrawals, kb[3][0].Data)
	assert.Equal(t, CbBackToMenu, kb[4][0].Data)
}

func TestShareKeyboardEscapesLink(t *testing.T) {
	kb := ShareKeyboard("https://t.me/stars_bot?start=42")
	assert.Equal(t, "https://t.me/share/url?url=https%3A%2F%2Ft.me%2Fstars_bot%3Fstart%3D42", kb[0][0].URL)
}

func TestUserTextIsEscaped(t *testing.T) {
	u := models.User{ID: 1, DisplayName: "<b>evil</b>", JoinedAt: time.Now()}
	m := Profile(u)
	assert.Contains(t, m.Text, "&lt;b&gt;evil&lt;/b&gt;")
	assert.NotContains(t, m.Text, "<b>evil</b>")
}

func TestTopUsesMedals(t *testing.T) {
	users := []models.User{
		{ID: 1, Username: "a", ReferralsCount: 9},
		{ID: 2, ReferralsCount: 5},
		{ID: 3, Username: "c", ReferralsCount: 4},
		{ID: 4, Username: "d", ReferralsCount: 1},
	}
	text := Top(users).Text
	assert.Contains(t, text, "🥇 <b>@a</b>")
	assert.Contains(t, text, "🥈 <b>ID:2</b>")
	assert.Contains(t, text, "4. <b>@d</b>")
}

func TestAdminHistory(t *testing.T) {
	winner := int64(7)
	ended := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	list := []models.Giveaway{
		{ID: 2, BetAmount: 50, WinnerID: &winner, EndedAt: &ended},
		{ID: 1, BetAmount: 20, EndedAt: &ended},
	}
	text := AdminHistory(list, map[int64]models.User{7: {ID: 7, DisplayName: "Bob"}}).Text
	assert.Contains(t, text, "🏆 Победитель: Bob")
	assert.Contains(t, text, "Никто (завершен админом)")
	assert.Contains(t, text, "2025-03-01")

	assert.Contains(t, AdminHistory(nil, nil).Text, "Пока нет")
}

func TestErrorText(t *testing.T) {
	cases := map[error]string{
		models.ErrInsufficientReferrals: "рефералов",
		models.ErrAlreadyInProgress:     "обрабатывается",
		models.ErrGiveawayClosed:        "завершен",
	}
	for err, want := range cases {
		wrapped := fmt.Errorf("op: %w", err)
		assert.Contains(t, ErrorText(wrapped), want)
	}
	assert.Contains(t, ErrorText(assert.AnError), "ошибка")
}

func TestErrorTextShowsShortfall(t *testing.T) {
	balance := fmt.Errorf("create: %w", &models.ShortfallError{Err: models.ErrInsufficientBalance, Have: 7, Need: 25})
	assert.Equal(t, "❌ Недостаточно Stars!\nНужно: 25 | У вас: 7", ErrorText(balance))

	referrals := &models.ShortfallError{Err: models.ErrInsufficientReferrals, Have: 3, Need: 15}
	assert.Equal(t, "❌ Минимум 15 рефералов!\nУ вас: 3", ErrorText(referrals))
}
