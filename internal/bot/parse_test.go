package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReferrer(t *testing.T) {
	tests := []struct {
		text string
		want *int64
	}{
		{"/start", nil},
		{"/start 42", ptr(42)},
		{"/start ref_42", ptr(42)},
		{"/start  7 ", ptr(7)},
		{"/start -5", nil},
		{"/start 0", nil},
		{"/start abc", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, parseReferrer(tt.text))
		})
	}
}

func TestParseCallbackID(t *testing.T) {
	id, ok := parseCallbackID("admin_paid_17", "admin_paid_")
	assert.True(t, ok)
	assert.Equal(t, uint(17), id)

	_, ok = parseCallbackID("admin_paid_", "admin_paid_")
	assert.False(t, ok)
	_, ok = parseCallbackID("admin_paid_x", "admin_paid_")
	assert.False(t, ok)
	_, ok = parseCallbackID("join_nft_3", "admin_paid_")
	assert.False(t, ok)
}

func TestParseAmount(t *testing.T) {
	amount, ok := parseAmount("withdraw_25", "withdraw_")
	assert.True(t, ok)
	assert.Equal(t, int64(25), amount)

	_, ok = parseAmount("withdraw_-25", "withdraw_")
	assert.False(t, ok)
}

func TestParseCreateCommand(t *testing.T) {
	bet, prize, ok := parseCreateCommand("/create_nft 50 https://t.me/nft/gift-1")
	assert.True(t, ok)
	assert.Equal(t, int64(50), bet)
	assert.Equal(t, "https://t.me/nft/gift-1", prize)

	for _, text := range []string{"/create_nft", "/create_nft 50", "/create_nft x link", "/create_nft 0 link", "/create_nft 5 a b"} {
		_, _, ok := parseCreateCommand(text)
		assert.False(t, ok, text)
	}
}

func TestParseBet(t *testing.T) {
	bet, ok := parseBet(" 30 ")
	assert.True(t, ok)
	assert.Equal(t, int64(30), bet)

	_, ok = parseBet("thirty")
	assert.False(t, ok)
}

func ptr(v int64) *int64 { return &v }
