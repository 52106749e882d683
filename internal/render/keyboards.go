// Package render builds the chat texts and inline keyboards shown to users
// and admins.
package render

import (
	"fmt"
	"net/url"

	"stars-bot/internal/notify"
)

// Callback data understood by the bot handlers.
const (
	CbProfile             = "profile"
	CbTop                 = "top"
	CbHowToEarn           = "how_to_earn"
	CbRefLink             = "ref_link"
	CbWithdraw            = "withdraw"
	CbWithdrawPrefix      = "withdraw_"
	CbMyWithdrawals       = "my_withdrawals"
	CbGiveaway            = "nft_giveaway"
	CbJoinPrefix          = "join_nft_"
	CbBackToMenu          = "back_to_menu"
	CbAdminPaidPrefix     = "admin_paid_"
	CbAdminRejectPrefix   = "admin_reject_"
	CbAdminMenu           = "admin_menu"
	CbAdminStats          = "admin_stats"
	CbAdminGiveaway       = "admin_giveaway"
	CbAdminCreateGiveaway = "admin_create_giveaway"
	CbAdminStopGiveaway   = "admin_stop_giveaway"
	CbAdminHistory        = "admin_giveaway_history"
	CbAdminBroadcast      = "admin_broadcast"
	CbCancel              = "cancel_action"
)

func btn(text, data string) notify.Button {
	return notify.Button{Text: text, Data: data}
}

func MainMenuKeyboard() [][]notify.Button {
	return [][]notify.Button{
		{btn("👤 Мой профиль", CbProfile)},
		{btn("🏆 Топ рефералов", CbTop)},
		{btn("💰 Заработать", CbHowToEarn)},
		{btn("💸 Вывести Stars", CbWithdraw)},
		{btn("🎰 Получить NFT", CbGiveaway)},
	}
}

func BackKeyboard() [][]notify.Button {
	return [][]notify.Button{{btn("⬅️ В меню", CbBackToMenu)}}
}

func ShareKeyboard(refLink string) [][]notify.Button {
	return [][]notify.Button{
		{{Text: "📤 Поделиться ссылкой", URL: "https://t.me/share/url?url=" + url.QueryEscape(refLink)}},
		{btn("🔗 Моя реф. ссылка", CbRefLink)},
		{btn("⬅️ В меню", CbBackToMenu)},
	}
}

func WithdrawKeyboard(amounts []int64) [][]notify.Button {
	var rows [][]notify.Button
	var row []notify.Button
	for _, amount := range amounts {
		row = append(row, btn(fmt.Sprintf("💎 %d Stars", amount), fmt.Sprintf("%s%d", CbWithdrawPrefix, amount)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return append(rows,
		[]notify.Button{btn("📋 Мои заявки", CbMyWithdrawals)},
		[]notify.Button{btn("⬅️ В меню", CbBackToMenu)},
	)
}

func AdminWithdrawalKeyboard(requestID uint) [][]notify.Button {
	return [][]notify.Button{{
		btn("✅ Выплачено", fmt.Sprintf("%s%d", CbAdminPaidPrefix, requestID)),
		btn("❌ Отклонить", fmt.Sprintf("%s%d", CbAdminRejectPrefix, requestID)),
	}}
}

func GiveawayKeyboard(giveawayID uint, betAmount int64) [][]notify.Button {
	return [][]notify.Button{
		{btn(fmt.Sprintf("🎰 Испытать удачу (%d ⭐)", betAmount), fmt.Sprintf("%s%d", CbJoinPrefix, giveawayID))},
		{btn("⬅️ В меню", CbBackToMenu)},
	}
}

func AdminMenuKeyboard() [][]notify.Button {
	return [][]notify.Button{
		{btn("📊 Статистика бота", CbAdminStats)},
		{btn("🎰 Управление розыгрышами", CbAdminGiveaway)},
		{btn("📢 Рассылка", CbAdminBroadcast)},
		{btn("⬅️ Выйти", CbBackToMenu)},
	}
}

func AdminBackKeyboard() [][]notify.Button {
	return [][]notify.Button{{btn("⬅️ Назад к админке", CbAdminMenu)}}
}

func AdminGiveawayKeyboard(hasActive bool) [][]notify.Button {
	var rows [][]notify.Button
	if hasActive {
		rows = append(rows, []notify.Button{btn("🛑 Завершить текущий", CbAdminStopGiveaway)})
	}
	return append(rows,
		[]notify.Button{btn("➕ Создать новый", CbAdminCreateGiveaway)},
		[]notify.Button{btn("📜 История", CbAdminHistory)},
		[]notify.Button{btn("⬅️ Назад", CbAdminMenu)},
	)
}

func CancelKeyboard() [][]notify.Button {
	return [][]notify.Button{{btn("❌ Отмена", CbCancel)}}
}
