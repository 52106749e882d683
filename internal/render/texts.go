package render

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"stars-bot/internal/models"
	"stars-bot/internal/notify"
)

const dateLayout = "2006-01-02"

func msg(text string, kb [][]notify.Button) notify.Message {
	return notify.Message{Text: text, Buttons: kb}
}

func name(u models.User) string {
	if u.DisplayName != "" {
		return html.EscapeString(u.DisplayName)
	}
	return "Без имени"
}

func username(u models.User) string {
	if u.Username != "" {
		return "@" + html.EscapeString(u.Username)
	}
	return "скрыт"
}

func userLink(u models.User) string {
	return fmt.Sprintf("<a href='tg://user?id=%d'>%s</a>", u.ID, name(u))
}

// RefLink is the deep link that registers the opener as userID's referral.
func RefLink(botUsername string, userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", botUsername, userID)
}

func Welcome(displayName string) notify.Message {
	return msg(fmt.Sprintf("<b>🌟 Добро пожаловать в Реферальную Систему!</b>\n\n"+
		"Привет, <b>%s</b>! Рады видеть тебя здесь.\n\n"+
		"<blockquote>💰 Принцип максимально прост:\n"+
		"• Получите свою реферальную ссылку\n"+
		"• Поделитесь ею с другом\n"+
		"• Мгновенно получите ⭐ звезду за каждого друга!</blockquote>\n\n"+
		"<b>Начинайте зарабатывать прямо сейчас!</b>",
		html.EscapeString(displayName)), MainMenuKeyboard())
}

func MainMenu(u models.User) notify.Message {
	return msg(fmt.Sprintf("<b>🏠 Главное меню</b>\n\n"+
		"Привет, <b>%s</b>! 👋\n\n"+
		"<blockquote>💎 Баланс: <b>%d ⭐ звезд</b>\n"+
		"👥 Рефералы: <b>%d человек</b>\n"+
		"🎯 Каждый друг = звезда!</blockquote>\n\n"+
		"<b>Выберите действие:</b>",
		name(u), u.Balance, u.ReferralsCount), MainMenuKeyboard())
}

func ReferralCredited(invited models.User, balance int64) notify.Message {
	return msg(fmt.Sprintf("⭐ <b>Заработана звезда!</b>\n\n"+
		"<blockquote>Пользователь %s присоединился по вашей ссылке!</blockquote>\n\n"+
		"💎 Ваш баланс: <b>%d ⭐ звезд</b>",
		username(invited), balance), nil)
}

func Profile(u models.User) notify.Message {
	return msg(fmt.Sprintf("👤 <b>Мой профиль</b>\n\n"+
		"<blockquote>🆔 ID: <code>%d</code>\n"+
		"👤 Username: %s\n"+
		"📛 Имя: <b>%s</b>\n"+
		"📅 Дата: %s</blockquote>\n\n"+
		"<blockquote>📊 Моя статистика:\n"+
		"├ Приглашено: <b>%d человек</b>\n"+
		"└ Баланс: <b>%d ⭐ звезд</b></blockquote>\n\n"+
		"<i>Каждый новый друг — новая звезда!</i>",
		u.ID, username(u), name(u), u.JoinedAt.Format(dateLayout), u.ReferralsCount, u.Balance), BackKeyboard())
}

var medals = []string{"🥇", "🥈", "🥉"}

func Top(users []models.User) notify.Message {
	var b strings.Builder
	b.WriteString("🏆 <b>ТОП-10 РЕФЕРЕРОВ</b>\n\n<blockquote>")
	for i, u := range users {
		medal := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			medal = medals[i]
		}
		label := fmt.Sprintf("ID:%d", u.ID)
		if u.Username != "" {
			label = "@" + html.EscapeString(u.Username)
		}
		fmt.Fprintf(&b, "%s <b>%s</b> │ %d чел. │ %d⭐\n", medal, label, u.ReferralsCount, u.Balance)
	}
	b.WriteString("</blockquote>\n\n<blockquote>🎯 Ваша цель: попасть в топ и заработать максимум звезд!</blockquote>")
	return msg(b.String(), BackKeyboard())
}

func HowToEarn(refLink string, reward int64) notify.Message {
	return msg(fmt.Sprintf("💰 <b>КАК ЗАРАБОТАТЬ ЗВЕЗДЫ</b>\n\n"+
		"<blockquote><b>ШАГ 1:</b> Получите свою ссылку\n"+
		"└ <code>%s</code>\n\n"+
		"<b>ШАГ 2:</b> Поделитесь с другом\n"+
		"└ Отправьте ссылку в ЛС или чат\n\n"+
		"<b>ШАГ 3:</b> Получите награду мгновенно!\n"+
		"└ Как только друг присоединится, вы получаете %d ⭐</blockquote>\n\n"+
		"<b>⚡ Ваша ссылка готова, начинайте зарабатывать!</b>",
		refLink, reward), ShareKeyboard(refLink))
}

func RefLinkCard(refLink string, reward int64) notify.Message {
	return msg(fmt.Sprintf("🔗 <b>Ваша реферальная ссылка</b>\n\n"+
		"<blockquote>%s</blockquote>\n\n"+
		"<blockquote>📌 Что делать дальше:\n"+
		"• Скопируйте ссылку\n"+
		"• Отправьте другу\n"+
		"• Мгновенно получите %d ⭐</blockquote>",
		refLink, reward), ShareKeyboard(refLink))
}

func WithdrawMenu(u models.User, amounts []int64) notify.Message {
	list := make([]string, 0, len(amounts))
	for _, a := range amounts {
		list = append(list, fmt.Sprint(a))
	}
	return msg(fmt.Sprintf("💸 <b>Вывод Stars</b>\n\n"+
		"<blockquote>📊 Ваш баланс: <b>%d ⭐</b>\n"+
		"👥 Рефералов: <b>%d человек</b>\n"+
		"✅ Доступные суммы: %s</blockquote>\n\n"+
		"<blockquote>Выберите сумму для вывода:</blockquote>",
		u.Balance, u.ReferralsCount, strings.Join(list, ", ")), WithdrawKeyboard(amounts))
}

func WithdrawalCreated(req models.WithdrawalRequest) notify.Message {
	return msg(fmt.Sprintf("✅ <b>Заявка #%d создана!</b>\n\n"+
		"<blockquote>💰 Сумма: <b>%d ⭐ Stars</b>\n"+
		"⏳ Статус: В обработке\n"+
		"📅 Дата: %s</blockquote>\n\n"+
		"<blockquote>⏰ Обычно выплата занимает 1-24 часа</blockquote>\n\n"+
		"💎 Когда заявку одобрят, вы получите уведомление!",
		req.ID, req.Amount, req.CreatedAt.Format("2006-01-02 15:04")), BackKeyboard())
}

// AdminWithdrawalNotice is posted to the admin channel for every new request.
func AdminWithdrawalNotice(req models.WithdrawalRequest, u models.User) notify.Message {
	return msg(fmt.Sprintf("🆔 <b>Заявка на вывод #%d</b>\n\n"+
		"<blockquote>👤 Пользователь: %s\n"+
		"🆔 ID: <code>%d</code>\n"+
		"💰 Сумма: <b>%d ⭐ Stars</b>\n"+
		"📊 Баланс: %d | Рефералов: %d</blockquote>",
		req.ID, userLink(u), u.ID, req.Amount, u.Balance, u.ReferralsCount), AdminWithdrawalKeyboard(req.ID))
}

func WithdrawalDecided(req models.WithdrawalRequest) notify.Message {
	if req.Status == models.WithdrawalPaid {
		return msg(fmt.Sprintf("🎉 <b>Заявка #%d выплачена!</b>\n\n"+
			"<blockquote>💰 Сумма: <b>%d ⭐ Stars</b>\n"+
			"✅ Статус: Выплачено</blockquote>\n\n"+
			"💎 Спасибо за использование бота!",
			req.ID, req.Amount), MainMenuKeyboard())
	}
	return msg(fmt.Sprintf("❌ <b>Заявка #%d отклонена</b>\n\n"+
		"<blockquote>💰 Сумма: <b>%d ⭐ Stars</b>\n"+
		"📛 Статус: Отклонено\n"+
		"💎 Средства возвращены на ваш баланс\n"+
		"❓ Свяжитесь с администратором для уточнения</blockquote>",
		req.ID, req.Amount), MainMenuKeyboard())
}

// DecisionRecorded is posted to the admin channel after a decision.
func DecisionRecorded(req models.WithdrawalRequest, admin string) notify.Message {
	return msg(fmt.Sprintf("<b>%s Заявка #%d: %s</b>\n👤 Админ: %s",
		statusEmoji(req.Status), req.ID, statusText(req.Status), html.EscapeString(admin)), nil)
}

// DecisionEdit rewrites the admin notice after a decision and drops its
// buttons. original is the notice's plain text as Telegram returns it.
func DecisionEdit(original string, req models.WithdrawalRequest, admin string) notify.Message {
	return msg(fmt.Sprintf("%s\n\n<b>%s Статус обновлен: %s</b>\n👤 Админ: %s",
		html.EscapeString(original), statusEmoji(req.Status), statusText(req.Status), html.EscapeString(admin)), nil)
}

// DecisionAlert is shown to the admin on the pressed button.
func DecisionAlert(status models.WithdrawalStatus) string {
	return statusEmoji(status) + " " + statusText(status)
}

func statusEmoji(s models.WithdrawalStatus) string {
	switch s {
	case models.WithdrawalPending:
		return "⏳"
	case models.WithdrawalPaid:
		return "✅"
	case models.WithdrawalRejected:
		return "❌"
	}
	return "❓"
}

func statusText(s models.WithdrawalStatus) string {
	switch s {
	case models.WithdrawalPending:
		return "В обработке"
	case models.WithdrawalPaid:
		return "Выплачено"
	case models.WithdrawalRejected:
		return "Отклонено"
	}
	return "Неизвестно"
}

func MyWithdrawals(reqs []models.WithdrawalRequest) notify.Message {
	if len(reqs) == 0 {
		return msg("📭 <b>У вас нет заявок</b>", BackKeyboard())
	}
	var b strings.Builder
	b.WriteString("📋 <b>Мои заявки на вывод</b>\n\n")
	for _, r := range reqs {
		fmt.Fprintf(&b, "<blockquote>🆔 #%d | 💰 %d ⭐\n📅 %s | %s <b>%s</b></blockquote>\n",
			r.ID, r.Amount, r.CreatedAt.Format(dateLayout), statusEmoji(r.Status), statusText(r.Status))
	}
	return msg(b.String(), BackKeyboard())
}

func GiveawayCard(g models.Giveaway, stats models.GiveawayStats, winValue int) notify.Message {
	return msg(fmt.Sprintf("🎰 <b>АКТИВНЫЙ РОЗЫГРЫШ NFT!</b>\n\n"+
		"<blockquote>💎 <b>Приз:</b> <a href='%s'>NFT Подарок</a>\n"+
		"💰 <b>Ставка:</b> %d ⭐ Stars\n"+
		"👥 <b>Уникальных игроков:</b> %d\n"+
		"🎲 <b>Всего бросков:</b> %d\n"+
		"🎯 <b>Условия:</b> Выпадет <b>%d</b> = выигрыш!</blockquote>\n\n"+
		"<blockquote>🍀 Нажмите кнопку и отправьте анимированный эмодзи 🎰\n\n"+
		"<i>Попыток неограничено!</i></blockquote>",
		html.EscapeString(g.PrizeRef), g.BetAmount, stats.UniqueUsers, stats.TotalAttempts, winValue),
		GiveawayKeyboard(g.ID, g.BetAmount))
}

func NoGiveaway() notify.Message {
	return msg("🎰 <b>Сейчас нет активных розыгрышей</b>\n\n"+
		"<blockquote>Следите за уведомлениями, новый розыгрыш скоро!</blockquote>", BackKeyboard())
}

func AttemptStarted(g models.Giveaway, attemptNo int64, winValue int) notify.Message {
	return msg(fmt.Sprintf("🎰 <b>ПОПЫТКА #%d</b>\n\n"+
		"<blockquote>💎 Приз: <a href='%s'>NFT Подарок</a>\n"+
		"🎯 Цель: Выпадение <b>%d</b></blockquote>\n\n"+
		"<b>👉 Отправьте анимированный эмодзи</b> 🎰 <b>(Слот-машина)</b>",
		attemptNo, html.EscapeString(g.PrizeRef), winValue), BackKeyboard())
}

func DrawWon(value int) notify.Message {
	return msg(fmt.Sprintf("🎉 <b>ПОЗДРАВЛЯЕМ! ДЖЕКПОТ!</b>\n\n"+
		"<blockquote>🎰 Выпало: <b>%d</b>\nВы выиграли NFT!</blockquote>\n\n"+
		"Администратор свяжется с вами для передачи приза.", value), MainMenuKeyboard())
}

func DrawLost(value, winValue int) notify.Message {
	return msg(fmt.Sprintf("😔 <b>Не повезло...</b>\n\n"+
		"<blockquote>🎰 Выпало: <b>%d</b>\n\n"+
		"Нужно было <b>%d</b> для победы!</blockquote>", value, winValue), MainMenuKeyboard())
}

func DrawClosed(value int) notify.Message {
	return msg(fmt.Sprintf("⌛ <b>Розыгрыш уже завершен</b>\n\n"+
		"<blockquote>🎰 Выпало: <b>%d</b>, но приз уже разыгран.</blockquote>", value), MainMenuKeyboard())
}

func WrongDice(emoji string) notify.Message {
	return msg(fmt.Sprintf("❌ <b>Нужен именно эмодзи Слот-машины</b> 🎰!\n\n"+
		"Вы отправили: %s", html.EscapeString(emoji)), nil)
}

func NotDice() notify.Message {
	return msg("❌ <b>Отправьте анимированный эмодзи</b> 🎰 <b>(Слот-машина)</b>!", nil)
}

func AttemptExpired(attemptID uint) notify.Message {
	return msg(fmt.Sprintf("⌛ <b>Попытка #%d отменена</b>\n\n"+
		"<blockquote>Время ожидания броска истекло.</blockquote>", attemptID), MainMenuKeyboard())
}

func WinnerAdminNotice(g models.Giveaway, winner models.User, value int) notify.Message {
	return msg(fmt.Sprintf("🏆 <b>ПОБЕДИТЕЛЬ В РОЗЫГРЫШЕ NFT!</b>\n\n"+
		"<blockquote>👤 Победитель: %s\n"+
		"🆔 ID: <code>%d</code>\n"+
		"💎 Выпало: <b>%d</b>\n"+
		"🔗 NFT: <a href='%s'>Ссылка на приз</a>\n"+
		"🆔 ID розыгрыша: #%d</blockquote>\n\n"+
		"<b>Отправьте NFT победителю!</b>",
		userLink(winner), winner.ID, value, html.EscapeString(g.PrizeRef), g.ID), nil)
}

func WinnerAnnouncement(g models.Giveaway, winner models.User, value int) notify.Message {
	return msg(fmt.Sprintf("🎉 <b>ПОБЕДИТЕЛЬ ОПРЕДЕЛЕН!</b>\n\n"+
		"<blockquote>🏆 <b>%s</b> выиграл NFT!\n"+
		"🎰 Выпало: <b>%d</b>\n"+
		"💎 Приз: <a href='%s'>NFT Подарок</a></blockquote>\n\n"+
		"🍀 Нажмите '🎰 Получить NFT' в меню!",
		name(winner), value, html.EscapeString(g.PrizeRef)), MainMenuKeyboard())
}

func NewGiveawayAnnouncement(g models.Giveaway, winValue int) notify.Message {
	return msg(fmt.Sprintf("🎰 <b>НОВЫЙ РОЗЫГРЫШ NFT!</b>\n\n"+
		"<blockquote>💰 Ставка: %d Stars\n"+
		"🎯 Условие: Выпадение %d в слотах\n"+
		"🔗 <a href='%s'>Посмотреть приз</a></blockquote>\n\n"+
		"<b>🍀 Испытайте удачу!</b> Нажмите '🎰 Получить NFT' в меню!",
		g.BetAmount, winValue, html.EscapeString(g.PrizeRef)), MainMenuKeyboard())
}

func AdminPanel(adminName string) notify.Message {
	return msg(fmt.Sprintf("👑 <b>ПАНЕЛЬ АДМИНИСТРАТОРА</b>\n\n"+
		"Добро пожаловать, <b>%s</b>!\n\n"+
		"<blockquote>Выберите раздел:</blockquote>", html.EscapeString(adminName)), AdminMenuKeyboard())
}

func AdminStats(s models.AdminStats, current models.GiveawayStats, top []models.User) notify.Message {
	var b strings.Builder
	active := 0
	if s.ActiveGiveawayID != 0 {
		active = 1
	}
	fmt.Fprintf(&b, "📊 <b>ПОДРОБНАЯ СТАТИСТИКА БОТА</b>\n\n"+
		"<b>👥 Пользователи:</b>\n<blockquote>"+
		"├ Всего: <b>%d</b>\n├ Новых сегодня: <b>%d</b>\n└ Рефералов всего: <b>%d</b></blockquote>\n\n"+
		"<b>💸 Выводы Stars:</b>\n<blockquote>"+
		"├ Всего заявок: <b>%d</b>\n├ В обработке: <b>%d</b>\n├ Выплачено: <b>%d</b>\n"+
		"├ Отклонено: <b>%d</b>\n├ Всего выплачено: <b>%d</b> ⭐\n└ В ожидании: <b>%d</b> ⭐</blockquote>\n\n"+
		"<b>🎰 NFT Розыгрыши:</b>\n<blockquote>"+
		"├ Активных: <b>%d</b>\n├ Проведено: <b>%d</b>\n├ Всего создано: <b>%d</b>\n"+
		"└ Попыток в текущем: <b>%d</b></blockquote>\n\n"+
		"<b>🏆 Топ-5 рефереров:</b>\n<blockquote>",
		s.TotalUsers, s.NewUsersToday, s.TotalReferrals,
		s.PendingWithdrawals+s.PaidWithdrawals+s.RejectedWithdrawals, s.PendingWithdrawals, s.PaidWithdrawals,
		s.RejectedWithdrawals, s.PaidAmount, s.PendingAmount,
		active, s.GiveawaysWon, s.GiveawaysTotal, current.TotalAttempts)
	for i, u := range top {
		fmt.Fprintf(&b, "%d. %s — %d ref / %d ⭐\n", i+1, username(u), u.ReferralsCount, u.Balance)
	}
	b.WriteString("</blockquote>")
	return msg(b.String(), AdminBackKeyboard())
}

func AdminGiveaway(active *models.Giveaway, stats models.GiveawayStats) notify.Message {
	if active == nil {
		return msg("🎰 <b>УПРАВЛЕНИЕ РОЗЫГРЫШАМИ</b>\n\n"+
			"<blockquote>Сейчас нет активных розыгрышей.</blockquote>", AdminGiveawayKeyboard(false))
	}
	return msg(fmt.Sprintf("🎰 <b>УПРАВЛЕНИЕ РОЗЫГРЫШАМИ</b>\n\n"+
		"<b>🔥 Активен розыгрыш #%d</b>\n\n"+
		"<blockquote>💰 Ставка: %d Stars\n"+
		"💎 NFT: <a href='%s'>Ссылка на приз</a>\n"+
		"👥 Уникальных игроков: %d\n"+
		"🎲 Всего попыток: %d\n"+
		"📅 Создан: %s</blockquote>",
		active.ID, active.BetAmount, html.EscapeString(active.PrizeRef), stats.UniqueUsers, stats.TotalAttempts,
		active.CreatedAt.Format(dateLayout)), AdminGiveawayKeyboard(true))
}

// AdminHistory lists closed giveaways; winners maps winner ids to users.
func AdminHistory(list []models.Giveaway, winners map[int64]models.User) notify.Message {
	if len(list) == 0 {
		return msg("📜 <b>История розыгрышей</b>\n\n"+
			"<blockquote>Пока нет завершенных розыгрышей.</blockquote>", AdminBackKeyboard())
	}
	var b strings.Builder
	b.WriteString("📜 <b>ПОСЛЕДНИЕ ЗАВЕРШЕННЫЕ РОЗЫГРЫШИ</b>\n\n")
	for _, g := range list {
		winner := "Никто (завершен админом)"
		if g.WinnerID != nil {
			if u, ok := winners[*g.WinnerID]; ok {
				winner = name(u)
			} else {
				winner = fmt.Sprintf("ID:%d", *g.WinnerID)
			}
		}
		ended := "Неизвестно"
		if g.EndedAt != nil {
			ended = g.EndedAt.Format(dateLayout)
		}
		fmt.Fprintf(&b, "<blockquote><b>#%d</b>\n💰 Ставка: %d Stars\n🏆 Победитель: %s\n📅 %s</blockquote>\n\n",
			g.ID, g.BetAmount, winner, ended)
	}
	return msg(b.String(), AdminBackKeyboard())
}

func BetAmountPrompt() notify.Message {
	return msg("🎰 <b>СОЗДАНИЕ НОВОГО РОЗЫГРЫША</b>\n\n"+
		"<b>Шаг 1/2:</b> Введите сумму ставки (число Stars)\n\n<i>Пример: 50</i>", CancelKeyboard())
}

func PrizeRefPrompt(bet int64) notify.Message {
	return msg(fmt.Sprintf("🎰 <b>СОЗДАНИЕ НОВОГО РОЗЫГРЫША</b>\n\n"+
		"<b>Шаг 1:</b> ✅ Ставка: %d Stars\n"+
		"<b>Шаг 2/2:</b> Отправьте ссылку на NFT приз\n\n"+
		"<i>Пример: https://t.me/nft/mygift</i>", bet), CancelKeyboard())
}

func GiveawayCreated(g models.Giveaway, winValue int) notify.Message {
	return msg(fmt.Sprintf("✅ <b>Розыгрыш #%d создан!</b>\n\n"+
		"<blockquote>💰 Ставка: %d Stars\n"+
		"💎 NFT: <a href='%s'>Ссылка на приз</a>\n"+
		"🎰 Условие: Выпадение %d</blockquote>\n\n"+
		"Начинаю рассылку уведомлений...",
		g.ID, g.BetAmount, html.EscapeString(g.PrizeRef), winValue), AdminMenuKeyboard())
}

func GiveawayStopped(g models.Giveaway) notify.Message {
	return msg(fmt.Sprintf("✅ <b>Розыгрыш #%d завершен досрочно!</b>\n\n"+
		"<blockquote>Статистика сохранена в истории.</blockquote>", g.ID), AdminGiveawayKeyboard(false))
}

func CreateUsage() notify.Message {
	return msg("❌ <b>Неверный формат!</b>\n\n"+
		"<b>Использование:</b>\n<code>/create_nft [сумма_ставки] [ссылка_на_NFT]</code>\n\n"+
		"<b>Пример:</b>\n<code>/create_nft 50 https://t.me/nft/mygift</code>", nil)
}

func BroadcastUsage() notify.Message {
	return msg("📢 <b>МАССОВАЯ РАССЫЛКА</b>\n\n"+
		"<blockquote>Используйте команду:</blockquote>\n"+
		"<code>/broadcast Ваше сообщение</code>", AdminBackKeyboard())
}

func BroadcastStarted(recipients int) notify.Message {
	return msg(fmt.Sprintf("📢 Рассылка начата на <b>%d</b> пользователей.", recipients), AdminBackKeyboard())
}

// ErrorText turns a failed operation into a short alert for the user.
func ErrorText(err error) string {
	var short *models.ShortfallError
	hasShortfall := errors.As(err, &short)
	switch {
	case errors.Is(err, models.ErrInsufficientReferrals):
		if hasShortfall {
			return fmt.Sprintf("❌ Минимум %d рефералов!\nУ вас: %d", short.Need, short.Have)
		}
		return "❌ Недостаточно рефералов для вывода!"
	case errors.Is(err, models.ErrInsufficientBalance):
		if hasShortfall {
			return fmt.Sprintf("❌ Недостаточно Stars!\nНужно: %d | У вас: %d", short.Need, short.Have)
		}
		return "❌ Недостаточно Stars!"
	case errors.Is(err, models.ErrTooManyPending):
		return "❌ У вас уже есть максимум заявок в обработке. Дождитесь решения."
	case errors.Is(err, models.ErrAlreadyInProgress):
		return "⏳ Запрос уже обрабатывается!"
	case errors.Is(err, models.ErrAlreadyProcessed):
		return "❌ Уже обработано!"
	case errors.Is(err, models.ErrGiveawayClosed):
		return "❌ Этот розыгрыш уже завершен!"
	case errors.Is(err, models.ErrNotFound):
		return "❌ Не найдено!"
	case errors.Is(err, models.ErrValidation):
		return "❌ Неверные данные!"
	default:
		return "❌ Произошла ошибка, попробуйте позже."
	}
}

func Forbidden() string {
	return "❌ Доступ запрещен!"
}
