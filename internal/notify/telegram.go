package notify

import (
	"context"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// TelegramSender delivers messages through the Bot API as HTML.
type TelegramSender struct {
	bot *telego.Bot
}

func NewTelegramSender(bot *telego.Bot) *TelegramSender {
	return &TelegramSender{bot: bot}
}

func (s *TelegramSender) Send(ctx context.Context, chatID int64, msg Message) error {
	params := tu.Message(tu.ID(chatID), msg.Text).
		WithParseMode(telego.ModeHTML).
		WithLinkPreviewOptions(&telego.LinkPreviewOptions{IsDisabled: true})
	if markup := Keyboard(msg.Buttons); markup != nil {
		params = params.WithReplyMarkup(markup)
	}
	_, err := s.bot.SendMessage(ctx, params)
	return err
}

func (s *TelegramSender) Edit(ctx context.Context, chatID int64, messageID int, msg Message) error {
	params := tu.EditMessageText(tu.ID(chatID), messageID, msg.Text).
		WithParseMode(telego.ModeHTML).
		WithLinkPreviewOptions(&telego.LinkPreviewOptions{IsDisabled: true})
	if markup := Keyboard(msg.Buttons); markup != nil {
		params = params.WithReplyMarkup(markup)
	}
	_, err := s.bot.EditMessageText(ctx, params)
	return err
}

// Keyboard converts button rows into an inline keyboard, or nil when there
// are none.
func Keyboard(rows [][]Button) *telego.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	keyboard := make([][]telego.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			button := tu.InlineKeyboardButton(b.Text)
			if b.URL != "" {
				button = button.WithURL(b.URL)
			} else {
				button = button.WithCallbackData(b.Data)
			}
			buttons = append(buttons, button)
		}
		keyboard = append(keyboard, tu.InlineKeyboardRow(buttons...))
	}
	return tu.InlineKeyboard(keyboard...)
}
