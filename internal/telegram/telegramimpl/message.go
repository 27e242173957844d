package telegramimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/tint-feed/pkg/formatter"
)

// SendMessageToUser sends a MarkdownV2 text message to the configured user
func (tg *TelegramImpl) SendMessageToUser(message string) error {
	if tg.bot == nil || tg.userID == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(tg.userID, message)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := tg.bot.Send(msg); err != nil {
		tg.logger.Error("Error sending message to user",
			"userID", tg.userID,
			"error", err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	tg.logger.Info("Message sent to user", "userID", tg.userID)
	return nil
}

func (tg *TelegramImpl) Alert(title, detail string) {
	text := "*" + formatter.EscapeMarkdownV2(title) + "*"
	if detail != "" {
		text += "\n" + formatter.EscapeMarkdownV2(detail)
	}
	_ = tg.SendMessageToUser(text)
}
