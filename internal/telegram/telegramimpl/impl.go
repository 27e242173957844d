package telegramimpl

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/tint-feed/internal/telegram"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// Sender is the part of tgbotapi.BotAPI used for alerts.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramImpl struct {
	bot    Sender
	userID int64
	logger logger.Logger
}

func New(opts Opts) (*TelegramImpl, error) {
	log := opts.Logger.WithComponent("Telegram")

	if opts.Config.Telegram.Token == "" {
		log.Info("Telegram token not set, alerts disabled")
		return &TelegramImpl{logger: log}, nil
	}

	bot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		log.Error("Error creating bot", "error", err)
		return nil, err
	}

	return NewWithSender(bot, opts.Config.Telegram.User, log), nil
}

func NewWithSender(bot Sender, userID int64, log logger.Logger) *TelegramImpl {
	return &TelegramImpl{
		bot:    bot,
		userID: userID,
		logger: log,
	}
}

var _ telegram.Client = (*TelegramImpl)(nil)
