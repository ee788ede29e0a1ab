package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

const telegramQueueSize = 32

// -----------------------------------------------------------------------------

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink forwards error notices to a chat. Sending happens on its own
// goroutine; when the queue is full the notice is dropped.
type TelegramSink struct {
	bot     telegramSender
	chatID  int64
	enabled bool
	queue   chan string
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

// NewTelegramSink connects the bot. A disabled config or a failed login
// yields a sink that drops everything.
func NewTelegramSink(cfg models.MTelegramConfig, log *logger.Logger) *TelegramSink {
	if !cfg.Enabled {
		return &TelegramSink{enabled: false, Logger: log}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Error("Failed to create telegram bot: %v", err)
		return &TelegramSink{enabled: false, Logger: log}
	}
	log.Info("Telegram bot connected as %s", bot.Self.UserName)

	return newTelegramSink(bot, cfg.ChatID, log)
}

func newTelegramSink(bot telegramSender, chatID int64, log *logger.Logger) *TelegramSink {
	return &TelegramSink{
		bot:     bot,
		chatID:  chatID,
		enabled: true,
		queue:   make(chan string, telegramQueueSize),
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (s *TelegramSink) Deliver(n models.MNotification) {
	if !s.enabled || n.Severity != models.SeverityError {
		return
	}

	text := fmt.Sprintf("⚠️ *Dashboard error*\n%s", n.Message)
	select {
	case s.queue <- text:
	default:
		s.Logger.Warning("Telegram queue full, dropping notice")
	}
}

// -----------------------------------------------------------------------------

// Run sends queued notices until ctx is done.
func (s *TelegramSink) Run(ctx context.Context) {
	if !s.enabled {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-s.queue:
			msg := tgbotapi.NewMessage(s.chatID, text)
			msg.ParseMode = tgbotapi.ModeMarkdown
			if _, err := s.bot.Send(msg); err != nil {
				s.Logger.Error("Send telegram message: %v", err)
			}
		}
	}
}
