// Package notify отправляет владельцу расписания сообщения о применённых изменениях.
package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// Notifier получатель уведомлений о бронированиях
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Nop ничего не отправляет
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

// TelegramNotifier шлёт уведомления в чат Telegram
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier создаёт уведомитель. bot.New проверяет токен через getMe.
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    b,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	if err != nil {
		n.logger.Error("Failed to send telegram notification",
			zap.Int64("chat_id", n.chatID),
			zap.Error(err),
		)
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// New выбирает уведомитель по конфигурации: без токена или чата - Nop
func New(token string, chatID int64, logger *zap.Logger) Notifier {
	if token == "" || chatID == 0 {
		logger.Info("Telegram notifications disabled")
		return Nop{}
	}

	n, err := NewTelegramNotifier(token, chatID, logger)
	if err != nil {
		logger.Warn("Telegram notifications unavailable, continuing without them", zap.Error(err))
		return Nop{}
	}

	logger.Info("✅ Telegram notifications enabled", zap.Int64("chat_id", chatID))
	return n
}
