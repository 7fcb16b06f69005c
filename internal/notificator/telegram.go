package notificator

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/solpay-io/solpay/internal/models"
	"github.com/solpay-io/solpay/pkg/logger"
)

type TelegramNotificator struct {
	logger *logger.Logger
	bot    *bot.Bot

	db models.Repository
}

func NewTelegramNotificator(logger *logger.Logger, token string, db models.Repository) (*TelegramNotificator, error) {
	provider := &TelegramNotificator{
		logger: logger,
		db:     db,
	}
	opts := []bot.Option{
		bot.WithDefaultHandler(provider.handler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	go b.Start(context.Background())
	provider.bot = b

	return provider, nil
}

func (t *TelegramNotificator) SendNotification(chatID, message string) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   message,
	}
	_, err := t.bot.SendMessage(context.Background(), params)
	if err != nil {
		t.logger.Error("Failed to send notification: ", err)
	}
}

// handler binds the developer's chat ID when they message /start, so
// payment notices can reach them afterwards.
func (t *TelegramNotificator) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	user := update.Message.From
	t.logger.Debug("Telegram update: ", user.Username, " ", update.Message.Text)

	if update.Message.Text == "/start" {
		developer, err := t.db.GetDeveloperByTelegramUsername(user.Username)
		if err != nil {
			t.logger.Error("Failed to get developer by telegram username: ", err, " username: ", user.Username)
			return
		}
		if err := t.db.SetDeveloperTelegramChatID(user.Username, fmt.Sprint(update.Message.Chat.ID)); err != nil {
			t.logger.Error("Failed to set developer telegram chat ID: ", err)
			return
		}
		t.logger.Info("Telegram chat bound for developer: ", developer.Email)
		t.SendNotification(fmt.Sprint(update.Message.Chat.ID),
			"You will now receive payment notifications for "+developer.CompanyName)
	}
}
