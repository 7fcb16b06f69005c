package notificator

import (
	"fmt"
	"runtime/debug"

	"github.com/solpay-io/solpay/internal/models"
	"github.com/solpay-io/solpay/pkg/logger"
)

// Notificator delivers payment-confirmed notices to developers. Delivery is
// best effort and never affects the verification result.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator *TelegramNotificator
	EmailNotificator    *EmailNotificator
}

func NewNotificator(logger *logger.Logger, telNotif *TelegramNotificator, emailNotif *EmailNotificator) *Notificator {
	return &Notificator{logger: logger, TelegramNotificator: telNotif, EmailNotificator: emailNotif}
}

// safeCall runs a function with panic recovery
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// PaymentVerified notifies the owning developer that a payment was verified
// and a subscriber recorded.
func (n *Notificator) PaymentVerified(developer *models.Developer, subscriber *models.Subscriber) {
	if developer == nil || subscriber == nil {
		return
	}

	message := fmt.Sprintf("Payment verified: %s subscribed to plan %s (tx %s)",
		subscriber.Email, subscriber.PlanID, subscriber.TransactionSignature)

	if n.TelegramNotificator != nil && developer.TelegramChatID != "" {
		chatID := developer.TelegramChatID
		n.safeCall(func() { n.TelegramNotificator.SendNotification(chatID, message) }, "telegramNotification")
	}
	if n.EmailNotificator != nil && developer.Email != "" {
		email := developer.Email
		n.safeCall(func() { n.EmailNotificator.SendNotification(email, message) }, "emailNotification")
	}
}
