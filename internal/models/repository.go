package models

import "errors"

// ErrNotFound is returned by lookups when no matching record exists.
var ErrNotFound = errors.New("record not found")

type Repository interface {
	CreateDeveloper(*Developer) error
	GetDeveloperByEmail(email string) (*Developer, error)
	GetDeveloperByAPIKey(apiKey string) (*Developer, error)
	GetDeveloperByTelegramUsername(username string) (*Developer, error)
	SetDeveloperTelegramChatID(username, chatID string) error

	// CreateSubscriberIfAbsent inserts the subscriber unless one already
	// exists for (email, developer_id). Reports whether a row was created.
	CreateSubscriberIfAbsent(*Subscriber) (bool, error)
	GetSubscriber(email string, developerID uint) (*Subscriber, error)
	ListSubscribers(developerID uint) ([]*Subscriber, error)

	Close() error
}
