package models

// Developer represents a tenant that integrates payment verification.
type Developer struct {
	// ID is the unique identifier for the developer.
	ID uint `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Email is the developer's login email.
	Email string `json:"email" gorm:"column:email;unique;not null"`
	// CompanyName is the company the developer registered with.
	CompanyName string `json:"companyName" gorm:"column:company_name;not null"`
	// PasswordHash is the bcrypt hash of the developer's password. Never serialized.
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	// APIKey is the opaque bearer credential that scopes subscriber records.
	// Minted once at registration; there is no rotation.
	APIKey string `json:"apiKey" gorm:"column:api_key;uniqueIndex;not null"`
	// TelegramUsername is the optional Telegram handle for payment notices.
	TelegramUsername string `json:"telegram_username,omitempty" gorm:"column:telegram_username;index"`
	// TelegramChatID is bound by the bot when the developer sends /start.
	TelegramChatID string `json:"-" gorm:"column:telegram_chat_id"`
	// CreatedAt is the Unix timestamp of registration.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}
