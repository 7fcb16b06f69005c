package models

// Subscriber represents a verified paying user recorded under a developer.
type Subscriber struct {
	// ID is the unique identifier for the subscriber.
	ID uint `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Email is the user's email. Unique together with DeveloperID.
	Email string `json:"email" gorm:"column:email;not null;uniqueIndex:idx_subscriber_email_developer"`
	// WalletAddress is the wallet the payment was sent from.
	WalletAddress string `json:"walletAddress" gorm:"column:wallet_address;not null"`
	// PlanID is the plan the user paid for.
	PlanID string `json:"planId" gorm:"column:plan_id;not null"`
	// TransactionSignature is the on-chain transaction that paid for the plan.
	TransactionSignature string `json:"transactionSignature" gorm:"column:transaction_signature;not null"`
	// DeveloperID is the owning developer.
	DeveloperID uint `json:"developerId" gorm:"column:developer_id;not null;index;uniqueIndex:idx_subscriber_email_developer"`
	// Developer association; removing a developer removes its subscribers.
	Developer *Developer `json:"-" gorm:"foreignKey:DeveloperID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}
