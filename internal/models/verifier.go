package models

import "context"

// VerificationRequest carries everything needed to verify one payment.
// Amount is in lamports, the ledger's smallest unit; callers agree on
// units out-of-band.
type VerificationRequest struct {
	TransactionSignature string
	RecipientWallet      string
	Amount               uint64
	UserEmail            string
	DeveloperAPIKey      string
	UserWallet           string
	PlanID               string
}

// VerificationResult is the terminal state of a successful verification.
type VerificationResult struct {
	Developer  *Developer
	Subscriber *Subscriber
	// AlreadyRecorded is true when the subscriber existed before this call.
	AlreadyRecorded bool
}

// PaymentVerifier runs the verify-then-record workflow for one request.
type PaymentVerifier interface {
	Verify(ctx context.Context, req *VerificationRequest) (*VerificationResult, error)
}

// NotificationService delivers payment notices to developers.
type NotificationService interface {
	PaymentVerified(developer *Developer, subscriber *Subscriber)
}
