package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/solpay-io/solpay/internal/metrics"
	"github.com/solpay-io/solpay/internal/models"
	"github.com/solpay-io/solpay/internal/payment"
	"github.com/solpay-io/solpay/pkg/logger"
)

// Workflow runs the payment verification state machine: poll the ledger
// until the transaction finalizes, validate the transfer, resolve the
// developer tenant and idempotently record the subscriber. Stateless and
// re-entrant; each request runs independently.
type Workflow struct {
	logger *logger.Logger

	repo        models.Repository
	ledger      models.LedgerClient
	notificator models.NotificationService
	policy      RetryPolicy
}

// NewWorkflow creates a verification workflow. notificator may be nil.
func NewWorkflow(
	repo models.Repository,
	ledger models.LedgerClient,
	notificator models.NotificationService,
	logger *logger.Logger,
	policy RetryPolicy,
) models.PaymentVerifier {
	return &Workflow{
		repo:        repo,
		ledger:      ledger,
		notificator: notificator,
		logger:      logger,
		policy:      policy,
	}
}

// Verify executes the workflow for one request.
func (w *Workflow) Verify(ctx context.Context, req *models.VerificationRequest) (*models.VerificationResult, error) {
	if err := checkRequest(req); err != nil {
		metrics.VerificationsTotal.WithLabelValues("missing_fields").Inc()
		return nil, err
	}

	status, err := w.awaitFinalization(ctx, req.TransactionSignature)
	if err != nil {
		return nil, err
	}
	if status.Failed {
		metrics.VerificationsTotal.WithLabelValues("validation_failed").Inc()
		w.logger.Warn("Transaction finalized with an on-chain error ", "signature ", req.TransactionSignature)
		return nil, fmt.Errorf("%w: transaction failed on chain", ErrValidationFailed)
	}

	tx, err := w.ledger.GetTransaction(ctx, req.TransactionSignature)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("upstream_error").Inc()
		w.logger.Error("Failed to fetch finalized transaction ", "signature ", req.TransactionSignature, " error ", err)
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	// The fee payer is the first account key; it must be the claimed sender.
	if len(tx.AccountKeys) == 0 || tx.AccountKeys[0] != req.UserWallet {
		metrics.VerificationsTotal.WithLabelValues("sender_mismatch").Inc()
		w.logger.Warn("Sender mismatch ", "signature ", req.TransactionSignature, " claimed ", req.UserWallet)
		return nil, ErrSenderMismatch
	}

	if err := payment.ValidateTransfer(tx, req.RecipientWallet, req.Amount); err != nil {
		metrics.VerificationsTotal.WithLabelValues("validation_failed").Inc()
		w.logger.Warn("Transfer validation failed ", "signature ", req.TransactionSignature, " error ", err)
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	developer, err := w.repo.GetDeveloperByAPIKey(req.DeveloperAPIKey)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			metrics.VerificationsTotal.WithLabelValues("developer_not_found").Inc()
			return nil, ErrDeveloperNotFound
		}
		metrics.VerificationsTotal.WithLabelValues("storage_error").Inc()
		return nil, fmt.Errorf("failed to resolve developer: %w", err)
	}

	return w.record(ctx, req, developer)
}

// awaitFinalization polls the signature status within the retry budget and
// returns the finalized status.
func (w *Workflow) awaitFinalization(ctx context.Context, signature string) (*models.SignatureStatus, error) {
	for attempt := 1; attempt <= w.policy.MaxAttempts; attempt++ {
		status, err := w.ledger.GetSignatureStatus(ctx, signature)
		if err != nil {
			// Transient RPC failures are retry-eligible within the budget.
			w.logger.Warn("Signature status poll failed ", "signature ", signature, " attempt ", attempt, " error ", err)
		} else if status.Finalized() {
			metrics.PollAttempts.Observe(float64(attempt))
			w.logger.Debug("Transaction finalized ", "signature ", signature, " attempts ", attempt)
			return status, nil
		}

		if attempt == w.policy.MaxAttempts {
			break
		}
		if err := w.policy.Wait(ctx); err != nil {
			metrics.VerificationsTotal.WithLabelValues("cancelled").Inc()
			return nil, fmt.Errorf("verification cancelled: %w", err)
		}
	}

	metrics.PollAttempts.Observe(float64(w.policy.MaxAttempts))
	metrics.VerificationsTotal.WithLabelValues("timeout").Inc()
	return nil, ErrTimeout
}

// record performs the idempotent subscriber write.
func (w *Workflow) record(_ context.Context, req *models.VerificationRequest, developer *models.Developer) (*models.VerificationResult, error) {
	existing, err := w.repo.GetSubscriber(req.UserEmail, developer.ID)
	if err == nil && existing != nil {
		metrics.VerificationsTotal.WithLabelValues("already_recorded").Inc()
		w.logger.Info("Subscriber already recorded ", "email ", req.UserEmail, " developer ", developer.ID)
		return &models.VerificationResult{
			Developer:       developer,
			Subscriber:      existing,
			AlreadyRecorded: true,
		}, nil
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		metrics.VerificationsTotal.WithLabelValues("storage_error").Inc()
		return nil, fmt.Errorf("failed to look up subscriber: %w", err)
	}

	subscriber := &models.Subscriber{
		Email:                req.UserEmail,
		WalletAddress:        req.UserWallet,
		PlanID:               req.PlanID,
		TransactionSignature: req.TransactionSignature,
		DeveloperID:          developer.ID,
	}

	// Conditional insert: a concurrent verification for the same
	// (email, developer) loses the race harmlessly.
	created, err := w.repo.CreateSubscriberIfAbsent(subscriber)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("storage_error").Inc()
		return nil, fmt.Errorf("failed to record subscriber: %w", err)
	}
	if !created {
		subscriber, err = w.repo.GetSubscriber(req.UserEmail, developer.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load existing subscriber: %w", err)
		}
		metrics.VerificationsTotal.WithLabelValues("already_recorded").Inc()
		return &models.VerificationResult{
			Developer:       developer,
			Subscriber:      subscriber,
			AlreadyRecorded: true,
		}, nil
	}

	metrics.VerificationsTotal.WithLabelValues("recorded").Inc()
	w.logger.Info("Payment verified and subscriber recorded ",
		"email ", req.UserEmail, " developer ", developer.ID, " signature ", req.TransactionSignature)

	if w.notificator != nil {
		go w.notificator.PaymentVerified(developer, subscriber)
	}

	return &models.VerificationResult{
		Developer:  developer,
		Subscriber: subscriber,
	}, nil
}

// checkRequest fails fast when any of the six required fields is absent.
func checkRequest(req *models.VerificationRequest) error {
	if req == nil {
		return ErrMissingFields
	}
	missing := req.TransactionSignature == "" ||
		req.RecipientWallet == "" ||
		req.Amount == 0 ||
		req.UserEmail == "" ||
		req.DeveloperAPIKey == "" ||
		req.UserWallet == "" ||
		req.PlanID == ""
	if missing {
		return ErrMissingFields
	}
	return nil
}
