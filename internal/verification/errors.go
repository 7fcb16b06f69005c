package verification

import "errors"

// Terminal failure states of the verification workflow. Handlers map each
// to a distinct HTTP status.
var (
	// ErrMissingFields means a required request field is absent. No ledger
	// call is made.
	ErrMissingFields = errors.New("missing required fields")
	// ErrTimeout means the transaction never finalized within the polling
	// budget. Retryable by the client; the transaction may still finalize.
	ErrTimeout = errors.New("transaction not finalized within polling budget")
	// ErrSenderMismatch means the transaction's fee payer is not the
	// claimed user wallet.
	ErrSenderMismatch = errors.New("transaction sender does not match user wallet")
	// ErrValidationFailed means the transfer's recipient or amount does not
	// match the expectation.
	ErrValidationFailed = errors.New("transfer validation failed")
	// ErrDeveloperNotFound means the API key resolves to no developer. An
	// authorization failure, distinct from payment failures.
	ErrDeveloperNotFound = errors.New("developer not found for API key")
)
