package models

import "context"

// ConfirmationFinalized is the strongest confirmation level on Solana,
// beyond which reorganization is not expected.
const ConfirmationFinalized = "finalized"

// SignatureStatus is the confirmation state of a submitted transaction.
type SignatureStatus struct {
	// Slot is the slot the transaction was processed in.
	Slot uint64 `json:"slot"`
	// Confirmations is nil once the transaction is rooted.
	Confirmations *uint64 `json:"confirmations"`
	// ConfirmationStatus is processed, confirmed or finalized.
	ConfirmationStatus string `json:"confirmation_status"`
	// Failed indicates the transaction errored on chain.
	Failed bool `json:"failed"`
}

// Finalized reports whether the transaction reached the finalized level.
func (s *SignatureStatus) Finalized() bool {
	return s != nil && s.ConfirmationStatus == ConfirmationFinalized
}

// Credit is a lamport amount received by an account within a transaction.
type Credit struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
}

// TransactionDetail is a finalized transaction reduced to what the
// verification workflow needs.
type TransactionDetail struct {
	Signature string `json:"signature"`
	// AccountKeys is the ordered account list; the fee payer (sender) is first.
	AccountKeys []string `json:"account_keys"`
	// Credits are the per-account lamport increases derived from the
	// transaction's pre/post balances.
	Credits []Credit `json:"credits"`
}

// LedgerClient is the RPC capability the verification workflow consumes.
// Both calls may fail transiently; the workflow treats failures as
// retry-eligible within its polling budget.
type LedgerClient interface {
	// GetSignatureStatus returns nil when the node does not know the signature.
	GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error)
	GetTransaction(ctx context.Context, signature string) (*TransactionDetail, error)
}
