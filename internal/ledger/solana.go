package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/solpay-io/solpay/internal/models"
	"github.com/solpay-io/solpay/pkg/logger"
)

const (
	// RequestTimeout bounds every individual RPC call.
	RequestTimeout = 10 * time.Second
)

// SolanaClient implements models.LedgerClient over Solana JSON-RPC.
type SolanaClient struct {
	logger *logger.Logger
	apiURL string
	client *rpc.Client
}

// NewSolanaClient creates a client against the given RPC endpoint.
func NewSolanaClient(apiURL string, logger *logger.Logger) *SolanaClient {
	return &SolanaClient{
		apiURL: apiURL,
		logger: logger,
		client: rpc.New(apiURL),
	}
}

// GetSignatureStatus fetches the confirmation state of a transaction.
// Returns nil when the node does not know the signature.
func (s *SolanaClient) GetSignatureStatus(ctx context.Context, signature string) (*models.SignatureStatus, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction signature: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	out, err := s.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		s.logger.Error("Failed to get signature status ", "url ", s.apiURL, " signature ", signature, " error ", err)
		return nil, fmt.Errorf("failed to get signature status: %w", err)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		// Unknown to the node; the transaction may still land.
		s.logger.Debug("Signature unknown to the node ", "signature ", signature)
		return nil, nil
	}

	status := out.Value[0]
	return &models.SignatureStatus{
		Slot:               status.Slot,
		Confirmations:      status.Confirmations,
		ConfirmationStatus: string(status.ConfirmationStatus),
		Failed:             status.Err != nil,
	}, nil
}

// GetTransaction fetches a finalized transaction and reduces it to the
// ordered account list plus the lamport credit each account received.
func (s *SolanaClient) GetTransaction(ctx context.Context, signature string) (*models.TransactionDetail, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction signature: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	maxVersion := uint64(0)
	out, err := s.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		s.logger.Error("Failed to get transaction ", "url ", s.apiURL, " signature ", signature, " error ", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if out == nil || out.Transaction == nil || out.Meta == nil {
		return nil, fmt.Errorf("transaction %s not available on the node", signature)
	}

	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		s.logger.Error("Failed to decode transaction ", "signature ", signature, " error ", err)
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	keys := make([]string, 0, len(tx.Message.AccountKeys))
	for _, key := range tx.Message.AccountKeys {
		keys = append(keys, key.String())
	}

	return &models.TransactionDetail{
		Signature:   signature,
		AccountKeys: keys,
		Credits:     deriveCredits(keys, out.Meta.PreBalances, out.Meta.PostBalances),
	}, nil
}

// deriveCredits computes the lamport increase per account from the
// transaction's pre/post balance arrays.
func deriveCredits(keys []string, pre, post []uint64) []models.Credit {
	var credits []models.Credit
	for i, key := range keys {
		if i >= len(pre) || i >= len(post) {
			break
		}
		if post[i] > pre[i] {
			credits = append(credits, models.Credit{
				Address:  key,
				Lamports: post[i] - pre[i],
			})
		}
	}
	return credits
}
