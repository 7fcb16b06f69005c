package payment

import (
	"fmt"

	"github.com/solpay-io/solpay/internal/models"
)

// ValidateTransfer checks a finalized transaction against the expected
// recipient and amount. Amounts compare in lamports, the ledger's smallest
// unit; no decimal conversion happens here.
func ValidateTransfer(tx *models.TransactionDetail, recipient string, lamports uint64) error {
	if tx == nil {
		return fmt.Errorf("transaction detail is nil")
	}

	var received uint64
	var seen bool
	for _, credit := range tx.Credits {
		if credit.Address == recipient {
			seen = true
			received = credit.Lamports
			break
		}
	}

	if !seen {
		return fmt.Errorf("transaction %s has no transfer to %s", tx.Signature, recipient)
	}
	if received != lamports {
		return fmt.Errorf("transfer amount mismatch: expected %d lamports, got %d", lamports, received)
	}
	return nil
}
