package validation

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

const (
	// Base58-encoded 32-byte public keys land in this length range.
	MinAddressLength = 32
	MaxAddressLength = 44
)

// base58Alphabet is the Bitcoin base58 alphabet Solana addresses use.
// Note the absence of 0, O, I and l.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ValidateAddress validates a Solana wallet address.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if len(addr) < MinAddressLength || len(addr) > MaxAddressLength {
		return fmt.Errorf("invalid address length: expected %d-%d characters, got %d",
			MinAddressLength, MaxAddressLength, len(addr))
	}

	for _, r := range addr {
		if !strings.ContainsRune(base58Alphabet, r) {
			return fmt.Errorf("invalid address character: %q is not in the base58 alphabet", r)
		}
	}

	// Must decode to a 32-byte public key.
	if _, err := solana.PublicKeyFromBase58(addr); err != nil {
		return fmt.Errorf("invalid base58 address: %w", err)
	}

	return nil
}

// ValidateSignature validates a base58 transaction signature.
func ValidateSignature(sig string) error {
	if sig == "" {
		return fmt.Errorf("signature cannot be empty")
	}
	if _, err := solana.SignatureFromBase58(sig); err != nil {
		return fmt.Errorf("invalid transaction signature: %w", err)
	}
	return nil
}
