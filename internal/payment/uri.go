package payment

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/solpay-io/solpay/pkg/validation"
)

// URIBuilder constructs Solana Pay deep-links for a fixed network tag.
type URIBuilder struct {
	network string
}

func NewURIBuilder(network string) *URIBuilder {
	return &URIBuilder{network: network}
}

// Build constructs a payment deep-link for the given recipient and amount.
// The amount is a decimal SOL value as wallets expect it. Pure function,
// no side effects.
func (b *URIBuilder) Build(recipient, amount string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	amount = strings.TrimSpace(amount)

	if recipient == "" {
		return "", fmt.Errorf("recipient wallet is required")
	}
	if amount == "" {
		return "", fmt.Errorf("amount is required")
	}

	value, err := strconv.ParseFloat(amount, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return "", fmt.Errorf("amount must be numeric, got %q", amount)
	}
	if value <= 0 {
		return "", fmt.Errorf("amount must be greater than zero, got %s", amount)
	}

	if err := validation.ValidateAddress(recipient); err != nil {
		return "", fmt.Errorf("invalid recipient wallet: %w", err)
	}

	uri := fmt.Sprintf("solana:%s?amount=%s", recipient, url.QueryEscape(amount))
	if b.network != "" {
		uri += "&network=" + url.QueryEscape(b.network)
	}
	return uri, nil
}
