package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// ValidateAmount checks if an amount string is a valid non-negative decimal
func ValidateAmount(amount string) (decimal.Decimal, error) {
	if amount == "" {
		return decimal.Zero, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount cannot be negative")
	}

	return dec, nil
}

// ParseVaultID parses a numeric vault account id.
func ParseVaultID(id string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid vault id %q: %w", id, err)
	}
	return v, nil
}

// ValidateCallData checks that data is 0x-prefixed hex.
func ValidateCallData(data string) error {
	if _, err := hexutil.Decode(data); err != nil {
		return fmt.Errorf("invalid call data: %w", err)
	}
	return nil
}
