package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vitwit/custody/types"
)

// resultFromResponse extracts the settlement facts of a completed transaction.
func resultFromResponse(tx *types.TransactionResponse, attempts int) (*types.SettlementResult, error) {
	if !tx.Status.IsCompleted() {
		return nil, &types.CustodyError{
			Code:    types.ErrInvalidResponse,
			Message: fmt.Sprintf("transaction %s is %s, not completed", tx.ID, tx.Status),
		}
	}

	var networkFee string
	if tx.FeeInfo != nil {
		networkFee = tx.FeeInfo.NetworkFee
	}

	fee, err := parseDecimal("feeInfo.networkFee", networkFee)
	if err != nil {
		return nil, err
	}
	netAmount, err := parseDecimal("netAmount", tx.NetAmount)
	if err != nil {
		return nil, err
	}

	return &types.SettlementResult{
		TransactionID: tx.ID,
		TxHash:        tx.TxHash,
		Fee:           fee,
		NetAmount:     netAmount,
		Attempts:      attempts,
	}, nil
}

// parseDecimal treats a missing value as zero.
func parseDecimal(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &types.CustodyError{
			Code:    types.ErrInvalidResponse,
			Message: fmt.Sprintf("invalid %s %q", field, s),
			Err:     err,
		}
	}
	return d, nil
}
