// Package transactions builds custody provider transaction requests from
// typed parameters. Builders are pure: they never touch the network and the
// same inputs always produce the same request.
package transactions

import (
	"reflect"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/vitwit/custody/types"
)

const contractCallNote = "Contract Call Transaction"

// Defaults holds the configured accounts that requests fall back to.
type Defaults struct {
	RawVaultID       string
	RawAssetID       string
	ContractWalletID string
}

// DefaultsFromConfig extracts builder defaults from a client config.
func DefaultsFromConfig(cfg types.Config) Defaults {
	return Defaults{
		RawVaultID:       cfg.RawVaultID,
		RawAssetID:       cfg.RawAssetID,
		ContractWalletID: cfg.ContractWalletID,
	}
}

// ContractCallParams are the caller supplied fields of a contract call.
// DestinationID may be left empty to use the configured contract wallet.
type ContractCallParams struct {
	Token         string
	DestinationID string
	SourceVaultID uint64
	Amount        decimal.Decimal
	CallData      string
}

// NewRawRequest wraps content as the single message of a RAW operation signed
// from the configured raw vault. Content is validated only by the provider.
func NewRawRequest[T any](d Defaults, content T) (*types.TransactionRequest, error) {
	if isAbsent(content) {
		return nil, &types.CustodyError{
			Code:    types.ErrInvalidPayload,
			Message: "raw message content is required",
		}
	}

	return &types.TransactionRequest{
		Operation: types.OperationRaw,
		AssetID:   d.RawAssetID,
		Source: types.TransferPeer{
			Type: types.PeerVaultAccount,
			ID:   d.RawVaultID,
		},
		ExtraParameters: &types.ExtraParameters{
			RawMessageData: &types.RawMessageData{
				Messages: []types.RawMessage{{Content: content}},
			},
		},
	}, nil
}

// NewContractCallRequest maps p onto a CONTRACT_CALL request. Amount and
// source vault id go on the wire as decimal strings; no bounds are checked.
func NewContractCallRequest(d Defaults, p ContractCallParams) *types.TransactionRequest {
	destination := p.DestinationID
	if destination == "" {
		destination = d.ContractWalletID
	}

	return &types.TransactionRequest{
		Operation: types.OperationContractCall,
		AssetID:   p.Token,
		Source: types.TransferPeer{
			Type: types.PeerVaultAccount,
			ID:   strconv.FormatUint(p.SourceVaultID, 10),
		},
		Destination: &types.TransferPeer{
			Type: types.PeerExternalWallet,
			ID:   destination,
		},
		Note:   contractCallNote,
		Amount: p.Amount.String(),
		ExtraParameters: &types.ExtraParameters{
			ContractCallData: p.CallData,
		},
	}
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	case reflect.String:
		return rv.Len() == 0
	}
	return false
}
