package types

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PeerType identifies the kind of account on either side of a transaction.
type PeerType string

const (
	PeerVaultAccount   PeerType = "VAULT_ACCOUNT"
	PeerExternalWallet PeerType = "EXTERNAL_WALLET"
	PeerInternalWallet PeerType = "INTERNAL_WALLET"
	PeerOneTimeAddress PeerType = "ONE_TIME_ADDRESS"
)

// TransactionOperation is the provider's transaction type.
type TransactionOperation string

const (
	OperationTransfer     TransactionOperation = "TRANSFER"
	OperationRaw          TransactionOperation = "RAW"
	OperationContractCall TransactionOperation = "CONTRACT_CALL"
	OperationTypedMessage TransactionOperation = "TYPED_MESSAGE"
)

// TransferPeer is the source or destination of a transaction.
type TransferPeer struct {
	Type PeerType `json:"type"`
	ID   string   `json:"id,omitempty"`
}

// RawMessage is a single message to be signed by the custody provider.
// Content is opaque here and only validated remotely.
type RawMessage struct {
	Content any `json:"content"`
}

// RawMessageData wraps the messages of a RAW operation.
type RawMessageData struct {
	Messages []RawMessage `json:"messages"`
}

// ExtraParameters carries operation specific fields.
type ExtraParameters struct {
	RawMessageData   *RawMessageData `json:"rawMessageData,omitempty"`
	ContractCallData string          `json:"contractCallData,omitempty"`
}

// TransactionRequest is the body sent to create a transaction. It is either a
// raw-message request or a contract-call request, depending on Operation.
type TransactionRequest struct {
	Operation       TransactionOperation `json:"operation"`
	AssetID         string               `json:"assetId"`
	Source          TransferPeer         `json:"source"`
	Destination     *TransferPeer        `json:"destination,omitempty"`
	Amount          string               `json:"amount,omitempty"`
	Note            string               `json:"note,omitempty"`
	ExtraParameters *ExtraParameters     `json:"extraParameters,omitempty"`
}

// IsRaw reports whether the request is a raw-message request.
func (r *TransactionRequest) IsRaw() bool {
	return r.Operation == OperationRaw
}

// IsContractCall reports whether the request is a contract-call request.
func (r *TransactionRequest) IsContractCall() bool {
	return r.Operation == OperationContractCall
}

// CreateTransactionResponse is returned on submission. ID is the handle used
// for every subsequent status query.
type CreateTransactionResponse struct {
	ID     string            `json:"id"`
	Status TransactionStatus `json:"status"`
}

// FeeInfo holds the provider's fee breakdown. Values are decimal strings.
type FeeInfo struct {
	NetworkFee string `json:"networkFee,omitempty"`
	ServiceFee string `json:"serviceFee,omitempty"`
	GasPrice   string `json:"gasPrice,omitempty"`
}

// TransactionResponse is the full transaction record returned by the provider.
type TransactionResponse struct {
	ID          string               `json:"id"`
	AssetID     string               `json:"assetId,omitempty"`
	Operation   TransactionOperation `json:"operation,omitempty"`
	Status      TransactionStatus    `json:"status"`
	SubStatus   string               `json:"subStatus,omitempty"`
	TxHash      string               `json:"txHash,omitempty"`
	Source      *TransferPeer        `json:"source,omitempty"`
	Destination *TransferPeer        `json:"destination,omitempty"`
	Amount      string               `json:"amount,omitempty"`
	NetAmount   string               `json:"netAmount,omitempty"`
	FeeInfo     *FeeInfo             `json:"feeInfo,omitempty"`
	Note        string               `json:"note,omitempty"`
	CreatedAt   int64                `json:"createdAt,omitempty"`
	LastUpdated int64                `json:"lastUpdated,omitempty"`
}

// SettlementResult contains the facts of a completed transaction.
type SettlementResult struct {
	TransactionID string          `json:"transactionId"`
	TxHash        string          `json:"txHash"`
	Fee           decimal.Decimal `json:"fee"`
	NetAmount     decimal.Decimal `json:"netAmount"`
	Attempts      int             `json:"attempts"`
}

// Config contains everything needed to talk to the custody provider.
type Config struct {
	APISecret        string        `json:"apiSecret" validate:"required"`
	APIKey           string        `json:"apiKey" validate:"required"`
	BaseURL          string        `json:"baseUrl" validate:"required,url"`
	RawVaultID       string        `json:"rawVaultId" validate:"required"`
	RawAssetID       string        `json:"rawAssetId" validate:"required"`
	ContractWalletID string        `json:"contractWalletId,omitempty"`
	RequestTimeout   time.Duration `json:"requestTimeout,omitempty"`
	RateLimitRPS     float64       `json:"rateLimitRps,omitempty" validate:"gte=0"`
	WaitMaxDuration  time.Duration `json:"waitMaxDuration,omitempty" validate:"gte=0"`
	WaitPollInterval time.Duration `json:"waitPollInterval,omitempty" validate:"gte=0"`
	LogLevel         string        `json:"logLevel,omitempty" validate:"omitempty,oneof=debug info warn error"`
	EnableMetrics    bool          `json:"enableMetrics,omitempty"`
}

// Error types
type CustodyError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Err     error       `json:"-"`
}

func (e *CustodyError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CustodyError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrInvalidPayload    = "INVALID_PAYLOAD"
	ErrConfigError       = "CONFIG_ERROR"
	ErrQueryFailed       = "QUERY_FAILED"
	ErrWaitTimeout       = "WAIT_TIMEOUT"
	ErrWaitCancelled     = "WAIT_CANCELLED"
	ErrTransactionFailed = "TRANSACTION_FAILED"
	ErrInvalidResponse   = "INVALID_RESPONSE"
	ErrNetworkError      = "NETWORK_ERROR"
)

// HasCode reports whether err carries a CustodyError with the given code.
func HasCode(err error, code string) bool {
	var ce *CustodyError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// TimeoutDetails is attached as Data to WAIT_TIMEOUT errors.
type TimeoutDetails struct {
	TransactionID string            `json:"transactionId"`
	Attempts      int               `json:"attempts"`
	Elapsed       time.Duration     `json:"elapsed"`
	LastStatus    TransactionStatus `json:"lastStatus,omitempty"`
}
