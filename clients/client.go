package clients

import (
	"context"

	"github.com/vitwit/custody/types"
)

// Client is the request/response boundary to the custody provider.
type Client interface {
	CreateTransaction(ctx context.Context, req *types.TransactionRequest) (*types.CreateTransactionResponse, error)
	GetTransactionByID(ctx context.Context, id string) (*types.TransactionResponse, error)
	Close()
}
