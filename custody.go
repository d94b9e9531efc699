// Package custody submits transactions to a custodial wallet provider and
// waits for them to settle.
package custody

import (
	"context"
	"fmt"

	"github.com/vitwit/custody/clients"
	"github.com/vitwit/custody/logger"
	"github.com/vitwit/custody/metrics"
	"github.com/vitwit/custody/settlement"
	"github.com/vitwit/custody/transactions"
	"github.com/vitwit/custody/types"
	"github.com/vitwit/custody/utils"
)

// Custody is the main struct that wires the provider client, the request
// builders and the settlement service together.
type Custody struct {
	client     clients.Client
	defaults   transactions.Defaults
	settlement *settlement.SettlementService
	logger     logger.Logger
	metrics    metrics.Recorder
	policy     settlement.Policy
	waitOpts   []settlement.WaitOption
}

// New creates a Custody instance talking to client. The config supplies the
// builder defaults and the wait policy.
func New(client clients.Client, config *types.Config, opts ...Option) (*Custody, error) {
	if client == nil {
		return nil, &types.CustodyError{
			Code:    types.ErrConfigError,
			Message: "custody client is required",
		}
	}
	if config == nil {
		return nil, &types.CustodyError{
			Code:    types.ErrConfigError,
			Message: "custody config is required",
		}
	}

	c := &Custody{
		client:   client,
		defaults: transactions.DefaultsFromConfig(*config),
		logger:   logger.NoopLogger{},
		metrics:  metrics.NoopRecorder{},
		policy: settlement.Policy{
			MaxWait:  config.WaitMaxDuration,
			Interval: config.WaitPollInterval,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	waitOpts := append([]settlement.WaitOption{settlement.WithPolicy(c.policy)}, c.waitOpts...)
	c.settlement = settlement.NewSettlementService(client,
		settlement.WithLogger(c.logger),
		settlement.WithMetrics(c.metrics),
		settlement.WithWaitOptions(waitOpts...),
	)
	return c, nil
}

// NewFromConfig validates config and builds the provider client from it.
func NewFromConfig(config *types.Config, opts ...Option) (*Custody, error) {
	if config == nil {
		return nil, &types.CustodyError{
			Code:    types.ErrConfigError,
			Message: "custody config is required",
		}
	}
	if err := utils.ValidateConfig(config); err != nil {
		return nil, err
	}

	probe := &Custody{logger: logger.NoopLogger{}, metrics: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(probe)
	}

	client, err := clients.NewFireblocksClient(*config,
		clients.WithClientLogger(probe.logger),
		clients.WithClientMetrics(probe.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create custody client: %w", err)
	}
	return New(client, config, opts...)
}

// Client returns the provider client.
func (c *Custody) Client() clients.Client {
	return c.client
}

// Settlement returns the settlement service.
func (c *Custody) Settlement() *settlement.SettlementService {
	return c.settlement
}

// Defaults returns the builder defaults taken from the config.
func (c *Custody) Defaults() transactions.Defaults {
	return c.defaults
}

// TransactionStatus returns the provider's current status for id.
func (c *Custody) TransactionStatus(ctx context.Context, id string) (types.TransactionStatus, error) {
	return c.settlement.TransactionStatus(ctx, id)
}

// Transaction returns the provider's full record for id.
func (c *Custody) Transaction(ctx context.Context, id string) (*types.TransactionResponse, error) {
	return c.settlement.Transaction(ctx, id)
}

// Submit sends a prebuilt request.
func (c *Custody) Submit(ctx context.Context, req *types.TransactionRequest) (*types.CreateTransactionResponse, error) {
	return c.settlement.Submit(ctx, req)
}

// SendContractCall builds a contract-call request and submits it.
func (c *Custody) SendContractCall(
	ctx context.Context,
	params transactions.ContractCallParams,
) (*types.CreateTransactionResponse, error) {
	return c.settlement.Submit(ctx, transactions.NewContractCallRequest(c.defaults, params))
}

// WaitForCompletion waits for handle to complete. opts override the
// configured wait policy for this call only.
func (c *Custody) WaitForCompletion(
	ctx context.Context,
	handle *types.CreateTransactionResponse,
	opts ...settlement.WaitOption,
) (*types.SettlementResult, error) {
	return c.settlement.Wait(ctx, handle, opts...)
}

// WaitForAll waits for every handle independently.
func (c *Custody) WaitForAll(
	ctx context.Context,
	handles []*types.CreateTransactionResponse,
	opts ...settlement.WaitOption,
) ([]*types.SettlementResult, error) {
	return c.settlement.BatchWait(ctx, handles, opts...)
}

// Close closes the provider client.
func (c *Custody) Close() {
	c.settlement.Close()
}

// SendRawMessage builds a raw-message request around content and submits it.
// It is a function rather than a method because the content type is generic.
func SendRawMessage[T any](ctx context.Context, c *Custody, content T) (*types.CreateTransactionResponse, error) {
	req, err := transactions.NewRawRequest(c.defaults, content)
	if err != nil {
		return nil, err
	}
	return c.settlement.Submit(ctx, req)
}

// Version information
const Version = "1.0.0"
