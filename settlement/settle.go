package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vitwit/custody/clients"
	"github.com/vitwit/custody/logger"
	"github.com/vitwit/custody/metrics"
	"github.com/vitwit/custody/types"
)

// defaultBatchConcurrency bounds the number of waits BatchWait runs at once.
const defaultBatchConcurrency = 8

// Settler interface defines the contract for transaction settlement
type Settler interface {
	Submit(ctx context.Context, req *types.TransactionRequest) (*types.CreateTransactionResponse, error)
	Wait(ctx context.Context, handle *types.CreateTransactionResponse, opts ...WaitOption) (*types.SettlementResult, error)
}

var _ Settler = (*SettlementService)(nil)

// SettlementService submits transactions to the custody provider and waits
// for them to settle.
type SettlementService struct {
	client           clients.Client
	waitOpts         []WaitOption
	batchConcurrency int
	logger           logger.Logger
	metrics          metrics.Recorder
}

type ServiceOption func(*SettlementService)

// WithWaitOptions sets the options every wait of the service starts from.
func WithWaitOptions(opts ...WaitOption) ServiceOption {
	return func(s *SettlementService) {
		s.waitOpts = append(s.waitOpts, opts...)
	}
}

func WithBatchConcurrency(n int) ServiceOption {
	return func(s *SettlementService) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

func WithLogger(l logger.Logger) ServiceOption {
	return func(s *SettlementService) {
		s.logger = logger.OrNoop(l)
	}
}

func WithMetrics(r metrics.Recorder) ServiceOption {
	return func(s *SettlementService) {
		s.metrics = metrics.OrNoop(r)
	}
}

// NewSettlementService creates a new settlement service
func NewSettlementService(client clients.Client, opts ...ServiceOption) *SettlementService {
	s := &SettlementService{
		client:           client,
		batchConcurrency: defaultBatchConcurrency,
		logger:           logger.NoopLogger{},
		metrics:          metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends req to the provider exactly once. Provider and transport
// errors are returned unchanged.
func (s *SettlementService) Submit(
	ctx context.Context,
	req *types.TransactionRequest,
) (*types.CreateTransactionResponse, error) {
	if req == nil {
		return nil, &types.CustodyError{
			Code:    types.ErrInvalidPayload,
			Message: "transaction request is nil",
		}
	}

	labels := map[string]string{"asset": req.AssetID}
	start := time.Now()
	handle, err := s.client.CreateTransaction(ctx, req)
	s.metrics.ObserveLatency(metrics.OperationSubmit, time.Since(start), labels)
	if err != nil {
		s.metrics.IncCounter(metrics.EventSubmitFailed, labels)
		s.logger.Error("transaction submission failed", map[string]any{
			"operation": req.Operation,
			"asset":     req.AssetID,
			"error":     err,
		})
		return nil, err
	}

	s.metrics.IncCounter(metrics.EventSubmitted, labels)
	s.logger.Info("transaction submitted", map[string]any{
		"txId":      handle.ID,
		"status":    handle.Status,
		"operation": req.Operation,
		"asset":     req.AssetID,
	})
	return handle, nil
}

// Waiter returns a waiter built from the service defaults plus opts.
func (s *SettlementService) Waiter(opts ...WaitOption) *Waiter {
	all := make([]WaitOption, 0, len(s.waitOpts)+len(opts)+2)
	all = append(all, WithWaitLogger(s.logger), WithWaitMetrics(s.metrics))
	all = append(all, s.waitOpts...)
	all = append(all, opts...)
	return NewWaiter(s.client, all...)
}

// Wait polls handle until it completes, the budget is exhausted or ctx ends.
func (s *SettlementService) Wait(
	ctx context.Context,
	handle *types.CreateTransactionResponse,
	opts ...WaitOption,
) (*types.SettlementResult, error) {
	if handle == nil {
		return nil, &types.CustodyError{
			Code:    types.ErrInvalidPayload,
			Message: "transaction handle is nil",
		}
	}
	return s.Waiter(opts...).Wait(ctx, handle.ID)
}

// SubmitAndWait submits req and waits for it to settle.
func (s *SettlementService) SubmitAndWait(
	ctx context.Context,
	req *types.TransactionRequest,
	opts ...WaitOption,
) (*types.CreateTransactionResponse, *types.SettlementResult, error) {
	handle, err := s.Submit(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.Wait(ctx, handle, opts...)
	return handle, result, err
}

// BatchWait waits on every handle concurrently. Waits are independent: one
// failing does not stop the others. results[i] belongs to handles[i] and is
// nil when that wait failed; the returned error joins all failures.
func (s *SettlementService) BatchWait(
	ctx context.Context,
	handles []*types.CreateTransactionResponse,
	opts ...WaitOption,
) ([]*types.SettlementResult, error) {
	results := make([]*types.SettlementResult, len(handles))
	errs := make([]error, len(handles))
	waiter := s.Waiter(opts...)

	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)

	for i, handle := range handles {
		g.Go(func() error {
			if handle == nil {
				errs[i] = fmt.Errorf("handle %d: %w", i, &types.CustodyError{
					Code:    types.ErrInvalidPayload,
					Message: "transaction handle is nil",
				})
				return nil
			}
			result, err := waiter.Wait(ctx, handle.ID)
			if err != nil {
				errs[i] = fmt.Errorf("handle %d (%s): %w", i, handle.ID, err)
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// TransactionStatus returns the provider's current status for id.
func (s *SettlementService) TransactionStatus(ctx context.Context, id string) (types.TransactionStatus, error) {
	tx, err := s.client.GetTransactionByID(ctx, id)
	if err != nil {
		return "", err
	}
	return tx.Status, nil
}

// Transaction returns the provider's full record for id.
func (s *SettlementService) Transaction(ctx context.Context, id string) (*types.TransactionResponse, error) {
	return s.client.GetTransactionByID(ctx, id)
}

// Close closes the underlying client
func (s *SettlementService) Close() {
	s.client.Close()
}
