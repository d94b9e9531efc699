package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/vitwit/custody/types"
)

type queryStep struct {
	resp *types.TransactionResponse
	err  error
}

// scriptedClient answers status queries from a fixed script; the last step
// repeats once the script runs out.
type scriptedClient struct {
	mu        sync.Mutex
	steps     map[string][]queryStep
	queries   map[string]int
	created   []*types.TransactionRequest
	createErr error
	closed    bool
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{
		steps:   make(map[string][]queryStep),
		queries: make(map[string]int),
	}
}

func (c *scriptedClient) script(id string, steps ...queryStep) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps[id] = steps
}

func (c *scriptedClient) CreateTransaction(_ context.Context, req *types.TransactionRequest) (*types.CreateTransactionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.created = append(c.created, req)
	return &types.CreateTransactionResponse{ID: "tx-1", Status: types.StatusSubmitted}, nil
}

func (c *scriptedClient) GetTransactionByID(_ context.Context, id string) (*types.TransactionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	steps := c.steps[id]
	n := c.queries[id]
	c.queries[id]++
	if len(steps) == 0 {
		return &types.TransactionResponse{ID: id, Status: types.StatusPendingSignature}, nil
	}
	if n >= len(steps) {
		n = len(steps) - 1
	}
	step := steps[n]
	return step.resp, step.err
}

func (c *scriptedClient) Close() { c.closed = true }

func (c *scriptedClient) queryCount(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queries[id]
}

// recordingSleeper returns immediately and records every requested duration.
type recordingSleeper struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.slept = append(s.slept, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slept)
}

func pending(id string) queryStep {
	return queryStep{resp: &types.TransactionResponse{ID: id, Status: types.StatusPendingSignature}}
}

func status(id string, st types.TransactionStatus) queryStep {
	return queryStep{resp: &types.TransactionResponse{ID: id, Status: st}}
}

func completed(id, hash, fee, net string) queryStep {
	return queryStep{resp: &types.TransactionResponse{
		ID:        id,
		AssetID:   "ETH",
		Status:    types.StatusCompleted,
		TxHash:    hash,
		FeeInfo:   &types.FeeInfo{NetworkFee: fee},
		NetAmount: net,
	}}
}

func failure(err error) queryStep {
	return queryStep{err: err}
}
