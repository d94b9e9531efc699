package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitwit/custody/logger"
	"github.com/vitwit/custody/metrics"
	"github.com/vitwit/custody/retry"
	"github.com/vitwit/custody/types"
)

// Querier fetches a transaction record by id.
type Querier interface {
	GetTransactionByID(ctx context.Context, id string) (*types.TransactionResponse, error)
}

// Waiter polls a submitted transaction until it completes or the policy
// budget runs out. A Waiter holds no per-wait state and may serve any number
// of concurrent waits.
type Waiter struct {
	querier        Querier
	policy         Policy
	sleeper        Sleeper
	failFast       bool
	transientRetry bool
	logger         logger.Logger
	metrics        metrics.Recorder
}

type WaitOption func(*Waiter)

func WithPolicy(p Policy) WaitOption {
	return func(w *Waiter) {
		w.policy = p.withDefaults()
	}
}

// WithSleeper replaces the timer based sleep between polls.
func WithSleeper(s Sleeper) WaitOption {
	return func(w *Waiter) {
		if s != nil {
			w.sleeper = s
		}
	}
}

// WithFailFast stops the wait as soon as the provider reports a terminal
// failure status. Without it such statuses are waited on like any other
// non-completed status until the budget is exhausted.
func WithFailFast() WaitOption {
	return func(w *Waiter) {
		w.failFast = true
	}
}

// WithTransientRetry counts a transient status query error as a used attempt
// instead of aborting the wait.
func WithTransientRetry() WaitOption {
	return func(w *Waiter) {
		w.transientRetry = true
	}
}

func WithWaitLogger(l logger.Logger) WaitOption {
	return func(w *Waiter) {
		w.logger = logger.OrNoop(l)
	}
}

func WithWaitMetrics(r metrics.Recorder) WaitOption {
	return func(w *Waiter) {
		w.metrics = metrics.OrNoop(r)
	}
}

func NewWaiter(q Querier, opts ...WaitOption) *Waiter {
	w := &Waiter{
		querier: q,
		policy:  DefaultPolicy(),
		sleeper: timerSleeper{},
		logger:  logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Policy returns the effective wait policy.
func (w *Waiter) Policy() Policy {
	return w.policy
}

// Wait blocks until transaction id is COMPLETED and returns its settlement
// facts. Each attempt sleeps one interval and then queries the status.
func (w *Waiter) Wait(ctx context.Context, id string) (*types.SettlementResult, error) {
	if id == "" {
		return nil, &types.CustodyError{
			Code:    types.ErrInvalidPayload,
			Message: "transaction id is required",
		}
	}

	log := w.logger.With(map[string]any{"txId": id})
	start := time.Now()
	attempts := 0
	var lastStatus types.TransactionStatus

	for {
		if err := w.sleeper.Sleep(ctx, w.policy.Interval); err != nil {
			return nil, w.cancelled(log, id, attempts, err)
		}

		tx, err := w.querier.GetTransactionByID(ctx, id)
		attempts++

		switch {
		case err != nil && ctx.Err() != nil:
			return nil, w.cancelled(log, id, attempts, ctx.Err())

		case err != nil:
			w.metrics.IncCounter(metrics.EventPollFailed, nil)
			if !w.transientRetry || !retry.Classify(err).IsTransient() {
				log.Error("transaction status query failed", map[string]any{"attempt": attempts, "error": err})
				return nil, &types.CustodyError{
					Code:    types.ErrQueryFailed,
					Message: fmt.Sprintf("failed to query transaction %s", id),
					Err:     err,
				}
			}
			log.Warn("transient status query error", map[string]any{"attempt": attempts, "error": err})

		case tx.Status.IsCompleted():
			labels := map[string]string{"asset": tx.AssetID}
			w.metrics.IncCounter(metrics.EventPolled, labels)

			result, err := resultFromResponse(tx, attempts)
			if err != nil {
				log.Error("completed transaction has unusable settlement data", map[string]any{"error": err})
				return nil, err
			}

			w.metrics.IncCounter(metrics.EventCompleted, labels)
			w.metrics.ObserveLatency(metrics.OperationWait, time.Since(start), labels)
			log.Info("transaction completed", map[string]any{
				"attempt":   attempts,
				"txHash":    result.TxHash,
				"fee":       result.Fee.String(),
				"netAmount": result.NetAmount.String(),
			})
			return result, nil

		case w.failFast && tx.Status.IsFailure():
			w.metrics.IncCounter(metrics.EventFailed, map[string]string{"asset": tx.AssetID})
			log.Warn("transaction failed", map[string]any{"status": tx.Status, "subStatus": tx.SubStatus})
			return nil, &types.CustodyError{
				Code:    types.ErrTransactionFailed,
				Message: fmt.Sprintf("transaction %s ended with status %s", id, tx.Status),
				Data:    tx,
			}

		default:
			w.metrics.IncCounter(metrics.EventPolled, map[string]string{"asset": tx.AssetID})
			lastStatus = tx.Status
			log.Debug("transaction not completed yet", map[string]any{"attempt": attempts, "status": tx.Status})
		}

		if w.policy.Exhausted(attempts) {
			return nil, w.timedOut(log, id, attempts, lastStatus)
		}
	}
}

func (w *Waiter) timedOut(log logger.Logger, id string, attempts int, last types.TransactionStatus) error {
	w.metrics.IncCounter(metrics.EventWaitTimedOut, nil)
	log.Warn("transaction wait timed out", map[string]any{"attempts": attempts, "lastStatus": last})

	return &types.CustodyError{
		Code: types.ErrWaitTimeout,
		Message: fmt.Sprintf("transaction %s not completed after %d tries in %s seconds",
			id, attempts, formatSeconds(w.policy.MaxWait)),
		Data: types.TimeoutDetails{
			TransactionID: id,
			Attempts:      attempts,
			Elapsed:       w.policy.Elapsed(attempts),
			LastStatus:    last,
		},
	}
}

func (w *Waiter) cancelled(log logger.Logger, id string, attempts int, cause error) error {
	w.metrics.IncCounter(metrics.EventWaitCancelled, nil)
	log.Info("transaction wait cancelled", map[string]any{"attempts": attempts, "error": cause})

	if cause == nil {
		cause = errors.New("wait cancelled")
	}
	return &types.CustodyError{
		Code:    types.ErrWaitCancelled,
		Message: fmt.Sprintf("wait for transaction %s cancelled after %d tries", id, attempts),
		Err:     cause,
	}
}
