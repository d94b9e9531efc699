package metrics

import "time"

// Event and operation names recorded by the custody packages.
const (
	EventSubmitted      = "transaction_submitted"
	EventSubmitFailed   = "transaction_submit_failed"
	EventPolled         = "transaction_polled"
	EventPollFailed     = "transaction_poll_failed"
	EventCompleted      = "transaction_completed"
	EventFailed         = "transaction_failed"
	EventWaitTimedOut   = "wait_timed_out"
	EventWaitCancelled  = "wait_cancelled"
	OperationSubmit     = "submit"
	OperationWait       = "wait"
	OperationAPIRequest = "api_request"
)

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) IncCounter(string, map[string]string)                    {}
func (NoopRecorder) ObserveLatency(string, time.Duration, map[string]string) {}
