package types

// TransactionStatus is the provider-reported state of a transaction.
type TransactionStatus string

const (
	StatusSubmitted            TransactionStatus = "SUBMITTED"
	StatusQueued               TransactionStatus = "QUEUED"
	StatusPendingAuthorization TransactionStatus = "PENDING_AUTHORIZATION"
	StatusPendingSignature     TransactionStatus = "PENDING_SIGNATURE"
	StatusBroadcasting         TransactionStatus = "BROADCASTING"
	StatusPending3rdParty      TransactionStatus = "PENDING_3RD_PARTY"
	StatusConfirming           TransactionStatus = "CONFIRMING"
	StatusCompleted            TransactionStatus = "COMPLETED"
	StatusCancelling           TransactionStatus = "CANCELLING"
	StatusCancelled            TransactionStatus = "CANCELLED"
	StatusBlocked              TransactionStatus = "BLOCKED"
	StatusRejected             TransactionStatus = "REJECTED"
	StatusFailed               TransactionStatus = "FAILED"
	StatusTimeout              TransactionStatus = "TIMEOUT"
)

// IsCompleted reports whether the transaction reached terminal success.
func (s TransactionStatus) IsCompleted() bool {
	return s == StatusCompleted
}

// IsFailure reports whether the status is a terminal failure.
func (s TransactionStatus) IsFailure() bool {
	switch s {
	case StatusCancelled, StatusBlocked, StatusRejected, StatusFailed, StatusTimeout:
		return true
	}
	return false
}

// IsTerminal reports whether the provider will not move the transaction any further.
func (s TransactionStatus) IsTerminal() bool {
	return s.IsCompleted() || s.IsFailure()
}

func (s TransactionStatus) String() string {
	return string(s)
}
