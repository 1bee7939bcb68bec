package domain

import "errors"

// ChargeStatus is the lifecycle state of a charge transaction.
type ChargeStatus string

const (
	StatusPending         ChargeStatus = "pending"
	StatusRequiresCapture ChargeStatus = "requires_capture"
	StatusSucceeded       ChargeStatus = "succeeded"
	StatusRefunded        ChargeStatus = "refunded"
	StatusFailed          ChargeStatus = "failed"
	StatusCanceled        ChargeStatus = "canceled"
)

var (
	ErrUnknownStatus        = errors.New("unknown_charge_status")
	ErrInvalidTransition    = errors.New("invalid_status_transition")
	ErrNotFound             = errors.New("charge_transaction_not_found")
	ErrOrderExists          = errors.New("order_already_exists")
	ErrConcurrentTransition = errors.New("concurrent_status_transition")
)

// transitions holds the closed set of allowed forward moves. Anything
// absent here is rejected at the mutation boundary.
var transitions = map[ChargeStatus][]ChargeStatus{
	StatusPending:         {StatusRequiresCapture, StatusSucceeded, StatusCanceled, StatusFailed},
	StatusRequiresCapture: {StatusSucceeded, StatusCanceled, StatusFailed},
	StatusSucceeded:       {StatusRefunded},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s ChargeStatus) CanTransitionTo(next ChargeStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s ChargeStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// ParseChargeStatus validates a raw status value.
func ParseChargeStatus(raw string) (ChargeStatus, error) {
	switch ChargeStatus(raw) {
	case StatusPending, StatusRequiresCapture, StatusSucceeded, StatusRefunded, StatusFailed, StatusCanceled:
		return ChargeStatus(raw), nil
	default:
		return "", ErrUnknownStatus
	}
}

// TransferStatus is the terminal state of a seller transfer attempt.
type TransferStatus string

const (
	TransferSucceeded TransferStatus = "succeeded"
	TransferFailed    TransferStatus = "failed"
	TransferReversed  TransferStatus = "reversed"
)
