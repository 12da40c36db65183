package entities

import "errors"

type Status string

// Status values are the literal strings the storefront displays; they are
// stored as-is.
const (
	StatusProcessing      Status = "Processing"
	StatusTransferred     Status = "Transferred to delivery partner"
	StatusDelivered       Status = "Delivered"
	StatusRefundRequested Status = "Refund Requested"
	StatusRefundSuccess   Status = "Refund Success"
)

var ErrInvalidStatus = errors.New("invalid order status")
var ErrInvalidTransition = errors.New("invalid status transition")

// validNext encodes the fulfillment path and the refund path. Terminal states
// have no successors, so re-applying a transition is rejected and its side
// effects cannot fire twice.
var validNext = map[Status]map[Status]bool{
	StatusProcessing:      {StatusTransferred: true, StatusRefundRequested: true},
	StatusTransferred:     {StatusDelivered: true, StatusRefundRequested: true},
	StatusDelivered:       {StatusRefundRequested: true},
	StatusRefundRequested: {StatusRefundSuccess: true},
	StatusRefundSuccess:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := validNext[status]; !ok {
		return "", ErrInvalidStatus
	}
	return status, nil
}
