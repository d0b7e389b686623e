package order

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrSubOrderNotFound = errors.New("sub-order not found")
	ErrUpdateNotFound   = errors.New("update not found")

	ErrForbidden = errors.New("forbidden")

	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrRedundantStatus         = errors.New("status unchanged")
	ErrSubOrdersIncomplete     = errors.New("sub-orders not completed")
	ErrAlreadyConfirmed        = errors.New("order already confirmed")
	ErrNotAwaitingConfirmation = errors.New("order is not awaiting confirmation")

	ErrEmptyUpdate = errors.New("update requires text or an attachment")
	ErrNoItems     = errors.New("order requires at least one line item")
	ErrBadQuantity = errors.New("quantity must be greater than zero")
)
