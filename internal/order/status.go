package order

import "fmt"

// orderNext is the transition table for the generic status-setter.
// PENDING_CONFIRMATION is never a target: it is reachable only at creation,
// and is left only through the dedicated confirm action.
var orderNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPendingConfirmation: {},
	StatusPending:             {StatusInProgress: true, StatusCompleted: true, StatusCancelled: true},
	StatusInProgress:          {StatusPending: true, StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:           {StatusPending: true, StatusInProgress: true, StatusCancelled: true},
	StatusCancelled:           {StatusPending: true, StatusInProgress: true, StatusCompleted: true},
}

var subOrderNext = map[SubOrderStatus]map[SubOrderStatus]bool{
	SubStatusPending:    {SubStatusInProgress: true, SubStatusCompleted: true, SubStatusCancelled: true},
	SubStatusInProgress: {SubStatusPending: true, SubStatusCompleted: true, SubStatusCancelled: true},
	SubStatusCompleted:  {SubStatusPending: true, SubStatusInProgress: true, SubStatusCancelled: true},
	SubStatusCancelled:  {SubStatusPending: true, SubStatusInProgress: true, SubStatusCompleted: true},
}

func ValidOrderStatus(s OrderStatus) bool {
	_, ok := orderNext[s]
	return ok
}

func ValidSubOrderStatus(s SubOrderStatus) bool {
	_, ok := subOrderNext[s]
	return ok
}

// ValidateOrderTransition decides whether the generic status-setter may move
// an order from current to requested, given the acting role and the order's
// current sub-order set.
func ValidateOrderTransition(current, requested OrderStatus, role Role, subs []SubOrder) error {
	if role != RoleTeam && role != RoleAdmin {
		return fmt.Errorf("%w: role %q may not change order status", ErrForbidden, role)
	}
	if requested == StatusPendingConfirmation {
		return fmt.Errorf("%w: %s is only reachable at creation", ErrInvalidTransition, StatusPendingConfirmation)
	}
	if !ValidOrderStatus(requested) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, requested)
	}
	if requested == current {
		return fmt.Errorf("%w: order is already %s", ErrRedundantStatus, current)
	}
	if !orderNext[current][requested] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, requested)
	}
	if requested == StatusCompleted {
		for _, sub := range subs {
			if sub.Status != SubStatusCompleted {
				return fmt.Errorf("%w: sub-order %s is still %s", ErrSubOrdersIncomplete, sub.ID, sub.Status)
			}
		}
	}
	return nil
}

// ValidateSubOrderTransition applies the same no-op rule to line items.
// Sub-orders carry no cross-entity gate.
func ValidateSubOrderTransition(current, requested SubOrderStatus, role Role) error {
	if role != RoleTeam && role != RoleAdmin {
		return fmt.Errorf("%w: role %q may not change sub-order status", ErrForbidden, role)
	}
	if !ValidSubOrderStatus(requested) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, requested)
	}
	if requested == current {
		return fmt.Errorf("%w: sub-order is already %s", ErrRedundantStatus, current)
	}
	if !subOrderNext[current][requested] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, requested)
	}
	return nil
}

// ValidateConfirm gates the one-time client confirmation:
// PENDING_CONFIRMATION -> PENDING, settable exactly once.
func ValidateConfirm(o *Order, actor Actor) error {
	if !actor.IsStaff() && o.CreatedBy != actor.ID {
		return fmt.Errorf("%w: cannot confirm another client's order", ErrForbidden)
	}
	if o.ConfirmedByClient {
		return ErrAlreadyConfirmed
	}
	if o.Status != StatusPendingConfirmation {
		return fmt.Errorf("%w: order is %s", ErrNotAwaitingConfirmation, o.Status)
	}
	return nil
}
