package order

// Aggregate joins an order with its current sub-order set into a View,
// computing the derived fields the list surface reads. It is pure: identical
// inputs always produce an identical view.
func Aggregate(o Order, subs []SubOrder) View {
	view := View{
		Order:     o,
		SubOrders: subs,
		ItemCount: len(subs),
	}

	for _, sub := range subs {
		view.TotalQuantity += sub.Quantity

		if sub.DeliveryAt == nil {
			continue
		}
		if view.EarliestDelivery == nil || sub.DeliveryAt.Before(*view.EarliestDelivery) {
			d := *sub.DeliveryAt
			view.EarliestDelivery = &d
		}
	}

	return view
}

// AllSubOrdersCompleted is the completion-gate predicate: an order may reach
// COMPLETED only while this holds.
func AllSubOrdersCompleted(subs []SubOrder) bool {
	for _, sub := range subs {
		if sub.Status != SubStatusCompleted {
			return false
		}
	}
	return true
}
