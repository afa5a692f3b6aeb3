// internal/domain/order/transitions.go
package order

var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {
		OrderStatusConfirmed,
		OrderStatusCancelled,
		OrderStatusReturned,
	},
	OrderStatusConfirmed: {
		OrderStatusPreparing,
		OrderStatusReturned,
	},
	OrderStatusPreparing: {
		OrderStatusShipped,
		OrderStatusReturned,
	},
	OrderStatusShipped: {
		OrderStatusDelivered,
		OrderStatusReturned,
	},
}

// CanTransition reports whether an order may move from one status to
// another. Terminal statuses have no exits.
func CanTransition(from, to OrderStatus) bool {
	for _, status := range validTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable from s
func NextStatuses(s OrderStatus) []OrderStatus {
	next := validTransitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}
