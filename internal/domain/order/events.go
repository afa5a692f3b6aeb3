// internal/domain/order/events.go
package order

import "time"

// EventType names an order lifecycle event
type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderCancelled     EventType = "order.cancelled"
)

// Event is published after the change it describes has been committed
type Event struct {
	Type           EventType   `json:"type"`
	OrderID        uint        `json:"order_id"`
	OrderNumber    string      `json:"order_number"`
	UserID         uint        `json:"user_id"`
	Status         OrderStatus `json:"status"`
	PreviousStatus OrderStatus `json:"previous_status,omitempty"`
	GrandTotal     int64       `json:"grand_total"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

// EventPublisher receives order events. Publish must not block.
type EventPublisher interface {
	Publish(event Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

type multiPublisher []EventPublisher

func (m multiPublisher) Publish(event Event) {
	for _, p := range m {
		p.Publish(event)
	}
}

func newEvent(kind EventType, o *Order, previous OrderStatus) Event {
	return Event{
		Type:           kind,
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: previous,
		GrandTotal:     o.GrandTotal(),
		OccurredAt:     time.Now().UTC(),
	}
}
