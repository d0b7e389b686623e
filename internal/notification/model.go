package notification

import "time"

type Type string

const (
	TypeOrderCreated   Type = "ORDER_CREATED"
	TypeOrderConfirmed Type = "ORDER_CONFIRMED"
)

// Notification is a fire-and-forget record targeted at one user. It is
// created here and consumed/mutated only by the notification-reading side.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	OrderID   string    `json:"order_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
