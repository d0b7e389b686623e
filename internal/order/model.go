package order

import (
	"time"
)

type OrderStatus string

const (
	StatusPendingConfirmation OrderStatus = "PENDING_CONFIRMATION"
	StatusPending             OrderStatus = "PENDING"
	StatusInProgress          OrderStatus = "IN_PROGRESS"
	StatusCompleted           OrderStatus = "COMPLETED"
	StatusCancelled           OrderStatus = "CANCELLED"
)

// SubOrderStatus is narrower than OrderStatus: line items have no
// confirmation state.
type SubOrderStatus string

const (
	SubStatusPending    SubOrderStatus = "PENDING"
	SubStatusInProgress SubOrderStatus = "IN_PROGRESS"
	SubStatusCompleted  SubOrderStatus = "COMPLETED"
	SubStatusCancelled  SubOrderStatus = "CANCELLED"
)

type Role string

const (
	RoleClient Role = "client"
	RoleTeam   Role = "team"
	RoleAdmin  Role = "admin"
)

// Actor is the resolved identity performing a command.
type Actor struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleTeam || a.Role == RoleAdmin
}

// ClientInfo is the client contact snapshot captured at order creation.
// It is not live-linked to any user record.
type ClientInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

type Order struct {
	ID                string      `json:"id"`
	CreatedBy         string      `json:"created_by"`
	CreatedByName     string      `json:"created_by_name"`
	CreatedByEmail    string      `json:"created_by_email"`
	DisplayName       *string     `json:"display_name,omitempty"`
	Client            ClientInfo  `json:"client"`
	Status            OrderStatus `json:"status"`
	ConfirmedByClient bool        `json:"confirmed_by_client"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type SubOrder struct {
	ID            string         `json:"id"`
	OrderID       string         `json:"order_id"`
	ProductType   string         `json:"product_type"`
	ProductLabel  string         `json:"product_label"`
	Quantity      int            `json:"quantity"`
	Dimensions    *string        `json:"dimensions,omitempty"`
	Description   string         `json:"description"`
	DesignFileURL *string        `json:"design_file_url,omitempty"`
	DeliveryAt    *time.Time     `json:"delivery_at,omitempty"`
	Notes         string         `json:"notes"`
	Status        SubOrderStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// SystemAuthor is the sentinel author name for system-generated trail entries.
const SystemAuthor = "system"

type Attachment struct {
	URL       string `json:"url"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
}

// Update is one append-only entry in an order's audit/chat trail.
// Entries are immutable once created and ordered by CreatedAt ascending.
type Update struct {
	ID         string      `json:"id"`
	OrderID    string      `json:"order_id"`
	AuthorID   string      `json:"author_id"`
	AuthorName string      `json:"author_name"`
	Text       string      `json:"text"`
	IsSystem   bool        `json:"is_system"`
	Attachment *Attachment `json:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// View is the aggregated, read-only projection of an order joined with
// its sub-order set.
type View struct {
	Order
	SubOrders        []SubOrder `json:"sub_orders"`
	ItemCount        int        `json:"item_count"`
	TotalQuantity    int        `json:"total_quantity"`
	EarliestDelivery *time.Time `json:"earliest_delivery,omitempty"`
	Degraded         bool       `json:"degraded"`
}
