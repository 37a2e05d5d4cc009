package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealhaven/dealhaven-backend/pkg/enums"
)

// OrderCreatedEvent signals a pending payment order handed to a gateway.
type OrderCreatedEvent struct {
	PaymentOrderID   uuid.UUID `json:"payment_order_id"`
	OrderNumber      string    `json:"order_number"`
	UserID           uuid.UUID `json:"user_id"`
	Provider         string    `json:"provider"`
	GatewayReference string    `json:"gateway_reference"`
	AmountCents      int       `json:"amount_cents"`
	ItemCount        int       `json:"item_count"`
}

// PaymentStatusChangedEvent is emitted whenever a gateway notification moves
// an order to a terminal status.
type PaymentStatusChangedEvent struct {
	PaymentOrderID uuid.UUID                `json:"payment_order_id"`
	OrderNumber    string                   `json:"order_number"`
	UserID         uuid.UUID                `json:"user_id"`
	Provider       string                   `json:"provider"`
	Status         enums.PaymentOrderStatus `json:"status"`
	RawStatus      string                   `json:"raw_status,omitempty"`
	OccurredAt     time.Time                `json:"occurred_at"`
}

// OrderFulfilledEvent surfaces per-item results once fulfillment finishes.
type OrderFulfilledEvent struct {
	PaymentOrderID uuid.UUID `json:"payment_order_id"`
	OrderNumber    string    `json:"order_number"`
	UserID         uuid.UUID `json:"user_id"`
	PurchasedItems int       `json:"purchased_items"`
	FailedItems    int       `json:"failed_items"`
	CartCleared    bool      `json:"cart_cleared"`
}
