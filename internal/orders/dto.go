package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	"github.com/dealhaven/dealhaven-backend/pkg/enums"
)

// CreateOrderInput carries everything needed to convert a cart into a
// pending payment order.
type CreateOrderInput struct {
	UserID      uuid.UUID
	Provider    string
	Currency    enums.Currency
	Description string
	ResultURL   string
}

// OrderItemResponse is the line-item view returned to buyers.
type OrderItemResponse struct {
	DealID         uuid.UUID `json:"deal_id"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
}

// OrderResponse is the buyer-facing order view.
type OrderResponse struct {
	OrderNumber string                   `json:"order_number"`
	Provider    string                   `json:"provider"`
	Status      enums.PaymentOrderStatus `json:"status"`
	AmountCents int                      `json:"amount_cents"`
	Currency    enums.Currency           `json:"currency"`
	CheckoutURL string                   `json:"checkout_url,omitempty"`
	Items       []OrderItemResponse      `json:"items"`
	CreatedAt   time.Time                `json:"created_at"`
}

func toOrderResponse(order *models.PaymentOrder, checkoutURL string) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			DealID:         item.DealID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return &OrderResponse{
		OrderNumber: order.OrderNumber,
		Provider:    order.Provider,
		Status:      order.Status,
		AmountCents: order.AmountCents,
		Currency:    order.Currency,
		CheckoutURL: checkoutURL,
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}
}
