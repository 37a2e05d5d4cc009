package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

// PaymentOrder tracks a buyer's checkout against a payment gateway. The
// gateway assigns GatewayReference at payment creation; every later
// notification joins back to the order through it.
type PaymentOrder struct {
	ID               uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	GatewayReference string                   `gorm:"column:gateway_reference;uniqueIndex:ux_payment_orders_gateway_reference;not null"`
	OrderNumber      string                   `gorm:"column:order_number;uniqueIndex:ux_payment_orders_order_number;not null"`
	UserID           uuid.UUID                `gorm:"column:user_id;type:uuid;not null"`
	Provider         string                   `gorm:"column:provider;not null"`
	AmountCents      int                      `gorm:"column:amount_cents;not null"`
	Currency         enums.Currency           `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status           enums.PaymentOrderStatus `gorm:"column:status;type:payment_order_status;not null;default:'pending'"`
	PaymentResponse  types.JSONMap            `gorm:"column:payment_response;type:jsonb"`
	Items            []PaymentOrderItem       `gorm:"foreignKey:PaymentOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                `gorm:"column:updated_at"`
}
