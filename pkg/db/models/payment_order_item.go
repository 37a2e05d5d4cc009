package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentOrderItem captures the snapshot of a deal line within a payment
// order. Items are immutable after order creation.
type PaymentOrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PaymentOrderID uuid.UUID `gorm:"column:payment_order_id;type:uuid;not null"`
	DealID         uuid.UUID `gorm:"column:deal_id;type:uuid;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
