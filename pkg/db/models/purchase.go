package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealhaven/dealhaven-backend/pkg/enums"
)

// Purchase is the materialized record created when an order item is
// fulfilled. The (payment_order_id, deal_id) pair is unique so redelivered
// notifications cannot double-materialize an item.
type Purchase struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	PaymentOrderID     uuid.UUID            `gorm:"column:payment_order_id;type:uuid;not null;uniqueIndex:ux_purchases_order_deal"`
	UserID             uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	DealID             uuid.UUID            `gorm:"column:deal_id;type:uuid;not null;uniqueIndex:ux_purchases_order_deal"`
	Quantity           int                  `gorm:"column:quantity;not null"`
	PurchasePriceCents int                  `gorm:"column:purchase_price_cents;not null"`
	Status             enums.PurchaseStatus `gorm:"column:status;type:purchase_status;not null;default:'confirmed'"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
