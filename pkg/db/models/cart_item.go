package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem stages a deal a buyer intends to check out. Fulfillment clears
// all rows for the buyer once their order completes.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_cart_items_user_deal"`
	DealID    uuid.UUID `gorm:"column:deal_id;type:uuid;not null;uniqueIndex:ux_cart_items_user_deal"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
