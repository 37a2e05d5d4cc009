package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealhaven/dealhaven-backend/pkg/enums"
)

// Deal is a limited-stock offer. StockQuantity and SoldQuantity move in
// lockstep on fulfillment and are only mutated through conditional updates.
type Deal struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Title         string         `gorm:"column:title;not null"`
	Description   *string        `gorm:"column:description"`
	PriceCents    int            `gorm:"column:price_cents;not null"`
	Currency      enums.Currency `gorm:"column:currency;type:text;not null;default:'USD'"`
	StockQuantity int            `gorm:"column:stock_quantity;not null;default:0"`
	SoldQuantity  int            `gorm:"column:sold_quantity;not null;default:0"`
	Active        bool           `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
