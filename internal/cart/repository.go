package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
)

// Repository defines persistence operations for the buyer's cart.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Remove(ctx context.Context, userID, dealID uuid.UUID) error
	ClearByUser(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert inserts the staged item or replaces the quantity for an existing
// (user, deal) row.
func (r *repository) Upsert(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item is required")
	}
	if item.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "deal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(item).Error
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Remove(ctx context.Context, userID, dealID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND deal_id = ?", userID, dealID).
		Delete(&models.CartItem{}).Error
}

// ClearByUser removes every staged row for the buyer. Fulfillment calls this
// unconditionally once an order completes.
func (r *repository) ClearByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
