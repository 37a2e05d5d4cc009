package purchases

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/dealhaven/dealhaven-backend/pkg/db"
	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
)

// Repository defines persistence operations for materialized purchases.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error)
	ListByOrder(ctx context.Context, paymentOrderID uuid.UUID) ([]models.Purchase, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a purchases repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error) {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByOrder(ctx context.Context, paymentOrderID uuid.UUID) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Where("payment_order_id = ?", paymentOrderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IsDuplicate reports whether the insert failed on the per-order-per-deal
// unique constraint, meaning the item was already materialized.
func IsDuplicate(err error) bool {
	return dbpkg.IsUniqueViolation(err, "ux_purchases_order_deal")
}
