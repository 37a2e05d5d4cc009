package deals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
)

// Repository defines persistence operations for deals and their counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, deal *models.Deal) (*models.Deal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	List(ctx context.Context, activeOnly bool) ([]models.Deal, error)
	RecordSale(ctx context.Context, dealID uuid.UUID, quantity int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Deal, error) {
	var rows []models.Deal
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RecordSale moves quantity from stock to sold in one conditional UPDATE.
// The stock_quantity >= quantity predicate makes the decrement bounded:
// concurrent sales of the same deal cannot drive stock negative, and the
// returned boolean tells the caller whether this write won.
func (r *repository) RecordSale(ctx context.Context, dealID uuid.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	res := r.db.WithContext(ctx).Model(&models.Deal{}).
		Where("id = ? AND stock_quantity >= ?", dealID, quantity).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
			"sold_quantity":  gorm.Expr("sold_quantity + ?", quantity),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
