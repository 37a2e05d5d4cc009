package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.PaymentOrder) (*models.PaymentOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByReference(ctx context.Context, gatewayReference string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("gateway_reference = ?", gatewayReference).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PaymentOrder, error) {
	var rows []models.PaymentOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ClaimCompletion moves the order into completed only when it is not already
// there. The UPDATE's row count, not a prior read, reports whether this
// caller won the transition, which is what gates fulfillment under duplicate
// delivery.
func (r *repository) ClaimCompletion(ctx context.Context, orderID uuid.UUID, payload types.JSONMap) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentOrder{}).
		Where("id = ? AND status <> ?", orderID, enums.PaymentOrderStatusCompleted).
		Updates(map[string]any{
			"status":           enums.PaymentOrderStatusCompleted,
			"payment_response": payload,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateStatusByReference persists the normalized status and raw payload
// unconditionally; redelivered notifications overwrite the audit trail.
func (r *repository) UpdateStatusByReference(ctx context.Context, gatewayReference string, status enums.PaymentOrderStatus, payload types.JSONMap) error {
	return r.db.WithContext(ctx).Model(&models.PaymentOrder{}).
		Where("gateway_reference = ?", gatewayReference).
		Updates(map[string]any{
			"status":           status,
			"payment_response": payload,
			"updated_at":       time.Now(),
		}).Error
}
