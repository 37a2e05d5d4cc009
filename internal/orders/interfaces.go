package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

// Repository defines persistence operations for payment orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.PaymentOrder) (*models.PaymentOrder, error)
	FindByReference(ctx context.Context, gatewayReference string) (*models.PaymentOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.PaymentOrder, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PaymentOrder, error)
	ClaimCompletion(ctx context.Context, orderID uuid.UUID, payload types.JSONMap) (bool, error)
	UpdateStatusByReference(ctx context.Context, gatewayReference string, status enums.PaymentOrderStatus, payload types.JSONMap) error
}
