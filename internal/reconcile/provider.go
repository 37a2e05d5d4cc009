package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

// Provider abstracts the per-gateway notification vocabulary so one
// reconciler serves every gateway. Implementations are pure: no side
// effects, no failure modes.
type Provider interface {
	// Name is the lowercase provider tag stored on payment orders.
	Name() string
	// Reference extracts the correlation identifier, or "" when absent.
	Reference(payload types.JSONMap) string
	// Normalize maps the provider status vocabulary onto the internal enum.
	// Unrecognized values map to pending, a lossy but safe default.
	Normalize(payload types.JSONMap) (status enums.PaymentOrderStatus, raw string)
	// Amount reports the notification's monetary amount in major units when
	// the payload carries one.
	Amount(payload types.JSONMap) (decimal.Decimal, bool)
}
