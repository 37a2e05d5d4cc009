package liqpaywebhook

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

const ProviderName = "liqpay"

// Provider maps LiqPay callback payloads onto the internal order vocabulary.
// LiqPay correlates on the payment_id it assigned at order creation and
// reports status as a lowercase word.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) Reference(payload types.JSONMap) string {
	return strings.TrimSpace(payload.Stringify("payment_id"))
}

func (p *Provider) Normalize(payload types.JSONMap) (enums.PaymentOrderStatus, string) {
	raw := payload.String("status")
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success":
		return enums.PaymentOrderStatusCompleted, raw
	case "failed":
		return enums.PaymentOrderStatusFailed, raw
	case "cancelled":
		return enums.PaymentOrderStatusCancelled, raw
	default:
		return enums.PaymentOrderStatusPending, raw
	}
}

func (p *Provider) Amount(payload types.JSONMap) (decimal.Decimal, bool) {
	raw := payload.Stringify("amount")
	if raw == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
