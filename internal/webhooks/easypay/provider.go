package easypaywebhook

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

const ProviderName = "easypay"

// Provider maps EasyPay callback payloads onto the internal order vocabulary.
// EasyPay correlates on its transaction_id and reports state as a
// single-letter code: F finished, C cancelled, E errored.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) Reference(payload types.JSONMap) string {
	return strings.TrimSpace(payload.Stringify("transaction_id"))
}

func (p *Provider) Normalize(payload types.JSONMap) (enums.PaymentOrderStatus, string) {
	raw := payload.String("state")
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "F":
		return enums.PaymentOrderStatusCompleted, raw
	case "C":
		return enums.PaymentOrderStatusCancelled, raw
	case "E":
		return enums.PaymentOrderStatusFailed, raw
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
