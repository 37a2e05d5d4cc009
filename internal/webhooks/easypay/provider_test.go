package easypaywebhook

import (
	"testing"

	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

func TestNormalizeStatusMapping(t *testing.T) {
	t.Parallel()

	provider := NewProvider()
	cases := []struct {
		raw  string
		want enums.PaymentOrderStatus
	}{
		{"F", enums.PaymentOrderStatusCompleted},
		{"f", enums.PaymentOrderStatusCompleted},
		{"C", enums.PaymentOrderStatusCancelled},
		{"c", enums.PaymentOrderStatusCancelled},
		{"E", enums.PaymentOrderStatusFailed},
		{"e", enums.PaymentOrderStatusFailed},
		{"P", enums.PaymentOrderStatusPending},
		{"", enums.PaymentOrderStatusPending},
		{"FF", enums.PaymentOrderStatusPending},
	}

	for _, tc := range cases {
		got, raw := provider.Normalize(types.JSONMap{"state": tc.raw})
		if got != tc.want {
			t.Errorf("state %q: expected %s, got %s", tc.raw, tc.want, got)
		}
		if raw != tc.raw {
			t.Errorf("state %q: raw value not preserved, got %q", tc.raw, raw)
		}
	}
}

func TestReference(t *testing.T) {
	t.Parallel()

	provider := NewProvider()
	if got := provider.Reference(types.JSONMap{"transaction_id": "tx-1"}); got != "tx-1" {
		t.Fatalf("expected tx-1, got %q", got)
	}
	if got := provider.Reference(types.JSONMap{"state": "F"}); got != "" {
		t.Fatalf("expected empty reference, got %q", got)
	}
}

func TestAmount(t *testing.T) {
	t.Parallel()

	provider := NewProvider()
	amount, ok := provider.Amount(types.JSONMap{"amount": float64(49.99)})
	if !ok {
		t.Fatal("expected amount to parse")
	}
	if amount.StringFixed(2) != "49.99" {
		t.Fatalf("unexpected amount %s", amount)
	}
}
