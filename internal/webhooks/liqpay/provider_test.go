package liqpaywebhook

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
		{"success", enums.PaymentOrderStatusCompleted},
		{"SUCCESS", enums.PaymentOrderStatusCompleted},
		{"Success", enums.PaymentOrderStatusCompleted},
		{"failed", enums.PaymentOrderStatusFailed},
		{"FAILED", enums.PaymentOrderStatusFailed},
		{"cancelled", enums.PaymentOrderStatusCancelled},
		{"Cancelled", enums.PaymentOrderStatusCancelled},
		{"processing", enums.PaymentOrderStatusPending},
		{"wait_secure", enums.PaymentOrderStatusPending},
		{"", enums.PaymentOrderStatusPending},
		{"garbage-value", enums.PaymentOrderStatusPending},
	}

	for _, tc := range cases {
		got, raw := provider.Normalize(types.JSONMap{"status": tc.raw})
		if got != tc.want {
			t.Errorf("status %q: expected %s, got %s", tc.raw, tc.want, got)
		}
		if raw != tc.raw {
			t.Errorf("status %q: raw value not preserved, got %q", tc.raw, raw)
		}
	}
}

func TestNormalizeMissingStatusField(t *testing.T) {
	t.Parallel()

	provider := NewProvider()
	got, raw := provider.Normalize(types.JSONMap{"payment_id": "123"})
	if got != enums.PaymentOrderStatusPending {
		t.Fatalf("expected pending for missing status, got %s", got)
	}
	if raw != "" {
		t.Fatalf("expected empty raw, got %q", raw)
	}
}

func TestReference(t *testing.T) {
	t.Parallel()

	provider := NewProvider()
	if got := provider.Reference(types.JSONMap{"payment_id": "pay-1"}); got != "pay-1" {
		t.Fatalf("expected pay-1, got %q", got)
	}
	// numeric payment ids arrive as JSON numbers
	if got := provider.Reference(types.JSONMap{"payment_id": float64(987654)}); got != "987654" {
		t.Fatalf("expected 987654, got %q", got)
	}
	if got := provider.Reference(types.JSONMap{"status": "success"}); got != "" {
		t.Fatalf("expected empty reference, got %q", got)
	}
}

func TestAmount(t *testing.T) {
	t.Parallel()

	provider := NewProvider()
	amount, ok := provider.Amount(types.JSONMap{"amount": "25.99"})
	if !ok {
		t.Fatal("expected amount to parse")
	}
	if amount.StringFixed(2) != "25.99" {
		t.Fatalf("unexpected amount %s", amount)
	}

	if _, ok := provider.Amount(types.JSONMap{}); ok {
		t.Fatal("expected missing amount to report false")
	}
	if _, ok := provider.Amount(types.JSONMap{"amount": "not-a-number"}); ok {
		t.Fatal("expected malformed amount to report false")
	}
}
