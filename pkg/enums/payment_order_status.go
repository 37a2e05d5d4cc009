package enums

import "fmt"

// PaymentOrderStatus tracks the lifecycle of a payment order. Orders start
// pending and are moved by gateway notifications; completed, failed and
// cancelled are terminal for fulfillment side effects.
type PaymentOrderStatus string

const (
	PaymentOrderStatusPending   PaymentOrderStatus = "pending"
	PaymentOrderStatusCompleted PaymentOrderStatus = "completed"
	PaymentOrderStatusFailed    PaymentOrderStatus = "failed"
	PaymentOrderStatusCancelled PaymentOrderStatus = "cancelled"
)

var validPaymentOrderStatuses = []PaymentOrderStatus{
	PaymentOrderStatusPending,
	PaymentOrderStatusCompleted,
	PaymentOrderStatusFailed,
	PaymentOrderStatusCancelled,
}

// String implements fmt.Stringer.
func (p PaymentOrderStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentOrderStatus.
func (p PaymentOrderStatus) IsValid() bool {
	for _, candidate := range validPaymentOrderStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further fulfillment side effects may fire.
func (p PaymentOrderStatus) IsTerminal() bool {
	return p == PaymentOrderStatusCompleted ||
		p == PaymentOrderStatusFailed ||
		p == PaymentOrderStatusCancelled
}

// ParsePaymentOrderStatus converts raw input into a PaymentOrderStatus.
func ParsePaymentOrderStatus(value string) (PaymentOrderStatus, error) {
	for _, candidate := range validPaymentOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment order status %q", value)
}
