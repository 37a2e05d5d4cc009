// Package gateways adapts the provider HTTP clients to the provider-neutral
// payment-creation surface the orders service consumes. Adapter names reuse
// the webhook provider tags so the reference written at creation time matches
// the provider the notification path resolves.
package gateways

import (
	"context"
	"errors"

	"github.com/dealhaven/dealhaven-backend/internal/orders"
	liqpaywebhook "github.com/dealhaven/dealhaven-backend/internal/webhooks/liqpay"
	"github.com/dealhaven/dealhaven-backend/pkg/liqpay"
)

type liqpayCreator interface {
	CreatePayment(ctx context.Context, in liqpay.CreatePaymentInput) (*liqpay.CreatePaymentResult, error)
}

// LiqPayGateway fronts the LiqPay hosted-checkout API.
type LiqPayGateway struct {
	client liqpayCreator
}

func NewLiqPayGateway(client *liqpay.Client) (*LiqPayGateway, error) {
	if client == nil {
		return nil, errors.New("liqpay client is required")
	}
	return &LiqPayGateway{client: client}, nil
}

func (g *LiqPayGateway) Name() string {
	return liqpaywebhook.ProviderName
}

func (g *LiqPayGateway) CreatePayment(ctx context.Context, req orders.GatewayPaymentRequest) (*orders.GatewayPaymentResult, error) {
	res, err := g.client.CreatePayment(ctx, liqpay.CreatePaymentInput{
		OrderNumber: req.OrderNumber,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
		ResultURL:   req.ResultURL,
	})
	if err != nil {
		return nil, err
	}
	return &orders.GatewayPaymentResult{
		Reference:   res.PaymentID,
		CheckoutURL: res.CheckoutURL,
	}, nil
}
