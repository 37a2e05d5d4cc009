package gateways

import (
	"context"
	"errors"

	"github.com/dealhaven/dealhaven-backend/internal/orders"
	easypaywebhook "github.com/dealhaven/dealhaven-backend/internal/webhooks/easypay"
	"github.com/dealhaven/dealhaven-backend/pkg/easypay"
)

type easypayCreator interface {
	CreatePayment(ctx context.Context, in easypay.CreatePaymentInput) (*easypay.CreatePaymentResult, error)
}

// EasyPayGateway fronts the EasyPay merchant API.
type EasyPayGateway struct {
	client easypayCreator
}

func NewEasyPayGateway(client *easypay.Client) (*EasyPayGateway, error) {
	if client == nil {
		return nil, errors.New("easypay client is required")
	}
	return &EasyPayGateway{client: client}, nil
}

func (g *EasyPayGateway) Name() string {
	return easypaywebhook.ProviderName
}

func (g *EasyPayGateway) CreatePayment(ctx context.Context, req orders.GatewayPaymentRequest) (*orders.GatewayPaymentResult, error) {
	res, err := g.client.CreatePayment(ctx, easypay.CreatePaymentInput{
		OrderNumber: req.OrderNumber,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
		ReturnURL:   req.ResultURL,
	})
	if err != nil {
		return nil, err
	}
	return &orders.GatewayPaymentResult{
		Reference:   res.TransactionID,
		CheckoutURL: res.ForwardURL,
	}, nil
}
