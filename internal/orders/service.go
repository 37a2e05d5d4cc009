package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhaven/dealhaven-backend/internal/cart"
	"github.com/dealhaven/dealhaven-backend/internal/deals"
	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
	"github.com/dealhaven/dealhaven-backend/pkg/outbox"
	"github.com/dealhaven/dealhaven-backend/pkg/outbox/payloads"
)

// GatewayPaymentRequest is the provider-neutral payment-creation input.
type GatewayPaymentRequest struct {
	OrderNumber string
	AmountCents int
	Currency    string
	Description string
	ResultURL   string
}

// GatewayPaymentResult carries the reference the asynchronous notification
// will later correlate on.
type GatewayPaymentResult struct {
	Reference   string
	CheckoutURL string
}

// PaymentGateway is the one-shot payment-creation surface of a provider.
type PaymentGateway interface {
	Name() string
	CreatePayment(ctx context.Context, req GatewayPaymentRequest) (*GatewayPaymentResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	OrdersRepo        Repository
	CartRepo          cart.Repository
	DealsRepo         deals.Repository
	Gateways          map[string]PaymentGateway
	Outbox            *outbox.Service
	TransactionRunner txRunner
	Logger            *logger.Logger
}

type Service struct {
	ordersRepo Repository
	cartRepo   cart.Repository
	dealsRepo  deals.Repository
	gateways   map[string]PaymentGateway
	outbox     *outbox.Service
	txRunner   txRunner
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repo required")
	}
	if params.DealsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "deals repo required")
	}
	if len(params.Gateways) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "at least one payment gateway required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		ordersRepo: params.OrdersRepo,
		cartRepo:   params.CartRepo,
		dealsRepo:  params.DealsRepo,
		gateways:   params.Gateways,
		outbox:     params.Outbox,
		txRunner:   params.TransactionRunner,
		logg:       params.Logger,
	}, nil
}

// CreateOrder converts the buyer's staged cart into a pending payment order
// and registers the payment with the selected gateway. The gateway call has a
// live caller waiting, so its failures surface as explicit errors rather than
// the swallowed acknowledgments of the notification path.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderResponse, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	gateway, ok := s.gateways[provider]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment provider %q", in.Provider))
	}
	currency := in.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", in.Currency))
	}

	items, err := s.cartRepo.ListByUser(ctx, in.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	amountCents := 0
	orderItems := make([]models.PaymentOrderItem, 0, len(items))
	for _, item := range items {
		deal, err := s.dealsRepo.FindByID(ctx, item.DealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("deal %s no longer exists", item.DealID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading deal")
		}
		if !deal.Active {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("deal %s is no longer active", deal.ID))
		}
		if deal.StockQuantity < item.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("deal %s has insufficient stock", deal.ID))
		}
		amountCents += deal.PriceCents * item.Quantity
		orderItems = append(orderItems, models.PaymentOrderItem{
			DealID:         deal.ID,
			Quantity:       item.Quantity,
			UnitPriceCents: deal.PriceCents,
		})
	}

	orderNumber := newOrderNumber()
	payment, err := gateway.CreatePayment(ctx, GatewayPaymentRequest{
		OrderNumber: orderNumber,
		AmountCents: amountCents,
		Currency:    currency.String(),
		Description: in.Description,
		ResultURL:   in.ResultURL,
	})
	if err != nil {
		return nil, err
	}
	if payment == nil || strings.TrimSpace(payment.Reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway returned no payment reference")
	}

	order := &models.PaymentOrder{
		ID:               uuid.New(),
		GatewayReference: payment.Reference,
		OrderNumber:      orderNumber,
		UserID:           in.UserID,
		Provider:         provider,
		AmountCents:      amountCents,
		Currency:         currency,
		Status:           enums.PaymentOrderStatusPending,
		Items:            orderItems,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.ordersRepo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting payment order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregatePaymentOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: in.UserID},
			Version:       1,
			Data: payloads.OrderCreatedEvent{
				PaymentOrderID:   order.ID,
				OrderNumber:      order.OrderNumber,
				UserID:           order.UserID,
				Provider:         order.Provider,
				GatewayReference: order.GatewayReference,
				AmountCents:      order.AmountCents,
				ItemCount:        len(order.Items),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		fields := map[string]any{
			"order_number": order.OrderNumber,
			"provider":     provider,
			"amount_cents": amountCents,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "payment order created")
	}

	return toOrderResponse(order, payment.CheckoutURL), nil
}

// GetOrder returns the buyer's order by number. Visibility into payment
// progress is purely via the persisted status.
func (s *Service) GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*OrderResponse, error) {
	order, err := s.ordersRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return toOrderResponse(order, ""), nil
}

// ListOrders returns the buyer's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderResponse, error) {
	rows, err := s.ordersRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	out := make([]OrderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toOrderResponse(&rows[i], ""))
	}
	return out, nil
}

func newOrderNumber() string {
	return "DH-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
