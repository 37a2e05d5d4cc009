package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dealhaven/dealhaven-backend/internal/fulfillment"
	"github.com/dealhaven/dealhaven-backend/internal/orders"
	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
	"github.com/dealhaven/dealhaven-backend/pkg/metrics"
	"github.com/dealhaven/dealhaven-backend/pkg/outbox"
	"github.com/dealhaven/dealhaven-backend/pkg/outbox/payloads"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

// OutcomeKind classifies what a notification actually did. Every kind except
// a returned error is acknowledged to the gateway.
type OutcomeKind string

const (
	OutcomeNoReference      OutcomeKind = "no_reference"
	OutcomeUnknownOrder     OutcomeKind = "unknown_order"
	OutcomeStatusUpdated    OutcomeKind = "status_updated"
	OutcomeAlreadyCompleted OutcomeKind = "already_completed"
	OutcomeFulfilled        OutcomeKind = "fulfilled"
)

// Outcome reports how a notification was reconciled against its order.
type Outcome struct {
	Kind      OutcomeKind
	Order     *models.PaymentOrder
	Status    enums.PaymentOrderStatus
	RawStatus string
	// Fulfillment is set only for OutcomeFulfilled.
	Fulfillment *fulfillment.Result
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type fulfiller interface {
	Fulfill(ctx context.Context, order *models.PaymentOrder) (*fulfillment.Result, error)
}

type ServiceParams struct {
	OrdersRepo        orders.Repository
	Fulfillment       fulfiller
	Outbox            *outbox.Service
	TransactionRunner txRunner
	Metrics           *metrics.WebhookMetrics
	Logger            *logger.Logger
}

// Service reconciles gateway notifications against payment orders. It is the
// single choke point for the completion transition: the conditional claim on
// the order row decides which delivery triggers fulfillment.
type Service struct {
	ordersRepo  orders.Repository
	fulfillment fulfiller
	outbox      *outbox.Service
	txRunner    txRunner
	metrics     *metrics.WebhookMetrics
	logg        *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Fulfillment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		ordersRepo:  params.OrdersRepo,
		fulfillment: params.Fulfillment,
		outbox:      params.Outbox,
		txRunner:    params.TransactionRunner,
		metrics:     params.Metrics,
		logg:        params.Logger,
	}, nil
}

// Reconcile applies one verified notification. A missing reference or an
// unknown order is a benign no-op; only a failure to persist the order's
// state returns an error, which the caller surfaces to the gateway so the
// delivery is retried.
func (s *Service) Reconcile(ctx context.Context, provider Provider, payload types.JSONMap) (*Outcome, error) {
	started := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveDuration(provider.Name(), time.Since(started))
		}
	}()

	outcome, err := s.reconcile(ctx, provider, payload)
	if s.metrics != nil && outcome != nil {
		s.metrics.IncOutcome(provider.Name(), string(outcome.Kind))
	}
	return outcome, err
}

func (s *Service) reconcile(ctx context.Context, provider Provider, payload types.JSONMap) (*Outcome, error) {
	ref := provider.Reference(payload)
	if ref == "" {
		s.logWarn(ctx, provider, "notification carries no correlation reference", nil)
		return &Outcome{Kind: OutcomeNoReference}, nil
	}

	order, err := s.ordersRepo.FindByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logWarn(ctx, provider, "notification references no known order", map[string]any{"gateway_reference": ref})
			return &Outcome{Kind: OutcomeUnknownOrder}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up order by gateway reference")
	}

	status, raw := provider.Normalize(payload)
	s.checkAmount(ctx, provider, order, payload)

	if status != enums.PaymentOrderStatusCompleted {
		return s.persistStatus(ctx, provider, order, status, raw, payload)
	}
	return s.complete(ctx, provider, order, raw, payload)
}

// complete performs the conditional completion claim. Exactly one delivery
// wins the claim and runs fulfillment; losers are acknowledged untouched.
func (s *Service) complete(ctx context.Context, provider Provider, order *models.PaymentOrder, raw string, payload types.JSONMap) (*Outcome, error) {
	var claimed bool
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		won, err := s.ordersRepo.WithTx(tx).ClaimCompletion(ctx, order.ID, payload)
		if err != nil {
			return err
		}
		claimed = won
		if !won {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentCompleted,
			AggregateType: enums.AggregatePaymentOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.PaymentStatusChangedEvent{
				PaymentOrderID: order.ID,
				OrderNumber:    order.OrderNumber,
				UserID:         order.UserID,
				Provider:       provider.Name(),
				Status:         enums.PaymentOrderStatusCompleted,
				RawStatus:      raw,
				OccurredAt:     time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claiming order completion")
	}
	if !claimed {
		s.logInfo(ctx, provider, "completion already claimed, redelivery ignored", map[string]any{"order_number": order.OrderNumber})
		return &Outcome{Kind: OutcomeAlreadyCompleted, Order: order, Status: enums.PaymentOrderStatusCompleted, RawStatus: raw}, nil
	}

	order.Status = enums.PaymentOrderStatusCompleted
	result, fErr := s.fulfillment.Fulfill(ctx, order)
	if fErr != nil {
		// the claim committed; item failures are logged, never retried
		s.logWarn(ctx, provider, "fulfillment finished with failures", map[string]any{
			"order_number": order.OrderNumber,
			"error":        fErr.Error(),
		})
	}
	return &Outcome{
		Kind:        OutcomeFulfilled,
		Order:       order,
		Status:      enums.PaymentOrderStatusCompleted,
		RawStatus:   raw,
		Fulfillment: result,
	}, nil
}

// persistStatus records a non-completed status unconditionally. Redelivery
// may overwrite the stored status and raw payload; the completion claim is
// the only transition that needs stronger protection.
func (s *Service) persistStatus(ctx context.Context, provider Provider, order *models.PaymentOrder, status enums.PaymentOrderStatus, raw string, payload types.JSONMap) (*Outcome, error) {
	eventType, hasEvent := statusEvent(status)
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ordersRepo.WithTx(tx).UpdateStatusByReference(ctx, order.GatewayReference, status, payload); err != nil {
			return err
		}
		if !hasEvent {
			return nil
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregatePaymentOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.PaymentStatusChangedEvent{
				PaymentOrderID: order.ID,
				OrderNumber:    order.OrderNumber,
				UserID:         order.UserID,
				Provider:       provider.Name(),
				Status:         status,
				RawStatus:      raw,
				OccurredAt:     time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("persisting %s status", status))
	}

	s.logInfo(ctx, provider, "order status recorded", map[string]any{
		"order_number": order.OrderNumber,
		"status":       string(status),
		"raw_status":   raw,
	})
	return &Outcome{Kind: OutcomeStatusUpdated, Order: order, Status: status, RawStatus: raw}, nil
}

// checkAmount compares the notification amount with the order total when the
// payload carries one. A mismatch is logged, never rejected; the gateway is
// the authority on what was charged.
func (s *Service) checkAmount(ctx context.Context, provider Provider, order *models.PaymentOrder, payload types.JSONMap) {
	amount, ok := provider.Amount(payload)
	if !ok {
		return
	}
	expected := decimal.NewFromInt(int64(order.AmountCents)).Div(decimal.NewFromInt(100))
	if amount.Equal(expected) {
		return
	}
	s.logWarn(ctx, provider, "notification amount differs from order total", map[string]any{
		"order_number":    order.OrderNumber,
		"order_amount":    expected.StringFixed(2),
		"notified_amount": amount.StringFixed(2),
	})
}

func statusEvent(status enums.PaymentOrderStatus) (enums.OutboxEventType, bool) {
	switch status {
	case enums.PaymentOrderStatusFailed:
		return enums.EventPaymentFailed, true
	case enums.PaymentOrderStatusCancelled:
		return enums.EventPaymentCancelled, true
	default:
		return "", false
	}
}

func (s *Service) logWarn(ctx context.Context, provider Provider, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithField(ctx, "provider", provider.Name())
	if fields != nil {
		logCtx = s.logg.WithFields(logCtx, fields)
	}
	s.logg.Warn(logCtx, msg)
}

func (s *Service) logInfo(ctx context.Context, provider Provider, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithField(ctx, "provider", provider.Name())
	if fields != nil {
		logCtx = s.logg.WithFields(logCtx, fields)
	}
	s.logg.Info(logCtx, msg)
}
