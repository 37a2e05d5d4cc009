package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dealhaven/dealhaven-backend/internal/cart"
	"github.com/dealhaven/dealhaven-backend/internal/deals"
	"github.com/dealhaven/dealhaven-backend/internal/purchases"
	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
	"github.com/dealhaven/dealhaven-backend/pkg/metrics"
	"github.com/dealhaven/dealhaven-backend/pkg/outbox"
	"github.com/dealhaven/dealhaven-backend/pkg/outbox/payloads"
)

var (
	errAlreadyMaterialized = errors.New("purchase already materialized")
	errInsufficientStock   = errors.New("insufficient stock")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	PurchasesRepo     purchases.Repository
	DealsRepo         deals.Repository
	CartRepo          cart.Repository
	Outbox            *outbox.Service
	TransactionRunner txRunner
	Metrics           *metrics.WebhookMetrics
	Logger            *logger.Logger
}

// Service materializes a completed order: one purchase row and one bounded
// inventory decrement per item, then an unconditional cart clear.
type Service struct {
	purchasesRepo purchases.Repository
	dealsRepo     deals.Repository
	cartRepo      cart.Repository
	outbox        *outbox.Service
	txRunner      txRunner
	metrics       *metrics.WebhookMetrics
	logg          *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.PurchasesRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "purchases repo required")
	}
	if params.DealsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "deals repo required")
	}
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repo required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		purchasesRepo: params.PurchasesRepo,
		dealsRepo:     params.DealsRepo,
		cartRepo:      params.CartRepo,
		outbox:        params.Outbox,
		txRunner:      params.TransactionRunner,
		metrics:       params.Metrics,
		logg:          params.Logger,
	}, nil
}

// ItemFailure records why a single line item could not be materialized.
type ItemFailure struct {
	DealID uuid.UUID
	Reason string
}

// Result summarizes what fulfillment actually did.
type Result struct {
	PurchasedItems int
	SkippedItems   int
	FailedItems    []ItemFailure
	CartCleared    bool
}

// Fulfill processes each line item in sequence. A failing item does not
// abort the remaining items; the purchase insert and inventory decrement for
// one item commit or roll back together. The error return aggregates item
// failures for logging; callers on the notification path still acknowledge.
func (s *Service) Fulfill(ctx context.Context, order *models.PaymentOrder) (*Result, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}

	result := &Result{}
	var errs error

	for _, item := range order.Items {
		switch err := s.fulfillItem(ctx, order, item); {
		case err == nil:
			result.PurchasedItems++
		case errors.Is(err, errAlreadyMaterialized):
			result.SkippedItems++
		case errors.Is(err, errInsufficientStock):
			result.FailedItems = append(result.FailedItems, ItemFailure{DealID: item.DealID, Reason: "insufficient stock"})
			errs = multierr.Append(errs, fmt.Errorf("deal %s: %w", item.DealID, err))
		default:
			result.FailedItems = append(result.FailedItems, ItemFailure{DealID: item.DealID, Reason: err.Error()})
			errs = multierr.Append(errs, fmt.Errorf("deal %s: %w", item.DealID, err))
		}
	}

	// cart clear is unconditional, item failures included
	if err := s.cartRepo.ClearByUser(ctx, order.UserID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("clearing cart for user %s: %w", order.UserID, err))
	} else {
		result.CartCleared = true
	}

	if emitErr := s.emitFulfilled(ctx, order, result); emitErr != nil {
		errs = multierr.Append(errs, emitErr)
	}

	if s.metrics != nil {
		s.metrics.IncFulfillmentItems("purchased", result.PurchasedItems)
		s.metrics.IncFulfillmentItems("skipped", result.SkippedItems)
		s.metrics.IncFulfillmentItems("failed", len(result.FailedItems))
	}
	if s.logg != nil {
		fields := map[string]any{
			"order_number": order.OrderNumber,
			"purchased":    result.PurchasedItems,
			"skipped":      result.SkippedItems,
			"failed":       len(result.FailedItems),
			"cart_cleared": result.CartCleared,
		}
		logCtx := s.logg.WithFields(ctx, fields)
		if errs != nil {
			s.logg.Warn(logCtx, "order fulfillment finished with item failures")
		} else {
			s.logg.Info(logCtx, "order fulfilled")
		}
	}

	return result, errs
}

// fulfillItem commits the purchase row and the inventory movement for one
// item atomically. The unique (payment_order_id, deal_id) constraint makes a
// redelivered item a detectable no-op.
func (s *Service) fulfillItem(ctx context.Context, order *models.PaymentOrder, item models.PaymentOrderItem) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		purchase := &models.Purchase{
			PaymentOrderID:     order.ID,
			UserID:             order.UserID,
			DealID:             item.DealID,
			Quantity:           item.Quantity,
			PurchasePriceCents: item.UnitPriceCents,
			Status:             enums.PurchaseStatusConfirmed,
		}
		if _, err := s.purchasesRepo.WithTx(tx).Create(ctx, purchase); err != nil {
			if purchases.IsDuplicate(err) {
				return errAlreadyMaterialized
			}
			return err
		}

		sold, err := s.dealsRepo.WithTx(tx).RecordSale(ctx, item.DealID, item.Quantity)
		if err != nil {
			return err
		}
		if !sold {
			return errInsufficientStock
		}
		return nil
	})
}

func (s *Service) emitFulfilled(ctx context.Context, order *models.PaymentOrder, result *Result) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderFulfilled,
			AggregateType: enums.AggregatePaymentOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderFulfilledEvent{
				PaymentOrderID: order.ID,
				OrderNumber:    order.OrderNumber,
				UserID:         order.UserID,
				PurchasedItems: result.PurchasedItems,
				FailedItems:    len(result.FailedItems),
				CartCleared:    result.CartCleared,
			},
		})
	})
}
