package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dealhaven/dealhaven-backend/api/responses"
	"github.com/dealhaven/dealhaven-backend/api/validators"
	"github.com/dealhaven/dealhaven-backend/internal/orders"
	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
)

type createOrderRequest struct {
	Provider    string `json:"provider" validate:"required,oneof=liqpay easypay"`
	Currency    string `json:"currency" validate:"required,oneof=USD EUR UAH"`
	Description string `json:"description" validate:"max=500"`
	ResultURL   string `json:"result_url" validate:"omitempty,url"`
}

// CreateOrder converts the buyer's cart into a pending payment order against
// the chosen gateway.
func CreateOrder(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.CreateOrder(ctx, orders.CreateOrderInput{
			UserID:      userID,
			Provider:    req.Provider,
			Currency:    enums.Currency(req.Currency),
			Description: req.Description,
			ResultURL:   req.ResultURL,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// GetOrder exposes the order's persisted status to its owner.
func GetOrder(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderNumber := chi.URLParam(r, "orderNumber")
		if orderNumber == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number required"))
			return
		}

		order, err := svc.GetOrder(ctx, userID, orderNumber)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func ListOrders(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rows, err := svc.ListOrders(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
