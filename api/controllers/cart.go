package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealhaven/dealhaven-backend/api/middleware"
	"github.com/dealhaven/dealhaven-backend/api/responses"
	"github.com/dealhaven/dealhaven-backend/api/validators"
	"github.com/dealhaven/dealhaven-backend/internal/cart"
	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
)

type upsertCartItemRequest struct {
	DealID   string `json:"deal_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=100"`
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return userID, nil
}

func GetCart(repo cart.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		items, err := repo.ListByUser(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart"))
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// UpsertCartItem sets the quantity for one deal in the buyer's cart; posting
// the same deal again replaces the quantity instead of stacking rows.
func UpsertCartItem(repo cart.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req upsertCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		dealID, err := uuid.Parse(req.DealID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid deal id"))
			return
		}

		item, err := repo.Upsert(ctx, &models.CartItem{
			UserID:   userID,
			DealID:   dealID,
			Quantity: req.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert cart item"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func RemoveCartItem(repo cart.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		dealID, err := uuid.Parse(chi.URLParam(r, "dealID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid deal id"))
			return
		}
		if err := repo.Remove(ctx, userID, dealID); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item"))
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
