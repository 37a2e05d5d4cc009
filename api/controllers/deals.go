package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhaven/dealhaven-backend/api/responses"
	"github.com/dealhaven/dealhaven-backend/internal/deals"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
)

// ListDeals returns active deals; `?all=true` includes retired ones.
func ListDeals(repo deals.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		activeOnly := r.URL.Query().Get("all") != "true"
		rows, err := repo.List(ctx, activeOnly)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list deals"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func GetDeal(repo deals.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		dealID, err := uuid.Parse(chi.URLParam(r, "dealID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid deal id"))
			return
		}
		deal, err := repo.FindByID(ctx, dealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find deal"))
			return
		}
		responses.WriteSuccess(w, deal)
	}
}
