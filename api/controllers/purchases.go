package controllers

import (
	"net/http"

	"github.com/dealhaven/dealhaven-backend/api/responses"
	"github.com/dealhaven/dealhaven-backend/internal/purchases"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
)

// ListPurchases returns the buyer's materialized purchases, newest first.
func ListPurchases(repo purchases.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rows, err := repo.ListByUser(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list purchases"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
