package webhooks

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dealhaven/dealhaven-backend/api/responses"
	"github.com/dealhaven/dealhaven-backend/internal/reconcile"
	internalwebhooks "github.com/dealhaven/dealhaven-backend/internal/webhooks"
	"github.com/dealhaven/dealhaven-backend/pkg/config"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
	"github.com/dealhaven/dealhaven-backend/pkg/metrics"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

const easypaySignatureHeader = "X-Easypay-Signature"

type easypayVerifier interface {
	VerifySignature(body []byte, signature string) bool
}

// EasyPayEcho answers the gateway's endpoint liveness probe.
func EasyPayEcho() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"provider": "easypay", "status": "ok"})
	}
}

// EasyPayWebhook ingests the gateway's JSON callback, authenticated by an
// HMAC header over the raw body.
func EasyPayWebhook(
	svc ReconcileService,
	provider reconcile.Provider,
	verifier easypayVerifier,
	guard DeliveryGuard,
	cfg config.WebhooksConfig,
	m *metrics.WebhookMetrics,
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || provider == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if m != nil {
			m.IncReceived(provider.Name())
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if cfg.VerifySignature && verifier != nil {
			if !verifier.VerifySignature(body, r.Header.Get(easypaySignatureHeader)) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid signature"))
				return
			}
		}

		var payload types.JSONMap
		if err := json.Unmarshal(body, &payload); err != nil {
			ackOrReject(ctx, w, logg, cfg.EasyPayStrict, "body is not valid json")
			return
		}

		// Guard outages degrade to reconciling without dedupe; the
		// completion claim keeps duplicates safe.
		deliveryID := internalwebhooks.DeliveryID(body)
		if guard != nil {
			already, err := guard.CheckAndMark(ctx, deliveryID)
			switch {
			case err != nil:
				if logg != nil {
					logg.Error(ctx, "delivery guard unavailable, reconciling without dedupe", err)
				}
			case already:
				responses.WriteSuccess(w, map[string]string{"outcome": "duplicate_delivery"})
				return
			}
		}

		outcome, err := svc.Reconcile(ctx, provider, payload)
		if err != nil {
			if guard != nil {
				_ = guard.Delete(ctx, deliveryID)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"outcome": string(outcome.Kind)})
	}
}
