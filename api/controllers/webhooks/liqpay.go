package webhooks

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/dealhaven/dealhaven-backend/api/responses"
	"github.com/dealhaven/dealhaven-backend/internal/reconcile"
	internalwebhooks "github.com/dealhaven/dealhaven-backend/internal/webhooks"
	"github.com/dealhaven/dealhaven-backend/pkg/config"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
	"github.com/dealhaven/dealhaven-backend/pkg/metrics"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

// ReconcileService applies a verified notification against its order.
type ReconcileService interface {
	Reconcile(ctx context.Context, provider reconcile.Provider, payload types.JSONMap) (*reconcile.Outcome, error)
}

// DeliveryGuard suppresses byte-identical redeliveries.
type DeliveryGuard interface {
	CheckAndMark(ctx context.Context, deliveryID string) (bool, error)
	Delete(ctx context.Context, deliveryID string) error
}

type liqpayVerifier interface {
	VerifySignature(data, signature string) bool
}

// LiqPayEcho answers the gateway's endpoint liveness probe.
func LiqPayEcho() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"provider": "liqpay", "status": "ok"})
	}
}

// LiqPayWebhook ingests the gateway's form-encoded callback: a base64 `data`
// document plus its `signature`. Malformed bodies are rejected or
// acknowledged per the strict-parse setting; only a reconcile error is
// surfaced so the gateway redelivers.
func LiqPayWebhook(
	svc ReconcileService,
	provider reconcile.Provider,
	verifier liqpayVerifier,
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

		form, err := url.ParseQuery(string(body))
		if err != nil {
			ackOrReject(ctx, w, logg, cfg.LiqPayStrict, "malformed form body")
			return
		}
		data := form.Get("data")
		signature := form.Get("signature")
		if data == "" {
			ackOrReject(ctx, w, logg, cfg.LiqPayStrict, "missing data field")
			return
		}

		if cfg.VerifySignature && verifier != nil {
			if !verifier.VerifySignature(data, signature) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid signature"))
				return
			}
		}

		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			ackOrReject(ctx, w, logg, cfg.LiqPayStrict, "data is not valid base64")
			return
		}
		var payload types.JSONMap
		if err := json.Unmarshal(decoded, &payload); err != nil {
			ackOrReject(ctx, w, logg, cfg.LiqPayStrict, "data is not valid json")
			return
		}

		// The guard only suppresses redelivery noise; the conditional
		// completion claim is what makes duplicates safe. A guard outage
		// must not turn deliveries into retryable failures.
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

// ackOrReject applies the per-provider malformed-body policy: strict
// providers get a 400 and retry with a corrected payload, lenient ones get a
// 200 so they stop redelivering garbage.
func ackOrReject(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, strict bool, reason string) {
	if strict {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, reason))
		return
	}
	if logg != nil {
		logg.Warn(logg.WithField(ctx, "reason", reason), "malformed notification acknowledged")
	}
	responses.WriteSuccess(w, map[string]string{"outcome": "ignored_malformed"})
}
