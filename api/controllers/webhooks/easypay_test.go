package webhooks

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dealhaven/dealhaven-backend/internal/reconcile"
	easypaywebhook "github.com/dealhaven/dealhaven-backend/internal/webhooks/easypay"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
)

type fakeBodyVerifier struct {
	ok bool
}

func (f fakeBodyVerifier) VerifySignature(_ []byte, _ string) bool {
	return f.ok
}

func TestEasyPayWebhookAcknowledgesReconciledNotification(t *testing.T) {
	svc := &fakeReconciler{outcome: &reconcile.Outcome{Kind: reconcile.OutcomeStatusUpdated}}
	handler := EasyPayWebhook(svc, easypaywebhook.NewProvider(), fakeBodyVerifier{ok: true}, &fakeGuard{}, strictConfig(), nil, nil)

	body := `{"transaction_id":"ep-1","state":"E"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/easypay", strings.NewReader(body))
	req.Header.Set(easypaySignatureHeader, "sig")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.gotIt {
		t.Fatal("expected reconcile to be invoked")
	}
	if svc.payload["transaction_id"] != "ep-1" {
		t.Fatalf("payload not decoded: %+v", svc.payload)
	}
	if !strings.Contains(rec.Body.String(), "status_updated") {
		t.Fatalf("outcome missing from response: %s", rec.Body.String())
	}
}

func TestEasyPayWebhookRejectsBadSignature(t *testing.T) {
	svc := &fakeReconciler{}
	handler := EasyPayWebhook(svc, easypaywebhook.NewProvider(), fakeBodyVerifier{ok: false}, &fakeGuard{}, strictConfig(), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/easypay", strings.NewReader(`{"transaction_id":"ep-1","state":"F"}`))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if svc.gotIt {
		t.Fatal("reconcile must not run on bad signature")
	}
}

func TestEasyPayWebhookGuardOutageStillReconciles(t *testing.T) {
	svc := &fakeReconciler{outcome: &reconcile.Outcome{Kind: reconcile.OutcomeStatusUpdated}}
	guard := &fakeGuard{err: pkgerrors.New(pkgerrors.CodeDependency, "redis unavailable")}
	handler := EasyPayWebhook(svc, easypaywebhook.NewProvider(), fakeBodyVerifier{ok: true}, guard, strictConfig(), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/easypay", strings.NewReader(`{"transaction_id":"ep-1","state":"E"}`))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("guard outage must not fail the delivery, got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.gotIt {
		t.Fatal("expected reconcile to run without the guard")
	}
}

func TestEasyPayWebhookLenientAcksMalformedBody(t *testing.T) {
	svc := &fakeReconciler{}
	handler := EasyPayWebhook(svc, easypaywebhook.NewProvider(), fakeBodyVerifier{ok: true}, &fakeGuard{}, strictConfig(), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/easypay", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 under lenient parse, got %d", rec.Code)
	}
	if svc.gotIt {
		t.Fatal("reconcile must not run on malformed body")
	}
	if !strings.Contains(rec.Body.String(), "ignored_malformed") {
		t.Fatalf("expected malformed ack, got %s", rec.Body.String())
	}
}

func TestEasyPayEcho(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/webhooks/easypay", nil)
	rec := httptest.NewRecorder()

	EasyPayEcho()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
