package easypay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dealhaven/dealhaven-backend/pkg/config"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(context.Background(), config.EasyPayConfig{SecretKey: "sec"}, nil); err == nil {
		t.Fatal("expected error for missing merchant id")
	}
	if _, err := NewClient(context.Background(), config.EasyPayConfig{MerchantID: "m-1"}, nil); err == nil {
		t.Fatal("expected error for missing secret key")
	}
}

func TestSignAndVerify(t *testing.T) {
	client := &Client{secretKey: "sec"}
	body := []byte(`{"order_id":"DH-1"}`)
	sig := client.Sign(body)
	if sig == "" {
		t.Fatal("expected signature")
	}
	if !client.VerifySignature(body, sig) {
		t.Fatal("expected signature to verify")
	}
	if client.VerifySignature(body, "deadbeef") {
		t.Fatal("expected bad signature to fail")
	}
}

func TestCreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/payments/create" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get(signatureHeader) == "" {
			t.Error("expected signature header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transaction_id":"tx-555","forward_url":"https://pay.example/tx-555","state":"created"}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), config.EasyPayConfig{
		BaseURL:    srv.URL,
		MerchantID: "m-1",
		SecretKey:  "sec",
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	result, err := client.CreatePayment(context.Background(), CreatePaymentInput{
		OrderNumber: "DH-2001",
		AmountCents: 4999,
		Currency:    "uah",
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if result.TransactionID != "tx-555" {
		t.Fatalf("unexpected transaction id %q", result.TransactionID)
	}
	if result.ForwardURL == "" {
		t.Fatal("expected forward url")
	}
}

func TestCreatePaymentSurfacesGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"merchant blocked"}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), config.EasyPayConfig{
		BaseURL:    srv.URL,
		MerchantID: "m-1",
		SecretKey:  "sec",
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.CreatePayment(context.Background(), CreatePaymentInput{
		OrderNumber: "DH-2002",
		AmountCents: 100,
		Currency:    "UAH",
	}); err == nil {
		t.Fatal("expected gateway error to surface")
	}
}
