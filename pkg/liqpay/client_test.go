package liqpay

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dealhaven/dealhaven-backend/pkg/config"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

func TestNewClientRequiresKeys(t *testing.T) {
	if _, err := NewClient(context.Background(), config.LiqPayConfig{PrivateKey: "priv"}, nil); err == nil {
		t.Fatal("expected error for missing public key")
	}
	if _, err := NewClient(context.Background(), config.LiqPayConfig{PublicKey: "pub"}, nil); err == nil {
		t.Fatal("expected error for missing private key")
	}
}

func TestSignMatchesKnownDigest(t *testing.T) {
	client := &Client{privateKey: "priv"}
	data := base64.StdEncoding.EncodeToString([]byte(`{"order_id":"DH-1"}`))
	sum := sha1.Sum([]byte("priv" + data + "priv"))
	want := base64.StdEncoding.EncodeToString(sum[:])
	if got := client.Sign(data); got != want {
		t.Fatalf("unexpected signature %q", got)
	}
	if !client.VerifySignature(data, want) {
		t.Fatal("expected signature to verify")
	}
	if client.VerifySignature(data, "bogus") {
		t.Fatal("expected bogus signature to fail")
	}
}

func TestCreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/request" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("data") == "" || r.Form.Get("signature") == "" {
			t.Error("expected data and signature form fields")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"ok","status":"pending","payment_id":987654,"checkout_url":"https://checkout.example/987654"}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), config.LiqPayConfig{
		BaseURL:    srv.URL,
		PublicKey:  "pub",
		PrivateKey: "priv",
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	result, err := client.CreatePayment(context.Background(), CreatePaymentInput{
		OrderNumber: "DH-1001",
		AmountCents: 2599,
		Currency:    "usd",
		Description: "flash deal order",
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if result.PaymentID != "987654" {
		t.Fatalf("unexpected payment id %q", result.PaymentID)
	}
	if result.CheckoutURL == "" {
		t.Fatal("expected checkout url")
	}
}

func TestCreatePaymentKeepsLargeNumericReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"ok","status":"pending","payment_id":2407548887,"checkout_url":"https://checkout.example/x"}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), config.LiqPayConfig{
		BaseURL:    srv.URL,
		PublicKey:  "pub",
		PrivateKey: "priv",
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	result, err := client.CreatePayment(context.Background(), CreatePaymentInput{
		OrderNumber: "DH-1003",
		AmountCents: 500,
		Currency:    "UAH",
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if result.PaymentID != "2407548887" {
		t.Fatalf("reference rendered as %q, scientific notation would orphan the order", result.PaymentID)
	}

	// The stored reference must equal what a notification carrying the same
	// id yields once decoded into the raw payload map.
	var payload types.JSONMap
	if err := json.Unmarshal([]byte(`{"payment_id":2407548887}`), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if derived := payload.Stringify("payment_id"); derived != result.PaymentID {
		t.Fatalf("notification derives %q but creation stored %q", derived, result.PaymentID)
	}
}

func TestReferenceString(t *testing.T) {
	cases := map[string]struct {
		in   any
		want string
	}{
		"string":        {"lp-1", "lp-1"},
		"integral":      {float64(2407548887), "2407548887"},
		"fractional":    {float64(12.5), "12.5"},
		"number":        {json.Number("987654321012"), "987654321012"},
		"nil":           {nil, ""},
		"small_integer": {float64(42), "42"},
	}
	for name, tc := range cases {
		if got := referenceString(tc.in); got != tc.want {
			t.Errorf("%s: got %q, want %q", name, got, tc.want)
		}
	}
}

func TestCreatePaymentSurfacesGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"error","err_code":"err_access","err_description":"invalid key"}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), config.LiqPayConfig{
		BaseURL:    srv.URL,
		PublicKey:  "pub",
		PrivateKey: "priv",
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.CreatePayment(context.Background(), CreatePaymentInput{
		OrderNumber: "DH-1002",
		AmountCents: 100,
		Currency:    "USD",
	}); err == nil {
		t.Fatal("expected gateway error to surface")
	}
}

func TestCreatePaymentValidatesInput(t *testing.T) {
	client := &Client{publicKey: "pub", privateKey: "priv", baseURL: "http://unused", httpClient: http.DefaultClient}
	if _, err := client.CreatePayment(context.Background(), CreatePaymentInput{AmountCents: 100}); err == nil {
		t.Fatal("expected error for missing order number")
	}
	if _, err := client.CreatePayment(context.Background(), CreatePaymentInput{OrderNumber: "DH-1", AmountCents: 0}); err == nil {
		t.Fatal("expected error for non-positive amount")
	}
}
