package easypay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dealhaven/dealhaven-backend/pkg/config"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
)

const (
	requestTimeout  = 15 * time.Second
	signatureHeader = "X-Easypay-Signature"
)

var (
	errMerchantIDRequired = errors.New("easypay merchant id is required")
	errSecretKeyRequired  = errors.New("easypay secret key is required")
)

// Client is a thin wrapper over EasyPay's merchant API. Request bodies are
// signed with an HMAC-SHA256 of the raw JSON.
type Client struct {
	baseURL    string
	merchantID string
	secretKey  string
	httpClient *http.Client
}

// NewClient validates the merchant credentials and builds the API client.
func NewClient(ctx context.Context, cfg config.EasyPayConfig, logg *logger.Logger) (*Client, error) {
	merchantID := strings.TrimSpace(cfg.MerchantID)
	if merchantID == "" {
		return nil, errMerchantIDRequired
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.easypay.ua"
	}

	if logg != nil {
		logg.Info(ctx, "easypay client initialized")
	}

	return &Client{
		baseURL:    baseURL,
		merchantID: merchantID,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// CreatePaymentInput carries the fields needed to open a payment.
type CreatePaymentInput struct {
	OrderNumber string
	AmountCents int
	Currency    string
	Description string
	ReturnURL   string
}

// CreatePaymentResult is the subset of the gateway response the platform keeps.
type CreatePaymentResult struct {
	TransactionID string
	ForwardURL    string
	RawState      string
}

// CreatePayment registers a payment and returns the transaction id the
// asynchronous notification will later carry.
func (c *Client) CreatePayment(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "easypay client not initialized")
	}
	if strings.TrimSpace(in.OrderNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	if in.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	body, err := json.Marshal(map[string]any{
		"merchant_id": c.merchantID,
		"order_id":    in.OrderNumber,
		"amount":      in.AmountCents,
		"currency":    strings.ToUpper(in.Currency),
		"description": in.Description,
		"return_url":  in.ReturnURL,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding easypay request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payments/create", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building easypay request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, c.Sign(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling easypay")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading easypay response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("easypay returned status %d", resp.StatusCode))
	}

	var parsed struct {
		TransactionID string `json:"transaction_id"`
		ForwardURL    string `json:"forward_url"`
		State         string `json:"state"`
		Error         string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding easypay response")
	}
	if parsed.Error != "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "easypay error: "+parsed.Error)
	}
	if parsed.TransactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "easypay response missing transaction id")
	}

	return &CreatePaymentResult{
		TransactionID: parsed.TransactionID,
		ForwardURL:    parsed.ForwardURL,
		RawState:      parsed.State,
	}, nil
}

// Sign computes the hex HMAC-SHA256 of the raw body.
func (c *Client) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether the header signature matches the body.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	expected := c.Sign(body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
