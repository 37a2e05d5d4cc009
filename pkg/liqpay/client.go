package liqpay

import (
	"context"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dealhaven/dealhaven-backend/pkg/config"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
)

const (
	apiVersion     = 3
	requestTimeout = 15 * time.Second
)

var (
	errPublicKeyRequired  = errors.New("liqpay public key is required")
	errPrivateKeyRequired = errors.New("liqpay private key is required")
)

// Client is a thin wrapper over LiqPay's server-server API. Requests carry a
// base64 payload plus a sha1 signature derived from the private key.
type Client struct {
	baseURL    string
	publicKey  string
	privateKey string
	httpClient *http.Client
}

// NewClient validates the configured keys and builds the API client.
func NewClient(ctx context.Context, cfg config.LiqPayConfig, logg *logger.Logger) (*Client, error) {
	publicKey := strings.TrimSpace(cfg.PublicKey)
	if publicKey == "" {
		return nil, errPublicKeyRequired
	}
	privateKey := strings.TrimSpace(cfg.PrivateKey)
	if privateKey == "" {
		return nil, errPrivateKeyRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://www.liqpay.ua/api"
	}

	if logg != nil {
		logg.Info(ctx, "liqpay client initialized")
	}

	return &Client{
		baseURL:    baseURL,
		publicKey:  publicKey,
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// CreatePaymentInput carries the fields needed to open a hosted checkout.
type CreatePaymentInput struct {
	OrderNumber string
	AmountCents int
	Currency    string
	Description string
	ResultURL   string
}

// CreatePaymentResult is the subset of the gateway response the platform keeps.
type CreatePaymentResult struct {
	PaymentID   string
	CheckoutURL string
	RawStatus   string
}

// CreatePayment registers a hosted-checkout payment and returns the gateway
// reference the asynchronous notification will later carry.
func (c *Client) CreatePayment(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "liqpay client not initialized")
	}
	if strings.TrimSpace(in.OrderNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	if in.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	amount := decimal.NewFromInt(int64(in.AmountCents)).Div(decimal.NewFromInt(100))
	payload := map[string]any{
		"version":     apiVersion,
		"public_key":  c.publicKey,
		"action":      "pay",
		"amount":      amount.StringFixed(2),
		"currency":    strings.ToUpper(in.Currency),
		"description": in.Description,
		"order_id":    in.OrderNumber,
		"result_url":  in.ResultURL,
	}

	data, signature, err := c.encode(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding liqpay request")
	}

	form := url.Values{}
	form.Set("data", data)
	form.Set("signature", signature)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/request", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building liqpay request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling liqpay")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading liqpay response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("liqpay returned status %d", resp.StatusCode))
	}

	var parsed struct {
		Result      string `json:"result"`
		Status      string `json:"status"`
		PaymentID   any    `json:"payment_id"`
		CheckoutURL string `json:"checkout_url"`
		ErrCode     string `json:"err_code"`
		ErrDesc     string `json:"err_description"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding liqpay response")
	}
	if parsed.Result == "error" || parsed.ErrCode != "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("liqpay error %s: %s", parsed.ErrCode, parsed.ErrDesc))
	}

	return &CreatePaymentResult{
		PaymentID:   referenceString(parsed.PaymentID),
		CheckoutURL: parsed.CheckoutURL,
		RawStatus:   parsed.Status,
	}, nil
}

// referenceString renders the gateway's payment id as the exact text the
// notification path later derives from the raw payload. The id arrives as a
// JSON number or string depending on the endpoint; a float64 rendered with
// %v would produce scientific notation and break the join on the stored
// reference.
func referenceString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Sign computes the request signature for a base64 data payload.
func (c *Client) Sign(data string) string {
	sum := sha1.Sum([]byte(c.privateKey + data + c.privateKey))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// VerifySignature reports whether the provided signature matches the payload.
func (c *Client) VerifySignature(data, signature string) bool {
	return subtle.ConstantTimeCompare([]byte(c.Sign(data)), []byte(signature)) == 1
}

func (c *Client) encode(payload map[string]any) (data, signature string, err error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}
	data = base64.StdEncoding.EncodeToString(raw)
	return data, c.Sign(data), nil
}
