package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adebayoakin/gearmart-backend/pkg/config"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
)

// SignatureHeader carries the HMAC-SHA512 digest Paystack computes over the
// raw webhook body with the account's secret key.
const SignatureHeader = "x-paystack-signature"

// EventChargeSuccess is the webhook event emitted for a settled charge.
const EventChargeSuccess = "charge.success"

// StatusSuccess is the transaction status a verify call reports once the
// charge has settled.
const StatusSuccess = "success"

var (
	errSecretKeyRequired = errors.New("paystack secret key is required")
	errLoggerRequired    = errors.New("paystack logger is required")
)

// Client wraps the Paystack REST API with centralized auth, timeouts, and
// error mapping. Gateway rejections keep their upstream message; transport
// failures surface as dependency errors.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	callbackURL string
	logger      *logger.Logger
}

// NewClient initializes the Paystack wrapper and validates the credentials.
func NewClient(cfg config.PaystackConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		secretKey:   secretKey,
		callbackURL: strings.TrimSpace(cfg.CallbackURL),
		logger:      logg,
	}, nil
}

// CallbackURL returns the configured browser-redirect target.
func (c *Client) CallbackURL() string {
	if c == nil {
		return ""
	}
	return c.callbackURL
}

// InitializeRequest carries the fields needed to open a transaction.
type InitializeRequest struct {
	AmountKobo  int64          `json:"amount"`
	Email       string         `json:"email"`
	Reference   string         `json:"reference,omitempty"`
	Currency    string         `json:"currency,omitempty"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// InitializeResult is the redirect data returned by a successful init.
type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction mirrors the subset of the verify payload the order flow needs.
type Transaction struct {
	ID              int64      `json:"id"`
	Status          string     `json:"status"`
	Reference       string     `json:"reference"`
	AmountKobo      int64      `json:"amount"`
	Currency        string     `json:"currency"`
	GatewayResponse string     `json:"gateway_response"`
	Channel         string     `json:"channel"`
	PaidAt          *time.Time `json:"paid_at"`
}

// Succeeded reports whether the gateway settled the charge.
func (t *Transaction) Succeeded() bool {
	return t != nil && t.Status == StatusSuccess
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction opens a transaction and returns the authorization URL
// the browser is redirected to.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if req.AmountKobo <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if req.CallbackURL == "" {
		req.CallbackURL = c.callbackURL
	}

	var result InitializeResult
	if err := c.post(ctx, "/transaction/initialize", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyTransaction fetches the gateway's view of the transaction bound to
// reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	var txn Transaction
	if err := c.get(ctx, "/transaction/verify/"+url.PathEscape(reference), &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// ValidateSignature checks the webhook body against the signature header.
// Paystack signs the raw body with HMAC-SHA512 using the secret key.
func (c *Client) ValidateSignature(payload []byte, signature string) bool {
	if c == nil || signature == "" || c.secretKey == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Event is the decoded webhook envelope.
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

// EventData carries the transaction fields delivered with a webhook event.
type EventData struct {
	ID         int64      `json:"id"`
	Reference  string     `json:"reference"`
	Status     string     `json:"status"`
	AmountKobo int64      `json:"amount"`
	Currency   string     `json:"currency"`
	PaidAt     *time.Time `json:"paid_at"`
}

// DedupID returns a stable identifier for duplicate-delivery detection.
func (e *Event) DedupID() string {
	if e.Data.ID != 0 {
		return fmt.Sprintf("%d", e.Data.ID)
	}
	return e.Data.Reference
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode paystack request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build paystack request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build paystack request")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paystack request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read paystack response")
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode paystack response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("paystack returned status %d", resp.StatusCode)
		}
		return pkgerrors.New(pkgerrors.CodeDependency, msg).
			WithDetails(map[string]any{"http_status": resp.StatusCode})
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode paystack payload")
		}
	}
	return nil
}
