package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.paystack.co"

// Calls to the gateway use a bounded timeout and must never run while
// holding a database lock.
const defaultTimeout = 30 * time.Second

// ErrGateway wraps transport failures and non-2xx gateway responses.
// Retryable by the caller; never swallowed silently.
var ErrGateway = errors.New("payment gateway request failed")

const (
	PaymentTypeWallet  = "wallet"
	PaymentTypeSavings = "savings"
)

// Client talks to the Paystack REST API. Keys and callback URL are
// injected at construction instead of read from globals.
type Client struct {
	secretKey   string
	callbackURL string
	baseURL     string
	httpClient  *http.Client
}

func New(secretKey, callbackURL string) *Client {
	return &Client{
		secretKey:   secretKey,
		callbackURL: callbackURL,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
}

// Metadata travels with a charge and comes back on the webhook. It is
// the only link between a gateway payment and our ledger targets.
type Metadata struct {
	PaymentType string `json:"payment_type"`
	UserID      string `json:"user_id"`
	SavingsID   string `json:"savings_id,omitempty"`
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

type ChargeResult struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// apiResponse is the envelope Paystack wraps around every response.
type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize starts a hosted checkout session for first-time card
// entry. Amount is in the minor currency unit (kobo).
func (c *Client) Initialize(ctx context.Context, email string, amountMinor int64, metadata Metadata) (*InitializeResult, error) {
	// Supplying our own reference lets the webhook be correlated with
	// this request even if the gateway response is lost.
	payload := map[string]any{
		"email":        email,
		"amount":       amountMinor,
		"reference":    uuid.NewString(),
		"metadata":     metadata,
		"callback_url": c.callbackURL,
	}

	var result InitializeResult
	err := c.post(ctx, "/transaction/initialize", payload, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// ChargeAuthorization charges a previously saved reusable authorization
// without user interaction. Crediting happens only when the webhook
// confirms the charge.
func (c *Client) ChargeAuthorization(ctx context.Context, email string, amountMinor int64, authorizationCode string, metadata Metadata) (*ChargeResult, error) {
	payload := map[string]any{
		"email":              email,
		"amount":             amountMinor,
		"reference":          uuid.NewString(),
		"authorization_code": authorizationCode,
		"metadata":           metadata,
	}

	var result ChargeResult
	err := c.post(ctx, "/transaction/charge_authorization", payload, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, dst any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer res.Body.Close()

	var envelope apiResponse
	err = json.NewDecoder(res.Body).Decode(&envelope)
	if err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrGateway, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 || !envelope.Status {
		return fmt.Errorf("%w: %s (HTTP %d)", ErrGateway, envelope.Message, res.StatusCode)
	}

	return json.Unmarshal(envelope.Data, dst)
}
