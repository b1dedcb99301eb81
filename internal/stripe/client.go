// Package stripe implements the payment.SessionCreator interface against the
// Stripe Checkout Sessions API.
package stripe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/stripe-checkout/internal/payment"
)

const sessionsPath = "/v1/checkout/sessions"

var _ payment.SessionCreator = (*Client)(nil)

// Client creates checkout sessions over HTTP. The http.Client controls the
// per-attempt timeout; the Client itself performs exactly one attempt per
// call and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client against the given API base URL
// (e.g. https://api.stripe.com).
func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// CreateSession posts a form-encoded Checkout Session request authorized
// with secretKey and returns the opaque session id. All failures are
// reported as *payment.GatewayError; transport errors and provider 5xx
// responses are marked retriable.
func (c *Client) CreateSession(ctx context.Context, secretKey string, p *payment.Payload) (string, error) {
	form := encodeForm(p)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+sessionsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &payment.GatewayError{Message: err.Error(), Retriable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &payment.GatewayError{Message: err.Error(), Retriable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &payment.GatewayError{
			Status:    resp.StatusCode,
			Message:   errorMessage(body),
			Retriable: resp.StatusCode >= http.StatusInternalServerError,
		}
	}

	var session struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return "", &payment.GatewayError{
			Status:  resp.StatusCode,
			Message: "malformed session response: " + err.Error(),
		}
	}
	if session.ID == "" {
		return "", &payment.GatewayError{
			Status:  resp.StatusCode,
			Message: "session response missing id",
		}
	}

	return session.ID, nil
}

// encodeForm flattens a payload into Stripe's bracketed form encoding.
func encodeForm(p *payment.Payload) url.Values {
	form := url.Values{}
	form.Set("mode", p.Mode)
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("payment_method_types[0]", "card")

	for i, li := range p.LineItems {
		prefix := "line_items[" + strconv.Itoa(i) + "]"
		form.Set(prefix+"[price_data][currency]", string(li.Currency))
		form.Set(prefix+"[price_data][product_data][name]", li.Name)
		form.Set(prefix+"[price_data][product_data][description]", li.Description)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(li.UnitAmountMinor, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(li.Quantity))
	}
	return form
}

// errorMessage extracts error.message from a Stripe error body, falling back
// to the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}
