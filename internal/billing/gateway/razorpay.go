// Package gateway is the boundary to the external payment processor
// (Razorpay-compatible orders API). Only the order id and verification
// outcome ever cross back into the engine; cardholder data never does.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
)

// Order is the gateway's record of a payment intent.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Client calls the gateway's orders API with basic auth. KeyID is public
// and returned to browsers for checkout; keySecret signs requests and
// settlement signatures and never leaves the process.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewClient(baseURL, keyID, keySecret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: timeout},
	}
}

// KeyID returns the public key the payer's client needs to complete
// checkout.
func (c *Client) KeyID() string { return c.keyID }

// CreateOrder opens a payment intent for amount in the smallest currency
// unit. Failures surface as ErrGatewayUnavailable; the caller may retry
// with backoff, this client never does.
func (c *Client) CreateOrder(ctx context.Context, amount int64, receipt string) (*Order, error) {
	body, err := json.Marshal(orderRequest{Amount: amount, Currency: "INR", Receipt: receipt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d, body: %s",
			apperr.ErrGatewayUnavailable, resp.StatusCode, raw)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: failed to decode order: %v", apperr.ErrGatewayUnavailable, err)
	}
	return &order, nil
}

// VerifySignature recomputes the settlement HMAC-SHA256 over
// "order_id|payment_id" and compares it to the supplied hex signature in
// constant time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
