package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/juleeperween/charity-backend/internal/models"
)

// PaymentVerifier looks up processor-side checkout sessions. The donation
// service depends on this interface so tests can substitute a stub.
type PaymentVerifier interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// CheckoutSession is the subset of the processor's session object the
// service consumes.
type CheckoutSession struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	PaymentIntent string            `json:"payment_intent"`
	AmountTotal   int64             `json:"amount_total"`
	Metadata      map[string]string `json:"metadata"`
}

const stripeRetries = 3

// StripeClient calls the Stripe API over plain HTTP with a bounded retry.
type StripeClient struct {
	secretKey string
	baseURL   string
	client    *http.Client
	logger    *slog.Logger
}

func NewStripeClient(secretKey string, logger *slog.Logger) *StripeClient {
	return &StripeClient{
		secretKey: secretKey,
		baseURL:   "https://api.stripe.com",
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

// GetCheckoutSession retrieves a checkout session by id, retrying transport
// and API failures with linear backoff.
func (c *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if c.secretKey == "" {
		return nil, &models.UpstreamError{Service: "stripe", Err: fmt.Errorf("STRIPE_SECRET_KEY not set")}
	}

	endpoint := c.baseURL + "/v1/checkout/sessions/" + url.PathEscape(sessionID)

	var lastErr error
	for attempt := 1; attempt <= stripeRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, &models.UpstreamError{Service: "stripe", Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+c.secretKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("stripe session lookup failed", "attempt", attempt, "error", err)
		} else if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			c.logger.Warn("stripe session lookup failed", "attempt", attempt, "status", resp.StatusCode)
		} else {
			defer resp.Body.Close()
			var session CheckoutSession
			if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
				return nil, &models.UpstreamError{Service: "stripe", Err: fmt.Errorf("decode session: %w", err)}
			}
			return &session, nil
		}

		if attempt < stripeRetries {
			select {
			case <-ctx.Done():
				return nil, &models.UpstreamError{Service: "stripe", Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return nil, &models.UpstreamError{Service: "stripe", Err: fmt.Errorf("session lookup failed after %d attempts: %w", stripeRetries, lastErr)}
}
