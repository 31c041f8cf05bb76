package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// PaymentRequest is what the gateway sees of an order being paid.
type PaymentRequest struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	UserID    uint            `json:"customer_id"`
}

// PaymentAuthorizer approves or declines a payment. An error means the
// outcome is unknown; checkout treats it as declined.
//
// Void releases an approved authorization whose order could not be
// committed.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, req PaymentRequest) (approved bool, err error)
	Void(ctx context.Context, reference string) error
}

// PaymentFunc adapts a function to PaymentAuthorizer. Void is a no-op.
type PaymentFunc func(ctx context.Context, req PaymentRequest) (bool, error)

func (f PaymentFunc) Authorize(ctx context.Context, req PaymentRequest) (bool, error) {
	return f(ctx, req)
}

func (PaymentFunc) Void(context.Context, string) error { return nil }

// SimulatedPayment approves every payment. Used when no gateway is configured.
type SimulatedPayment struct{}

func (SimulatedPayment) Authorize(context.Context, PaymentRequest) (bool, error) {
	return true, nil
}

func (SimulatedPayment) Void(context.Context, string) error { return nil }

// HTTPPaymentGateway authorizes payments against a PIX gateway's REST API.
type HTTPPaymentGateway struct {
	client *resty.Client
}

// NewHTTPPaymentGateway builds a gateway client for baseURL, authenticating
// with a bearer key.
func NewHTTPPaymentGateway(baseURL, key string) *HTTPPaymentGateway {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json").
		SetAuthToken(key)
	return &HTTPPaymentGateway{client: client}
}

type authorizeResponse struct {
	Status string `json:"status"`
}

func (g *HTTPPaymentGateway) Authorize(ctx context.Context, req PaymentRequest) (bool, error) {
	var out authorizeResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", req.Reference).
		SetBody(map[string]interface{}{
			"reference":   req.Reference,
			"amount":      req.Amount.StringFixed(2),
			"currency":    "BRL",
			"method":      "pix",
			"customer_id": req.UserID,
		}).
		SetResult(&out).
		Post("/payments/authorize")
	if err != nil {
		return false, fmt.Errorf("payment gateway: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("payment gateway: status %d: %s", resp.StatusCode(), resp.String())
	}
	return out.Status == "approved", nil
}

// Void cancels the authorization identified by reference.
func (g *HTTPPaymentGateway) Void(ctx context.Context, reference string) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", "void-"+reference).
		SetPathParam("reference", reference).
		Post("/payments/{reference}/void")
	if err != nil {
		return fmt.Errorf("payment gateway: void: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("payment gateway: void: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
