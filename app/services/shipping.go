package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/cupcakery/storefront/pkg/cache"
	"github.com/cupcakery/storefront/pkg/http"
	"github.com/cupcakery/storefront/pkg/logger"
)

// ShippingQuote is an advisory delivery estimate for a postal code.
type ShippingQuote struct {
	Fee  decimal.Decimal `json:"valor"`
	Lead string          `json:"prazo"`
}

// ShippingQuoter prices delivery to a CEP.
type ShippingQuoter interface {
	Quote(ctx context.Context, cep string) (ShippingQuote, error)
}

// SimulatedShipping is the placeholder carrier table: CEPs in the 0xxxx
// region are close by.
type SimulatedShipping struct{}

func (SimulatedShipping) Quote(_ context.Context, cep string) (ShippingQuote, error) {
	if strings.HasPrefix(cep, "0") {
		return ShippingQuote{Fee: decimal.RequireFromString("5.00"), Lead: "2 dias úteis"}, nil
	}
	return ShippingQuote{Fee: decimal.RequireFromString("10.00"), Lead: "5 dias úteis"}, nil
}

// HTTPShipping asks a carrier rate service for the quote.
type HTTPShipping struct {
	URL string
}

func (h HTTPShipping) Quote(ctx context.Context, cep string) (ShippingQuote, error) {
	resp, err := http.Get(h.URL).
		Query("cep", cep).
		Timeout(3*time.Second).
		Retry(2, 200*time.Millisecond).
		WithContext(ctx).
		Send()
	if err != nil {
		return ShippingQuote{}, err
	}
	if err := resp.Throw(); err != nil {
		return ShippingQuote{}, err
	}
	var q ShippingQuote
	if err := resp.JSON(&q); err != nil {
		return ShippingQuote{}, err
	}
	return q, nil
}

// ShippingService validates the CEP and caches quotes per CEP.
type ShippingService struct {
	quoter ShippingQuoter
	ttl    time.Duration
}

func NewShippingService(q ShippingQuoter) *ShippingService {
	return &ShippingService{quoter: q, ttl: time.Hour}
}

// normalizeCEP keeps the digits of a postal code.
func normalizeCEP(cep string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, cep)
}

// Quote returns the estimate for cep. This estimate is not used by checkout,
// which charges its own flat fee.
func (s *ShippingService) Quote(ctx context.Context, cep string) (ShippingQuote, error) {
	cep = normalizeCEP(cep)
	if cep == "" {
		return ShippingQuote{}, ErrMissingInput
	}

	q, err := cache.Remember("shipping:"+cep, s.ttl, func() (ShippingQuote, error) {
		return s.quoter.Quote(ctx, cep)
	})
	if err != nil {
		logger.WithCtx(ctx).Warn("shipping: quote failed", "cep", cep, "error", err)
		return ShippingQuote{}, fmt.Errorf("cep %s: %v: %w", cep, err, ErrQuoteUnavailable)
	}
	return q, nil
}
