package services

import (
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/config"
)

// Registry holds every storefront service over one database.
type Registry struct {
	Catalog  *CatalogService
	Reviews  *ReviewService
	Cart     *CartService
	Checkout *CheckoutService
	Shipping *ShippingService
	Orders   *OrderService
	Stock    *StockService
	Reports  *ReportService
	Accounts *AccountService
}

// NewRegistry wires the repositories and services. Nil collaborators fall
// back to the configured ones (see PaymentFromConfig, QuoterFromConfig).
func NewRegistry(db *gorm.DB, payment PaymentAuthorizer, quoter ShippingQuoter) *Registry {
	if payment == nil {
		payment = PaymentFromConfig()
	}
	if quoter == nil {
		quoter = QuoterFromConfig()
	}

	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)
	cart := NewCartService(products)

	return &Registry{
		Catalog:  NewCatalogService(products),
		Reviews:  NewReviewService(products, orders, repositories.NewReviewRepository(db)),
		Cart:     cart,
		Checkout: NewCheckoutService(db, cart, payment),
		Shipping: NewShippingService(quoter),
		Orders:   NewOrderService(orders),
		Stock:    NewStockService(products),
		Reports:  NewReportService(repositories.NewReportRepository(db)),
		Accounts: NewAccountService(repositories.NewUserRepository(db)),
	}
}

// PaymentFromConfig returns the HTTP gateway when PAYMENT_GATEWAY_URL is set,
// the simulated one otherwise.
func PaymentFromConfig() PaymentAuthorizer {
	if url := config.PaymentGatewayURL(); url != "" {
		return NewHTTPPaymentGateway(url, config.PaymentGatewayKey())
	}
	return SimulatedPayment{}
}

// QuoterFromConfig returns the carrier client when SHIPPING_QUOTE_URL is set.
func QuoterFromConfig() ShippingQuoter {
	if url := config.ShippingQuoteURL(); url != "" {
		return HTTPShipping{URL: url}
	}
	return SimulatedShipping{}
}
