package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/pkg/event"
	"github.com/cupcakery/storefront/pkg/logger"
	"github.com/cupcakery/storefront/pkg/metrics"
)

// EventOrderPlaced fires after an order commits, with an OrderPlaced payload.
const EventOrderPlaced = "order.placed"

// OrderPlaced is the payload of EventOrderPlaced.
type OrderPlaced struct {
	OrderID uint
	UserID  uint
	Total   decimal.Decimal
}

// Quote is the priced checkout preview.
type Quote struct {
	Cart     CartView        `json:"cart"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// CheckoutService turns a cart into a paid order.
type CheckoutService struct {
	db      *gorm.DB
	cart    *CartService
	payment PaymentAuthorizer
}

func NewCheckoutService(db *gorm.DB, cart *CartService, payment PaymentAuthorizer) *CheckoutService {
	return &CheckoutService{db: db, cart: cart, payment: payment}
}

// ShippingFor is the flat checkout shipping rule: free from
// FreeShippingThreshold up, ShippingFee below it.
func ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return ShippingFee
}

func reject(reason string, err error) error {
	metrics.CheckoutRejected.WithLabelValues(reason).Inc()
	return err
}

// Quote prices the cart from current product prices and applies the minimum
// order and shipping rules.
func (s *CheckoutService) Quote(ctx context.Context, cart *Cart) (Quote, error) {
	if cart.Empty() {
		return Quote{}, reject("empty_cart", ErrEmptyCart)
	}
	view, err := s.cart.View(ctx, cart)
	if err != nil {
		return Quote{}, err
	}
	if view.Subtotal.LessThan(MinimumOrder) {
		return Quote{}, reject("below_minimum", fmt.Errorf("subtotal %s: %w", view.Subtotal.StringFixed(2), ErrBelowMinimumOrder))
	}
	shipping := ShippingFor(view.Subtotal)
	return Quote{
		Cart:     view,
		Subtotal: view.Subtotal,
		Shipping: shipping,
		Total:    view.Subtotal.Add(shipping),
	}, nil
}

// Confirm quotes the cart, authorizes payment and, if approved, commits the
// order, its items and the stock decrements in one transaction. The cart is
// cleared only after the commit.
func (s *CheckoutService) Confirm(ctx context.Context, userID uint, cart *Cart, delivery string) (models.Order, error) {
	if delivery == "" {
		delivery = models.DeliveryShip
	}
	if !models.ValidDelivery(delivery) {
		return models.Order{}, fmt.Errorf("delivery type %q: %w", delivery, ErrValidation)
	}

	quote, err := s.Quote(ctx, cart)
	if err != nil {
		return models.Order{}, err
	}

	log := logger.WithCtx(ctx)
	ref := uuid.NewString()

	start := time.Now()
	approved, err := s.payment.Authorize(ctx, PaymentRequest{Reference: ref, Amount: quote.Total, UserID: userID})
	metrics.PaymentDuration.Observe(time.Since(start).Seconds())
	if err != nil || !approved {
		log.Warn("checkout: payment declined", "user_id", userID, "reference", ref, "total", quote.Total.StringFixed(2), "error", err)
		return models.Order{}, reject("payment_declined", fmt.Errorf("reference %s: %w", ref, ErrPaymentDeclined))
	}

	uid := userID
	order := models.Order{
		UserID:           &uid,
		DeliveryType:     delivery,
		Total:            quote.Total,
		Shipping:         quote.Shipping,
		Status:           models.StatusReceived,
		PaymentConfirmed: true,
		Reference:        ref,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repositories.NewOrderRepository(tx)
		products := repositories.NewProductRepository(tx)

		if err := orders.Create(ctx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, line := range quote.Cart.Lines {
			ok, err := products.DecrementStock(ctx, line.Product.ID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock of product %d: %w", line.Product.ID, err)
			}
			if !ok {
				return fmt.Errorf("product %d: %w", line.Product.ID, ErrInsufficientStock)
			}

			pid := line.Product.ID
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: &pid,
				Quantity:  line.Quantity,
				UnitPrice: line.Product.Price,
			}
			if err := orders.CreateItem(ctx, &item); err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			order.Items = append(order.Items, item)
		}
		return nil
	})
	if err != nil {
		s.voidPayment(ctx, ref)
		if errors.Is(err, ErrInsufficientStock) {
			log.Warn("checkout: stock ran out after payment", "user_id", userID, "reference", ref, "error", err)
			return models.Order{}, reject("insufficient_stock", err)
		}
		return models.Order{}, err
	}

	cart.Clear()
	metrics.OrdersPlaced.WithLabelValues(delivery).Inc()
	log.Info("checkout: order placed",
		"order_id", order.ID,
		"user_id", userID,
		"total", order.Total.StringFixed(2),
		"items", len(order.Items),
	)
	event.Fire(ctx, EventOrderPlaced, OrderPlaced{OrderID: order.ID, UserID: userID, Total: order.Total})

	return order, nil
}

// voidPayment releases an authorization whose order was rolled back. It
// runs even if the request was cancelled.
func (s *CheckoutService) voidPayment(ctx context.Context, ref string) {
	vctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.payment.Void(vctx, ref); err != nil {
		logger.WithCtx(ctx).Error("checkout: void failed, authorization left open", "reference", ref, "error", err)
	}
}
