package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
)

const (
	// CartSessionKey is where the cart lives in the session.
	CartSessionKey = "cart"
	// MaxPerItem caps the quantity of a single product in the cart.
	MaxPerItem = 50
)

// Money thresholds shared by the cart view and checkout.
var (
	MinimumOrder          = decimal.RequireFromString("10.00")
	FreeShippingThreshold = decimal.RequireFromString("100.00")
	ShippingFee           = decimal.RequireFromString("10.00")
)

// SessionValues is the part of a session the cart needs.
type SessionValues interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Delete(key string)
}

// Cart is a product-id → quantity counter. Keys are decimal product ids;
// quantities are always positive.
type Cart struct {
	items map[string]int
}

// LoadCart reads the cart from the session, tolerating the numeric types a
// session store may decode into.
func LoadCart(sess SessionValues) *Cart {
	c := &Cart{items: map[string]int{}}
	raw, ok := sess.Get(CartSessionKey)
	if !ok {
		return c
	}
	switch m := raw.(type) {
	case map[string]int:
		for k, v := range m {
			c.items[k] = v
		}
	case map[string]interface{}:
		for k, v := range m {
			switch n := v.(type) {
			case float64:
				c.items[k] = int(n)
			case int:
				c.items[k] = n
			case int64:
				c.items[k] = int(n)
			}
		}
	}
	for k, v := range c.items {
		if v <= 0 {
			delete(c.items, k)
		}
	}
	return c
}

// Save writes the cart back to the session.
func (c *Cart) Save(sess SessionValues) {
	if len(c.items) == 0 {
		sess.Delete(CartSessionKey)
		return
	}
	out := make(map[string]int, len(c.items))
	for k, v := range c.items {
		out[k] = v
	}
	sess.Set(CartSessionKey, out)
}

func key(productID uint) string { return strconv.FormatUint(uint64(productID), 10) }

// Quantity returns how many units of the product are in the cart.
func (c *Cart) Quantity(productID uint) int { return c.items[key(productID)] }

// Add puts one more unit in the cart. At MaxPerItem it returns
// ErrCartItemLimit and leaves the cart unchanged.
func (c *Cart) Add(productID uint) error {
	k := key(productID)
	if c.items[k] >= MaxPerItem {
		return fmt.Errorf("product %d: %w", productID, ErrCartItemLimit)
	}
	c.items[k]++
	return nil
}

// Remove takes one unit out, dropping the line at zero. Absent products are
// ignored.
func (c *Cart) Remove(productID uint) {
	k := key(productID)
	if _, ok := c.items[k]; !ok {
		return
	}
	c.items[k]--
	if c.items[k] <= 0 {
		delete(c.items, k)
	}
}

func (c *Cart) Clear() { c.items = map[string]int{} }

func (c *Cart) Empty() bool { return len(c.items) == 0 }

// CartEntry is a raw cart line.
type CartEntry struct {
	ProductID uint
	Quantity  int
}

// Entries returns the lines ordered by product id. Keys that are not valid
// ids are skipped.
func (c *Cart) Entries() []CartEntry {
	out := make([]CartEntry, 0, len(c.items))
	for k, q := range c.items {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		out = append(out, CartEntry{ProductID: uint(id), Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// ─── View ─────────────────────────────────────────────────────────────────────

type CartLine struct {
	Product   models.Product  `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartView struct {
	Lines           []CartLine      `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	MinimumOrder    decimal.Decimal `json:"minimum_order"`
	MinimumOrderMet bool            `json:"minimum_order_met"`
}

// CartService resolves carts against the catalog.
type CartService struct {
	products *repositories.ProductRepository
}

func NewCartService(products *repositories.ProductRepository) *CartService {
	return &CartService{products: products}
}

// Add checks the product exists, then adds one unit.
func (s *CartService) Add(ctx context.Context, cart *Cart, productID uint) (models.Product, error) {
	p, err := s.products.Find(ctx, productID)
	if err != nil {
		return models.Product{}, notFound(err, "product", productID)
	}
	if err := cart.Add(productID); err != nil {
		return p, err
	}
	return p, nil
}

// View prices every line at current product prices. A product that no longer
// exists fails the whole view with ErrNotFound.
func (s *CartService) View(ctx context.Context, cart *Cart) (CartView, error) {
	entries := cart.Entries()
	ids := make([]uint, len(entries))
	for i, e := range entries {
		ids[i] = e.ProductID
	}
	products, err := s.products.FindMany(ctx, ids)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart products: %w", err)
	}

	view := CartView{Lines: make([]CartLine, 0, len(entries)), Subtotal: decimal.Zero, MinimumOrder: MinimumOrder}
	for _, e := range entries {
		p, ok := products[e.ProductID]
		if !ok {
			return CartView{}, fmt.Errorf("cart product %d: %w", e.ProductID, ErrNotFound)
		}
		line := p.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
		view.Lines = append(view.Lines, CartLine{Product: p, Quantity: e.Quantity, LineTotal: line})
		view.Subtotal = view.Subtotal.Add(line)
	}
	view.MinimumOrderMet = view.Subtotal.GreaterThanOrEqual(MinimumOrder)
	return view, nil
}
