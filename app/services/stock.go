package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/pkg/logger"
)

// StockService is the staff stock editor.
type StockService struct {
	products *repositories.ProductRepository
}

func NewStockService(products *repositories.ProductRepository) *StockService {
	return &StockService{products: products}
}

// List returns every product alphabetically, out-of-stock ones included.
func (s *StockService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.AllByName(ctx)
}

// Product loads the product being edited.
func (s *StockService) Product(ctx context.Context, id uint) (models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		return models.Product{}, notFound(err, "product", id)
	}
	return p, nil
}

// ParseQuantity accepts a non-negative integer.
func ParseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("quantity %q: %w", raw, ErrInvalidQuantity)
	}
	return n, nil
}

// Update sets the stock of a product from the raw form value and returns the
// updated product. Products at zero stock drop out of the catalog.
func (s *StockService) Update(ctx context.Context, id uint, raw string) (models.Product, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	qty, err := ParseQuantity(raw)
	if err != nil {
		return p, err
	}
	if err := s.products.SetStock(ctx, id, qty); err != nil {
		return p, notFound(err, "product", id)
	}
	logger.WithCtx(ctx).Info("stock: updated", "product_id", id, "from", p.Stock, "to", qty)
	p.Stock = qty
	return p, nil
}
