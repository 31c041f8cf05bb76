package services

import (
	"context"
	"fmt"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/pkg/orm"
)

// CatalogPage is one page of the storefront listing.
type CatalogPage struct {
	Products           []models.Product  `json:"products"`
	Categories         []models.Category `json:"categories"`
	SelectedCategoryID uint              `json:"selected_category_id,omitempty"`
	Query              string            `json:"q,omitempty"`
	Pagination         orm.Pagination    `json:"pagination"`
}

// CatalogService is the public product listing. Only in-stock products are
// shown.
type CatalogService struct {
	products *repositories.ProductRepository
}

func NewCatalogService(products *repositories.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) List(ctx context.Context, f repositories.CatalogFilter, page, perPage int) (CatalogPage, error) {
	products, p, err := s.products.Catalog(ctx, f, orm.NewPagination(page, perPage))
	if err != nil {
		return CatalogPage{}, fmt.Errorf("catalog: %w", err)
	}
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return CatalogPage{}, fmt.Errorf("categories: %w", err)
	}
	return CatalogPage{
		Products:           products,
		Categories:         categories,
		SelectedCategoryID: f.CategoryID,
		Query:              f.Query,
		Pagination:         p,
	}, nil
}

// Product returns a single product whether or not it is in stock.
func (s *CatalogService) Product(ctx context.Context, id uint) (models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		return models.Product{}, notFound(err, "product", id)
	}
	return p, nil
}
