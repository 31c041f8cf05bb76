package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/pkg/orm"
)

// CatalogFilter narrows the public product listing.
type CatalogFilter struct {
	Query      string // matched against name or flavor, case-insensitive
	CategoryID uint
}

// ProductRepository handles database operations for Product and Category.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Find looks up a product by primary key, with its category.
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error
	return p, err
}

// FindMany loads the given products keyed by id. Missing ids are absent from
// the map.
func (r *ProductRepository) FindMany(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// Catalog returns one page of in-stock products matching f, by name.
func (r *ProductRepository) Catalog(ctx context.Context, f CatalogFilter, p orm.Pagination) ([]models.Product, orm.Pagination, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).
		Preload("Category").
		Where("stock > 0")

	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(flavor) LIKE ?", like, like)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}

	var products []models.Product
	page, err := orm.Paginate(q.Order("name ASC, id ASC"), p, &products)
	return products, page, err
}

// AllByName lists every product, including out-of-stock ones, alphabetically.
func (r *ProductRepository) AllByName(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Preload("Category").Order("name ASC, id ASC").Find(&products).Error
	return products, err
}

// SetStock overwrites a product's stock quantity. It returns
// gorm.ErrRecordNotFound when no product has that id.
func (r *ProductRepository) SetStock(ctx context.Context, id uint, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("stock", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock takes qty units from the product only if that many are
// available. It reports false when the guard rejected the update.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Categories lists the category reference data.
func (r *ProductRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var cs []models.Category
	err := r.db.WithContext(ctx).Order("id ASC").Find(&cs).Error
	return cs, err
}
