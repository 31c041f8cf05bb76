package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
)

// ReportRange bounds the orders included in a sales report. Zero times are
// open ends; To is exclusive.
type ReportRange struct {
	From time.Time
	To   time.Time
}

// TopProduct is one row of the best-sellers ranking.
type TopProduct struct {
	ProductID *uint  `json:"product_id"`
	Name      string `json:"name"`
	Flavor    string `json:"flavor"`
	Units     int64  `json:"units"`
}

// ReportRepository runs the sales aggregates.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// confirmed scopes a query on orders (aliased o) to paid orders in rng.
func confirmed(rng ReportRange) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("o.payment_confirmed = ?", true)
		if !rng.From.IsZero() {
			db = db.Where("o.created_at >= ?", rng.From)
		}
		if !rng.To.IsZero() {
			db = db.Where("o.created_at < ?", rng.To)
		}
		return db
	}
}

// Revenue sums the totals of the orders in range, and counts them.
func (r *ReportRepository) Revenue(ctx context.Context, rng ReportRange) (decimal.Decimal, int64, error) {
	var row struct {
		Total  decimal.Decimal
		Orders int64
	}
	err := r.db.WithContext(ctx).Table("orders AS o").
		Scopes(confirmed(rng)).
		Select("COALESCE(SUM(o.total), 0) AS total, COUNT(*) AS orders").
		Scan(&row).Error
	return row.Total.Round(2), row.Orders, err
}

// TopProducts ranks products by units sold in range. Ties go to the lower
// product id.
func (r *ReportRepository) TopProducts(ctx context.Context, rng ReportRange, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).Table("order_items AS oi").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Joins("LEFT JOIN products AS p ON p.id = oi.product_id").
		Scopes(confirmed(rng)).
		Select("oi.product_id AS product_id, COALESCE(p.name, '') AS name, COALESCE(p.flavor, '') AS flavor, SUM(oi.quantity) AS units").
		Group("oi.product_id, p.name, p.flavor").
		Order("units DESC, oi.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// Orders lists the orders in range, newest first.
func (r *ReportRepository) Orders(ctx context.Context, rng ReportRange) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Table("orders AS o").
		Scopes(confirmed(rng)).
		Order("o.created_at DESC, o.id DESC").
		Find(&orders).Error
	return orders, err
}
