package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
)

// OrderRepository handles database operations for Order and OrderItem.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(o).Error
}

func (r *OrderRepository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// ForUser lists a user's orders, newest first.
func (r *OrderRepository) ForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

// FindForUser loads an order with its items, scoped to its owner. Orders of
// other users are reported as gorm.ErrRecordNotFound.
func (r *OrderRepository) FindForUser(ctx context.Context, userID, orderID uint) (models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	return o, err
}

func (r *OrderRepository) Find(ctx context.Context, orderID uint) (models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, orderID).Error
	return o, err
}

// UpdateStatus sets an order's status. It returns gorm.ErrRecordNotFound when
// no order has that id.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountSince counts orders created at or after t.
func (r *OrderRepository) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("created_at >= ?", t).Count(&n).Error
	return n, err
}

// HasPurchased reports whether the user has a payment-confirmed order
// containing the product.
func (r *OrderRepository) HasPurchased(ctx context.Context, userID, productID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.payment_confirmed = ? AND order_items.product_id = ?", userID, true, productID).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}
