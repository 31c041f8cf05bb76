package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cupcakery/storefront/app/models"
)

// ReviewRepository handles Review and Favorite rows.
type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert inserts the review or, when the user already rated the product,
// overwrites it in the same statement. A re-rating counts as a new review:
// its timestamps move to now.
func (r *ReviewRepository) Upsert(ctx context.Context, rv *models.Review) error {
	now := time.Now().UTC()
	rv.CreatedAt, rv.UpdatedAt = now, now
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stars", "comment", "created_at", "updated_at"}),
	}).Create(rv).Error
}

// ForProduct lists a product's reviews, newest first.
func (r *ReviewRepository) ForProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	return reviews, err
}

// Average returns the mean star rating, 0 when there are no reviews.
func (r *ReviewRepository) Average(ctx context.Context, productID uint) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("AVG(stars)").
		Row().Scan(&avg)
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// Count returns the number of reviews a user left on a product (0 or 1).
func (r *ReviewRepository) Count(ctx context.Context, userID, productID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	return n, err
}

// ToggleFavorite deletes the favorite if present, otherwise creates it, and
// returns the new state.
func (r *ReviewRepository) ToggleFavorite(ctx context.Context, userID, productID uint) (bool, error) {
	favorited := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		favorited = true
		return tx.Create(&models.Favorite{UserID: userID, ProductID: productID}).Error
	})
	return favorited, err
}

// IsFavorite reports whether the user bookmarked the product.
func (r *ReviewRepository) IsFavorite(ctx context.Context, userID, productID uint) (bool, error) {
	var f models.Favorite
	err := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Favorites lists a user's bookmarked products.
func (r *ReviewRepository) Favorites(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favs []models.Favorite
	err := r.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favs).Error
	return favs, err
}
