package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
)

// ProductDetail is a product page: the product, its reviews and average.
type ProductDetail struct {
	Product       models.Product  `json:"product"`
	Reviews       []models.Review `json:"reviews"`
	AverageRating float64         `json:"average_rating"`
	Favorited     bool            `json:"favorited"`
}

// ReviewService handles ratings and favorites.
type ReviewService struct {
	products *repositories.ProductRepository
	orders   *repositories.OrderRepository
	reviews  *repositories.ReviewRepository
}

func NewReviewService(products *repositories.ProductRepository, orders *repositories.OrderRepository, reviews *repositories.ReviewRepository) *ReviewService {
	return &ReviewService{products: products, orders: orders, reviews: reviews}
}

// Detail loads a product with reviews newest first. userID 0 is anonymous.
func (s *ReviewService) Detail(ctx context.Context, productID, userID uint) (ProductDetail, error) {
	p, err := s.products.Find(ctx, productID)
	if err != nil {
		return ProductDetail{}, notFound(err, "product", productID)
	}
	d := ProductDetail{Product: p}
	if d.Reviews, err = s.reviews.ForProduct(ctx, productID); err != nil {
		return ProductDetail{}, fmt.Errorf("reviews of product %d: %w", productID, err)
	}
	if d.AverageRating, err = s.reviews.Average(ctx, productID); err != nil {
		return ProductDetail{}, fmt.Errorf("average of product %d: %w", productID, err)
	}
	if userID != 0 {
		if d.Favorited, err = s.reviews.IsFavorite(ctx, userID, productID); err != nil {
			return ProductDetail{}, err
		}
	}
	return d, nil
}

// ParseStars accepts an integer from 1 to 5.
func ParseStars(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > 5 {
		return 0, fmt.Errorf("stars %q: %w", raw, ErrValidation)
	}
	return n, nil
}

// Rate records the user's rating of a product, replacing any earlier one.
// Only users with a paid order containing the product may rate it.
func (s *ReviewService) Rate(ctx context.Context, userID, productID uint, stars int, comment string) (models.Review, error) {
	if stars < 1 || stars > 5 {
		return models.Review{}, fmt.Errorf("stars %d: %w", stars, ErrValidation)
	}
	if _, err := s.products.Find(ctx, productID); err != nil {
		return models.Review{}, notFound(err, "product", productID)
	}

	bought, err := s.orders.HasPurchased(ctx, userID, productID)
	if err != nil {
		return models.Review{}, fmt.Errorf("purchase check: %w", err)
	}
	if !bought {
		return models.Review{}, fmt.Errorf("user %d product %d: %w", userID, productID, ErrNotPurchased)
	}

	rv := models.Review{ProductID: productID, UserID: userID, Stars: stars}
	if c := strings.TrimSpace(comment); c != "" {
		rv.Comment = &c
	}
	if err := s.reviews.Upsert(ctx, &rv); err != nil {
		return models.Review{}, fmt.Errorf("save review: %w", err)
	}
	return rv, nil
}

// ToggleFavorite flips the favorite and returns the new state.
func (s *ReviewService) ToggleFavorite(ctx context.Context, userID, productID uint) (bool, error) {
	if _, err := s.products.Find(ctx, productID); err != nil {
		return false, notFound(err, "product", productID)
	}
	on, err := s.reviews.ToggleFavorite(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return on, nil
}

// Favorites lists the user's bookmarked products.
func (s *ReviewService) Favorites(ctx context.Context, userID uint) ([]models.Favorite, error) {
	return s.reviews.Favorites(ctx, userID)
}
