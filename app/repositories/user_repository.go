package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername looks up a user by login name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, err
}

// Taken reports which of username and cpf already belong to an account.
func (r *UserRepository) Taken(ctx context.Context, username, cpf string) (usernameTaken, cpfTaken bool, err error) {
	var users []models.User
	err = r.db.WithContext(ctx).Select("username", "cpf").
		Where("username = ? OR cpf = ?", username, cpf).
		Find(&users).Error
	for _, u := range users {
		usernameTaken = usernameTaken || u.Username == username
		cpfTaken = cpfTaken || u.CPF == cpf
	}
	return usernameTaken, cpfTaken, err
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// SetReceivePromotions updates the marketing opt-in flag.
func (r *UserRepository) SetReceivePromotions(ctx context.Context, id uint, on bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("receive_promotions", on)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
