package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/pkg/auth"
	"github.com/cupcakery/storefront/pkg/logger"
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username          string `json:"username" form:"username" validate:"required,max=150"`
	Email             string `json:"email" form:"email" validate:"required,email,max=254"`
	CPF               string `json:"cpf" form:"cpf" validate:"required,min=11,max=14"`
	Phone             string `json:"telefone" form:"telefone" validate:"max=15"`
	Address           string `json:"endereco" form:"endereco"`
	ReceivePromotions bool   `json:"receber_promocoes" form:"receber_promocoes"`
	Password          string `json:"password" form:"password" validate:"required,min=8,max=72"`
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AccountService manages customer accounts.
type AccountService struct {
	users *repositories.UserRepository
}

func NewAccountService(users *repositories.UserRepository) *AccountService {
	return &AccountService{users: users}
}

// Register creates a customer account. A taken username or CPF is
// ErrConflict.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.CPF = strings.TrimSpace(in.CPF)

	userTaken, cpfTaken, err := s.users.Taken(ctx, in.Username, in.CPF)
	if err != nil {
		return models.User{}, fmt.Errorf("check uniqueness: %w", err)
	}
	if userTaken || cpfTaken {
		return models.User{}, fmt.Errorf("username taken=%t cpf taken=%t: %w", userTaken, cpfTaken, ErrConflict)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		Username:          in.Username,
		Email:             strings.TrimSpace(in.Email),
		CPF:               in.CPF,
		Phone:             strings.TrimSpace(in.Phone),
		Address:           strings.TrimSpace(in.Address),
		ReceivePromotions: in.ReceivePromotions,
		Password:          hash,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, fmt.Errorf("create user: %w", ErrConflict)
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	logger.WithCtx(ctx).Info("accounts: registered", "user_id", u.ID)
	return u, nil
}

// Login checks the credentials and returns the user plus an API token.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, "", ErrInvalidCredentials
		}
		return models.User{}, "", fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		logger.WithCtx(ctx).Warn("accounts: failed login", "username", u.Username)
		return models.User{}, "", ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(u.ID, u.Role())
	if err != nil {
		return models.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// Identity resolves a user id to its current role. Deleted users resolve to
// ok=false.
func (s *AccountService) Identity(ctx context.Context, userID uint) (auth.Identity, bool, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.Identity{}, false, nil
	}
	if err != nil {
		return auth.Identity{}, false, err
	}
	return auth.Identity{UserID: u.ID, Role: u.Role()}, true, nil
}

// User loads an account.
func (s *AccountService) User(ctx context.Context, userID uint) (models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, notFound(err, "user", userID)
	}
	return u, nil
}

// SetPromotions sets the marketing e-mail opt-in.
func (s *AccountService) SetPromotions(ctx context.Context, userID uint, on bool) error {
	if err := s.users.SetReceivePromotions(ctx, userID, on); err != nil {
		return notFound(err, "user", userID)
	}
	return nil
}
