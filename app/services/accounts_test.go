package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/auth"
)

func registration(username, cpf string) services.RegisterInput {
	return services.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		CPF:      cpf,
		Phone:    "11999990000",
		Address:  "Rua das Flores, 10",
		Password: "segredo123",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := newDB(t)
	svc := services.NewAccountService(repositories.NewUserRepository(db))

	in := registration("ana", "123.456.789-00")
	in.ReceivePromotions = true
	u, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, "segredo123", u.Password)
	assert.True(t, u.ReceivePromotions)
	assert.False(t, u.IsStaff)

	got, token, err := svc.Login(context.Background(), services.LoginInput{Username: "ana", Password: "segredo123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID())
	assert.Equal(t, auth.RoleCustomer, claims.Role)

	_, _, err = svc.Login(context.Background(), services.LoginInput{Username: "ana", Password: "errada"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), services.LoginInput{Username: "ninguem", Password: "segredo123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRegisterConflicts(t *testing.T) {
	db := newDB(t)
	svc := services.NewAccountService(repositories.NewUserRepository(db))
	_, err := svc.Register(context.Background(), registration("bruno", "111.111.111-11"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registration("bruno", "222.222.222-22"))
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = svc.Register(context.Background(), registration("bruna", "111.111.111-11"))
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestIdentity(t *testing.T) {
	db := newDB(t)
	svc := services.NewAccountService(repositories.NewUserRepository(db))
	staff := models.User{Username: "chefe", Email: "c@example.com", CPF: "9", IsStaff: true, Password: "x"}
	require.NoError(t, db.Create(&staff).Error)

	id, ok, err := svc.Identity(context.Background(), staff.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, auth.RoleStaff, id.Role)

	_, ok, err = svc.Identity(context.Background(), staff.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetPromotions(t *testing.T) {
	db := newDB(t)
	svc := services.NewAccountService(repositories.NewUserRepository(db))
	in := registration("carla", "333")
	in.ReceivePromotions = true
	u, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	require.NoError(t, svc.SetPromotions(context.Background(), u.ID, false))
	got, err := svc.User(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, got.ReceivePromotions)

	assert.ErrorIs(t, svc.SetPromotions(context.Background(), u.ID+1, true), services.ErrNotFound)
}
