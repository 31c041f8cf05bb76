package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/app/services"
)

func TestOrderDetailIsOwnerScoped(t *testing.T) {
	db := newDB(t)
	svc := services.NewOrderService(repositories.NewOrderRepository(db))
	owner := makeUser(t, db, "owner")
	other := makeUser(t, db, "other")
	p := makeProduct(t, db, "Clássico", "Chocolate", "10.00", 5)
	order := makeOrder(t, db, owner, "20.00", true, time.Now().UTC(), line{p, 1})

	_, err := svc.Detail(context.Background(), other.ID, order.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.Detail(context.Background(), owner.ID, order.ID+100)
	assert.ErrorIs(t, err, services.ErrNotFound)

	got, err := svc.Detail(context.Background(), owner.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Chocolate", got.Items[0].Product.Flavor)
}

func TestOrderListNewestFirst(t *testing.T) {
	db := newDB(t)
	svc := services.NewOrderService(repositories.NewOrderRepository(db))
	u := makeUser(t, db, "hugo")
	someoneElse := makeUser(t, db, "iris")
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	old := makeOrder(t, db, u, "10.00", true, base)
	recent := makeOrder(t, db, u, "30.00", true, base.Add(48*time.Hour))
	makeOrder(t, db, someoneElse, "99.00", true, base.Add(time.Hour))

	orders, err := svc.List(context.Background(), u.ID)
	require.NoError(t, err)

	require.Len(t, orders, 2)
	assert.Equal(t, recent.ID, orders[0].ID)
	assert.Equal(t, old.ID, orders[1].ID)
}

func TestOrderUpdateStatus(t *testing.T) {
	db := newDB(t)
	svc := services.NewOrderService(repositories.NewOrderRepository(db))
	u := makeUser(t, db, "joao")
	o := makeOrder(t, db, u, "10.00", true, time.Now().UTC())

	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), o.ID, "perdido"), services.ErrValidation)
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), o.ID+1, models.StatusPreparing), services.ErrNotFound)

	require.NoError(t, svc.UpdateStatus(context.Background(), o.ID, models.StatusOutForDelivery))
	var stored models.Order
	require.NoError(t, db.First(&stored, o.ID).Error)
	assert.Equal(t, models.StatusOutForDelivery, stored.Status)
	assert.Equal(t, "Saiu para Entrega", stored.StatusLabel())
}

func TestOrderCountToday(t *testing.T) {
	db := newDB(t)
	svc := services.NewOrderService(repositories.NewOrderRepository(db))
	u := makeUser(t, db, "lia")
	now := time.Date(2026, 7, 10, 15, 0, 0, 0, time.UTC)
	makeOrder(t, db, u, "10.00", true, now.Add(-time.Hour))
	makeOrder(t, db, u, "10.00", false, now.Add(-14*time.Hour))
	makeOrder(t, db, u, "10.00", true, now.Add(-16*time.Hour))

	n, err := svc.CountToday(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeletingUserKeepsOrders(t *testing.T) {
	db := newDB(t)
	u := makeUser(t, db, "mia")
	o := makeOrder(t, db, u, "10.00", true, time.Now().UTC())

	require.NoError(t, db.Delete(&u).Error)

	var stored models.Order
	require.NoError(t, db.First(&stored, o.ID).Error)
	assert.Nil(t, stored.UserID)
}
