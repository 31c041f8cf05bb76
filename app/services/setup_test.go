package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/app/services"
	_ "github.com/cupcakery/storefront/database/migrations"
	"github.com/cupcakery/storefront/pkg/auth"
	"github.com/cupcakery/storefront/pkg/cache"
	"github.com/cupcakery/storefront/pkg/database"
	"github.com/cupcakery/storefront/pkg/event"
	"github.com/cupcakery/storefront/pkg/migration"
)

func init() {
	auth.UseMinCost()
}

// newDB returns a migrated SQLite database in the test's temp dir.
func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = migration.New(db).Run()
	require.NoError(t, err)

	cache.Flush()
	event.Flush()
	t.Cleanup(event.Flush)
	return db
}

// memSession stands in for session.Session.
type memSession map[string]interface{}

func (m memSession) Get(k string) (interface{}, bool) {
	v, ok := m[k]
	return v, ok
}

func (m memSession) Set(k string, v interface{}) { m[k] = v }

func (m memSession) Delete(k string) { delete(m, k) }

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %s, got %s", want, got.String())
}

func makeCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func makeProduct(t *testing.T, db *gorm.DB, name, flavor, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Flavor: flavor, Price: money(price), Stock: stock}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func makeUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{
		Username: username,
		Email:    username + "@example.com",
		CPF:      "cpf-" + username,
		Password: "x",
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

type line struct {
	product models.Product
	qty     int
}

// makeOrder writes an order directly, bypassing checkout.
func makeOrder(t *testing.T, db *gorm.DB, user models.User, total string, confirmed bool, at time.Time, lines ...line) models.Order {
	t.Helper()
	uid := user.ID
	o := models.Order{
		UserID:           &uid,
		DeliveryType:     models.DeliveryShip,
		Total:            money(total),
		Shipping:         decimal.Zero,
		Status:           models.StatusReceived,
		PaymentConfirmed: confirmed,
		CreatedAt:        at,
	}
	require.NoError(t, db.Omit("Items").Create(&o).Error)
	for _, l := range lines {
		pid := l.product.ID
		require.NoError(t, db.Create(&models.OrderItem{
			OrderID: o.ID, ProductID: &pid, Quantity: l.qty, UnitPrice: l.product.Price,
		}).Error)
	}
	return o
}

// shop bundles the services over one database.
type shop struct {
	db       *gorm.DB
	products *repositories.ProductRepository
	orders   *repositories.OrderRepository
	cart     *services.CartService
	checkout *services.CheckoutService
}

func newShop(t *testing.T, payment services.PaymentAuthorizer) shop {
	t.Helper()
	db := newDB(t)
	products := repositories.NewProductRepository(db)
	cart := services.NewCartService(products)
	return shop{
		db:       db,
		products: products,
		orders:   repositories.NewOrderRepository(db),
		cart:     cart,
		checkout: services.NewCheckoutService(db, cart, payment),
	}
}

func (s shop) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := s.products.Find(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}
