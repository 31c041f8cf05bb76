package controllers_test

import (
	"net/http"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/routes"
	"github.com/cupcakery/storefront/app/services"
	_ "github.com/cupcakery/storefront/database/migrations"
	"github.com/cupcakery/storefront/pkg/app"
	"github.com/cupcakery/storefront/pkg/auth"
	"github.com/cupcakery/storefront/pkg/cache"
	"github.com/cupcakery/storefront/pkg/database"
	"github.com/cupcakery/storefront/pkg/event"
	"github.com/cupcakery/storefront/pkg/middleware"
	"github.com/cupcakery/storefront/pkg/migration"
	"github.com/cupcakery/storefront/pkg/router"
	"github.com/cupcakery/storefront/pkg/testkit"
)

func init() {
	auth.UseMinCost()
}

// site is the whole storefront over a fresh SQLite database.
type site struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
}

func newSite(t *testing.T) *site {
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

	reg := services.NewRegistry(db, services.SimulatedPayment{}, services.SimulatedShipping{})
	h := app.New().
		Use(middleware.Authenticate(reg.Accounts.Identity)).
		Routes(func(r *router.Router) {
			routes.RegisterWeb(r, reg)
			routes.RegisterOps(r, reg)
		}).
		Handler()

	return &site{t: t, db: db, handler: h}
}

func (s *site) client() *testkit.Client { return testkit.NewClient(s.t, s.handler) }

func (s *site) product(name, price string, stock int) models.Product {
	s.t.Helper()
	p := models.Product{Name: name, Flavor: "Baunilha", Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(s.t, s.db.Create(&p).Error)
	return p
}

func (s *site) stock(id uint) int {
	s.t.Helper()
	var p models.Product
	require.NoError(s.t, s.db.First(&p, id).Error)
	return p.Stock
}

// register signs up username through the public endpoint.
func (s *site) register(username string, staff bool) {
	s.t.Helper()
	s.client().PostJSON("/cadastro/", map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"cpf":      "000.000.000-" + username[:2],
		"password": "segredo123",
	}).AssertStatus(http.StatusCreated)

	if staff {
		require.NoError(s.t, s.db.Model(&models.User{}).
			Where("username = ?", username).
			Update("is_staff", true).Error)
	}
}

// login returns a client holding a logged-in session for username.
func (s *site) login(username string) *testkit.Client {
	s.t.Helper()
	c := s.client()
	c.PostForm("/login/", url.Values{
		"username": {username},
		"password": {"segredo123"},
	}).AssertRedirect("/")
	return c
}

func (s *site) user(username string) models.User {
	s.t.Helper()
	var u models.User
	require.NoError(s.t, s.db.Where("username = ?", username).First(&u).Error)
	return u
}
