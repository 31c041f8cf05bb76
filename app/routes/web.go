package routes

import (
	"net/http"
	"time"

	"github.com/cupcakery/storefront/app/controllers"
	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/config"
	"github.com/cupcakery/storefront/pkg/ctx"
	"github.com/cupcakery/storefront/pkg/logger"
	"github.com/cupcakery/storefront/pkg/metrics"
	"github.com/cupcakery/storefront/pkg/middleware"
	"github.com/cupcakery/storefront/pkg/rbac"
	"github.com/cupcakery/storefront/pkg/router"
)

// RegisterWeb mounts the storefront, the customer area and the staff
// dashboard. Session and identity middleware are installed by the kernel.
func RegisterWeb(r *router.Router, reg *services.Registry) {
	catalog := controllers.NewCatalogController(reg)
	cart := controllers.NewCartController(reg)
	checkout := controllers.NewCheckoutController(reg)
	orders := controllers.NewOrderController(reg)
	accounts := controllers.NewAccountController(reg)
	dashboard := controllers.NewDashboardController(reg)

	r.Get("/", "store.index", ctx.Wrap(catalog.Index))
	r.Get("/produto/{id}", "store.product", ctx.Wrap(catalog.Show))
	r.Post("/produto/{id}", "store.rate", ctx.Wrap(catalog.Rate), middleware.RequireAuth)
	r.Post("/produto/{id}/favoritar", "store.favorite", ctx.Wrap(catalog.Favorite), middleware.RequireAuth)
	r.Get("/favoritos", "store.favorites", ctx.Wrap(catalog.Favorites), middleware.RequireAuth)

	r.Get("/carrinho", "cart.show", ctx.Wrap(cart.Show))
	r.Get("/carrinho/adicionar/{id}", "cart.add", ctx.Wrap(cart.Add))
	r.Get("/carrinho/remover/{id}", "cart.remove", ctx.Wrap(cart.Remove))
	r.Get("/carrinho/calcular-frete", "cart.shipping", ctx.Wrap(cart.Shipping))

	r.Post("/cadastro", "accounts.register", ctx.Wrap(accounts.Register))
	r.Post("/login", "accounts.login", ctx.Wrap(accounts.Login), middleware.RateLimit(5, time.Minute))
	r.Post("/logout", "accounts.logout", ctx.Wrap(accounts.Logout))

	customer := r.Group("", middleware.RequireAuth)
	customer.Get("/finalizar-pedido", "checkout.quote", ctx.Wrap(checkout.Quote))
	customer.Post("/finalizar-pedido", "checkout.confirm", ctx.Wrap(checkout.Confirm))
	customer.Get("/meus-pedidos", "orders.index", ctx.Wrap(orders.Index))
	customer.Get("/meus-pedidos/{id}", "orders.show", ctx.Wrap(orders.Show))
	customer.Get("/preferencias-email", "accounts.preferences", ctx.Wrap(accounts.Preferences))
	customer.Post("/preferencias-email", "accounts.preferences.update", ctx.Wrap(accounts.Preferences))

	staff := r.Group("/dashboard", rbac.Require(rbac.ViewDashboard))
	staff.Get("/", "dashboard.index", ctx.Wrap(dashboard.Index))

	stock := staff.Group("/estoque", rbac.Require(rbac.ManageStock))
	stock.Get("/", "dashboard.stock", ctx.Wrap(dashboard.Stock))
	stock.Get("/editar/{id}", "dashboard.stock.edit", ctx.Wrap(dashboard.EditStock))
	stock.Post("/editar/{id}", "dashboard.stock.update", ctx.Wrap(dashboard.EditStock))

	reports := staff.Group("/relatorios", rbac.Require(rbac.ViewReports))
	reports.Get("/vendas", "dashboard.reports.sales", ctx.Wrap(dashboard.SalesReport))
	reports.Get("/vendas/exportar", "dashboard.reports.export", ctx.Wrap(dashboard.ExportSalesReport))

	staff.Post("/pedidos/{id}/status", "dashboard.orders.status", ctx.Wrap(dashboard.UpdateOrderStatus),
		rbac.Require(rbac.ManageOrders))
}

// RegisterOps mounts /metrics, /graphql and the local storage file server.
func RegisterOps(r *router.Router, reg *services.Registry) {
	r.Get("/metrics", "ops.metrics", metrics.Handler())

	gql, err := controllers.GraphQLHandler(reg)
	if err != nil {
		logger.Error("graphql: schema build failed, endpoint disabled", "error", err)
	} else {
		r.Get("/graphql", "ops.graphql.query", gql)
		r.Post("/graphql", "ops.graphql", gql)
	}

	files := http.StripPrefix("/storage/", http.FileServer(http.Dir(config.StorageLocalRoot())))
	r.Get("/storage/*", "ops.storage", files.ServeHTTP)
}
