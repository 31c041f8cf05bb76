package app

import (
	"net/http"
	"time"

	"github.com/cupcakery/storefront/config"
	"github.com/cupcakery/storefront/pkg/metrics"
	"github.com/cupcakery/storefront/pkg/middleware"
	"github.com/cupcakery/storefront/pkg/reqid"
	"github.com/cupcakery/storefront/pkg/response"
	"github.com/cupcakery/storefront/pkg/router"
	"github.com/cupcakery/storefront/pkg/session"
)

// buildHandler installs the global middleware, then the routes.
func buildHandler(a *Application) *router.Router {
	r := router.New()

	// Outermost first:
	//  1. Prometheus metrics, for total latency
	//  2. Recovery
	//  3. Request ID, before anything logs
	//  4. Logger, tagged with the request id
	//  5. CORS
	//  6. Rate limiter
	//  7. Session
	//  8. Application middleware (identity)
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CORSFromList(config.Get("CORS_ALLOWED_ORIGINS", "*"))))
	r.Use(middleware.RateLimit(200, time.Minute))
	r.Use(session.Middleware(a.sessions, a.sessOpts))
	r.Use(a.middleware...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Método não permitido.")
	})

	for _, fn := range a.routesFns {
		fn(r)
	}
	return r
}
