// Package app assembles the HTTP kernel and runs the servers.
//
//	app.New().
//	    Sessions(store).
//	    Use(middleware.Authenticate(resolve)).
//	    Routes(func(r *router.Router) { routes.RegisterWeb(r, reg) }).
//	    Probe(database.Ping).
//	    Serve(ctx)
//
// The package knows nothing about the storefront's models or services; they
// come in through the builder.
package app

import (
	"context"
	"net/http"

	"github.com/cupcakery/storefront/pkg/grpc"
	"github.com/cupcakery/storefront/pkg/router"
	"github.com/cupcakery/storefront/pkg/session"
)

// Application is the configured kernel. Build one with New.
type Application struct {
	routesFns  []func(*router.Router)
	middleware []router.Middleware
	sessions   session.Store
	sessOpts   session.Options
	probe      grpc.Probe
}

func New() *Application {
	return &Application{
		sessions: session.NewMemoryStore(),
		sessOpts: session.DefaultOptions(),
		probe:    func(context.Context) error { return nil },
	}
}

// Routes adds a route-registration callback. Callbacks run in order.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Use appends global middleware that runs after the session is loaded.
func (a *Application) Use(mw ...router.Middleware) *Application {
	a.middleware = append(a.middleware, mw...)
	return a
}

// Sessions sets the session store and cookie options.
func (a *Application) Sessions(store session.Store, opts session.Options) *Application {
	a.sessions = store
	a.sessOpts = opts
	return a
}

// Probe sets the readiness check reported by the gRPC health service.
func (a *Application) Probe(p grpc.Probe) *Application {
	a.probe = p
	return a
}

// Handler builds the HTTP handler.
func (a *Application) Handler() http.Handler {
	return buildHandler(a).Handler()
}

// RouteTable lists every route the callbacks register, for route:list.
func (a *Application) RouteTable() []router.Route {
	r := router.New()
	for _, fn := range a.routesFns {
		fn(r)
	}
	return r.Routes()
}

// Serve runs the HTTP and gRPC servers until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	return startServer(ctx, a)
}
