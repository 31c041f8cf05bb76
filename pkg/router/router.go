// Package router wraps chi with named routes and prefix groups that carry
// their own middleware.
package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Middleware func(http.Handler) http.Handler

// Route is one registered method/path pair, listed by `storefront route:list`.
type Route struct {
	Method string
	Path   string
	Name   string
}

// Group registers routes under a path prefix, wrapped in the group's
// middleware (outer groups first).
type Group struct {
	r      *Router
	prefix string
	mws    []Middleware
}

// Router owns the chi mux and the name table. Routes registered on it
// directly go through the root group.
type Router struct {
	root Group
	mux  chi.Router

	mu    sync.RWMutex
	named map[string]string
	table []Route
}

// New returns a router whose paths match with or without a trailing slash.
func New() *Router {
	r := &Router{mux: chi.NewRouter(), named: map[string]string{}}
	r.mux.Use(chimw.StripSlashes)
	r.root = Group{r: r, prefix: "/"}
	return r
}

func (r *Router) Group(prefix string, mws ...Middleware) *Group { return r.root.Group(prefix, mws...) }

func (r *Router) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.root.Get(path, name, h, mws...)
}

func (r *Router) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.root.Post(path, name, h, mws...)
}

func (r *Router) Handler() http.Handler { return r.mux }

// Use adds middleware around every route, matched or not. It must be called
// before any route is registered.
func (r *Router) Use(mws ...Middleware) {
	for _, mw := range mws {
		r.mux.Use(mw)
	}
}

// NotFound and MethodNotAllowed replace chi's plain-text defaults.
func (r *Router) NotFound(h http.HandlerFunc)         { r.mux.NotFound(h) }
func (r *Router) MethodNotAllowed(h http.HandlerFunc) { r.mux.MethodNotAllowed(h) }

// Routes returns every registered route sorted by path, then method.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	out := append([]Route(nil), r.table...)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// URL builds the path of a named route, substituting {param} placeholders.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	r.mu.RLock()
	path, ok := r.named[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("router: no route named %q", name)
	}

	for k, v := range params {
		path = strings.ReplaceAll(path, "{"+k+"}", v)
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("router: missing parameters for %q: %s", name, path)
	}
	return path, nil
}

func (r *Router) add(method, path, name string, h http.Handler) {
	r.mux.Method(method, path, h)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = append(r.table, Route{Method: method, Path: path, Name: name})
	if name != "" {
		r.named[name] = path
	}
}

// Group opens a nested group. Its middleware runs inside the parent's.
func (g *Group) Group(prefix string, mws ...Middleware) *Group {
	return &Group{r: g.r, prefix: joinPath(g.prefix, prefix), mws: g.with(mws)}
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodGet, path, name, h, mws)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodPost, path, name, h, mws)
}

func (g *Group) handle(method, path, name string, h http.Handler, mws []Middleware) {
	all := g.with(mws)
	for i := len(all) - 1; i >= 0; i-- {
		h = all[i](h)
	}
	g.r.add(method, joinPath(g.prefix, path), name, h)
}

func (g *Group) with(mws []Middleware) []Middleware {
	out := make([]Middleware, 0, len(g.mws)+len(mws))
	return append(append(out, g.mws...), mws...)
}

// joinPath joins segments into "/a/b", dropping empty and slash-only parts.
func joinPath(parts ...string) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return "/" + strings.Join(segs, "/")
}
