// Package ctx provides the request context used by storefront handlers.
//
// Handlers receive a single *Context instead of (http.ResponseWriter,
// *http.Request):
//
//	func (h *CartController) Add(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    ...
//	    c.Success(view)
//	}
//
//	router.Get("/carrinho/adicionar/{id}/", "cart.add", ctx.Wrap(h.Add))
package ctx

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/cupcakery/storefront/pkg/auth"
	"github.com/cupcakery/storefront/pkg/bind"
	"github.com/cupcakery/storefront/pkg/logger"
	"github.com/cupcakery/storefront/pkg/response"
	"github.com/cupcakery/storefront/pkg/session"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ─── Context ──────────────────────────────────────────────────────────────────

type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]any
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	for k := range c.store {
		delete(c.store, k)
	}
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a positive integer path parameter.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// QueryInt returns the query value as an int, or def when absent/malformed.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

// PostForm returns a form field from the request body.
func (c *Context) PostForm(key string) string {
	return c.R.PostFormValue(key)
}

func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

func (c *Context) Method() string { return c.R.Method }

// ClientIP returns the real client IP, respecting X-Forwarded-For.
func (c *Context) ClientIP() string {
	return ClientIP(c.R)
}

// ClientIP is the request-level form of Context.ClientIP, shared with the
// rate limiter.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// IsFormPost reports whether the request is a browser form submission that
// expects a redirect rather than a JSON body.
func (c *Context) IsFormPost() bool {
	if c.R.Method != http.MethodPost {
		return false
	}
	if strings.Contains(c.R.Header.Get("Accept"), "application/json") {
		return false
	}
	ct, _, _ := mime.ParseMediaType(c.R.Header.Get("Content-Type"))
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

func (c *Context) Context() context.Context { return c.R.Context() }

// Session returns the request's session.
func (c *Context) Session() *session.Session {
	return session.FromCtx(c.R)
}

// Identity returns the authenticated user, if any.
func (c *Context) Identity() (auth.Identity, bool) {
	return auth.FromCtx(c.R.Context())
}

// UserID returns the authenticated user id, or 0.
func (c *Context) UserID() uint {
	id, _ := c.Identity()
	return id.UserID
}

// ─── Per-request store ────────────────────────────────────────────────────────

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

func (c *Context) GetString(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

func (c *Context) GetUint(key string) uint {
	v, _ := c.Get(key)
	u, _ := v.(uint)
	return u
}

// ─── Binding / Validation ─────────────────────────────────────────────────────

// Bind decodes a JSON or form body into dest and validates it. On failure it
// writes a 400 or 422 response and returns false.
//
//	var input RegisterInput
//	if !c.Bind(&input) {
//	    return
//	}
func (c *Context) Bind(dest any) bool {
	errs, err := bind.Request(c.R, dest)
	return c.bindResult(errs, err)
}

// BindJSON is Bind restricted to JSON bodies.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	return c.bindResult(errs, err)
}

func (c *Context) bindResult(errs map[string]string, err error) bool {
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes v with the given status code.
func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	c.status = code
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

// Success sends a 200 JSON envelope: {"status":200,"data":...}
func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// SuccessMessage sends a 200 envelope with a user-facing message.
func (c *Context) SuccessMessage(message string, data any) {
	c.JSON(http.StatusOK, envelope{Status: http.StatusOK, Message: message, Data: data})
}

func (c *Context) Created(data any) {
	c.JSON(http.StatusCreated, envelope{Status: http.StatusCreated, Data: data})
}

func (c *Context) Error(code int, message string) {
	c.JSON(code, envelope{Status: code, Message: message})
}

// ErrorData sends an error envelope that also echoes data (e.g. the form
// context a user needs to retry).
func (c *Context) ErrorData(code int, message string, data any) {
	c.JSON(code, envelope{Status: code, Message: message, Data: data})
}

func (c *Context) ValidationError(errs map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: response.MsgInvalid,
		Errors:  errs,
	})
}

func (c *Context) Unauthorized(message ...string) {
	c.Error(http.StatusUnauthorized, first(message, response.MsgUnauthorized))
}

func (c *Context) Forbidden(message ...string) {
	c.Error(http.StatusForbidden, first(message, response.MsgForbidden))
}

func (c *Context) NotFound(message ...string) {
	c.Error(http.StatusNotFound, first(message, response.MsgNotFound))
}

// Redirect sends an HTTP redirect response.
func (c *Context) Redirect(code int, url string) {
	c.status = code
	http.Redirect(c.W, c.R, url, code)
}

// RedirectBack redirects to the Referer, or to fallback when absent.
func (c *Context) RedirectBack(fallback string) {
	target := c.R.Referer()
	if target == "" {
		target = fallback
	}
	c.Redirect(http.StatusSeeOther, target)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }

// ─── Error mapping ────────────────────────────────────────────────────────────

type errorRule struct {
	target error
	status int
}

var (
	rulesMu sync.RWMutex
	rules   []errorRule
)

// MapError registers the HTTP status for errors matching target via
// errors.Is. Rules are checked in registration order.
func MapError(target error, status int) {
	rulesMu.Lock()
	rules = append(rules, errorRule{target: target, status: status})
	rulesMu.Unlock()
}

// StatusFor returns the mapped status for err and the matched target, or
// 500 and nil when no rule matches.
func StatusFor(err error) (int, error) {
	rulesMu.RLock()
	defer rulesMu.RUnlock()
	for _, r := range rules {
		if errors.Is(err, r.target) {
			return r.status, r.target
		}
	}
	return http.StatusInternalServerError, nil
}

// Fail writes the response for err. Mapped errors are answered with their
// status and the matched error's message; anything else is logged and
// answered with a generic 500.
func (c *Context) Fail(err error) {
	c.FailData(err, nil)
}

// FailData is Fail with a data payload echoed in the envelope.
func (c *Context) FailData(err error, data any) {
	status, target := StatusFor(err)
	if target == nil {
		logger.WithCtx(c.Context()).Error("request failed",
			"error", err,
			"method", c.R.Method,
			"path", c.R.URL.Path,
		)
		c.Error(status, response.MsgInternal)
		return
	}
	c.ErrorData(status, target.Error(), data)
}

// ─── JSON envelope (mirrors pkg/response) ────────────────────────────────────

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func first(values []string, def string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return def
}
