// Package session provides cookie-identified server-side sessions.
//
// Usage (middleware):
//
//	r.Use(session.Middleware(store, session.DefaultOptions()))
//
// Usage (handler):
//
//	sess := session.FromCtx(r)
//	sess.Set("user_id", 42)
//
// A changed session is persisted automatically right before the response
// headers go out; handlers may also call Save explicitly.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/cupcakery/storefront/pkg/logger"
)

// ------------------- Options -------------------

type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: "storefront_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		Secure:     false,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// ------------------- Session -------------------

type ctxKey struct{}

// Session is an in-request session handle. It is not safe for concurrent use;
// each request owns its own handle.
type Session struct {
	id      string
	oldID   string
	data    map[string]interface{}
	opts    Options
	store   Store
	changed bool
}

// newID generates a cryptographically random 32-byte hex session ID.
func newID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("session: crypto/rand: %v", err))
	}
	return hex.EncodeToString(b)
}

func (s *Session) Set(key string, value interface{}) {
	s.data[key] = value
	s.changed = true
}

func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

// GetInt accepts the numeric shapes a value can take before and after a JSON
// round trip through the store.
func (s *Session) GetInt(key string) (int, bool) {
	v, ok := s.data[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case uint:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; !ok {
		return
	}
	delete(s.data, key)
	s.changed = true
}

// Regenerate moves the data to a fresh id. Call it on privilege changes such
// as login.
func (s *Session) Regenerate() {
	if s.oldID == "" {
		s.oldID = s.id
	}
	s.id = newID()
	s.changed = true
}

// Invalidate drops all data and rotates the id (logout).
func (s *Session) Invalidate() {
	s.data = map[string]interface{}{}
	s.Regenerate()
}

func (s *Session) ID() string { return s.id }

// Save persists the session and writes the cookie. It is a no-op when nothing
// changed.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed || s.store == nil {
		return nil
	}

	if s.oldID != "" {
		if err := s.store.Delete(ctx, s.oldID); err != nil {
			return fmt.Errorf("session: delete old: %w", err)
		}
		s.oldID = ""
	}

	if err := s.store.Save(ctx, s.id, s.data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})

	s.changed = false
	return nil
}

// ------------------- Middleware -------------------

// saveOnWrite persists the session just before the first header write.
type saveOnWrite struct {
	http.ResponseWriter
	sess  *Session
	ctx   context.Context
	wrote bool
}

func (w *saveOnWrite) flush() {
	if w.wrote {
		return
	}
	w.wrote = true
	if err := w.sess.Save(w.ctx, w.ResponseWriter); err != nil {
		logger.WithCtx(w.ctx).Error("session: persist failed", "error", err)
	}
}

func (w *saveOnWrite) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *saveOnWrite) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

// Middleware loads (or creates) the session for every request and injects it
// into the request context.
func Middleware(store Store, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{opts: opts, store: store}

			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
				data, err := store.Load(r.Context(), cookie.Value)
				if err != nil {
					logger.WithCtx(r.Context()).Warn("session: load failed", "error", err)
				}
				if data != nil {
					sess.id = cookie.Value
					sess.data = data
				}
			}
			if sess.id == "" {
				sess.id = newID()
				sess.data = map[string]interface{}{}
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			sw := &saveOnWrite{ResponseWriter: w, sess: sess, ctx: ctx}
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.flush()
		})
	}
}

// FromCtx retrieves the session from the request context. Without the
// middleware it returns a throwaway session that is never persisted.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: newID(), data: map[string]interface{}{}, opts: DefaultOptions()}
}
