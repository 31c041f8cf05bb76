package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/pkg/session"
)

func run(h http.Handler, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "storefront_session" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestSessionPersistsBeforeHeaders(t *testing.T) {
	store := session.NewMemoryStore()
	mw := session.Middleware(store, session.DefaultOptions())

	var count int
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		n, _ := sess.GetInt("visits")
		count = n + 1
		sess.Set("visits", count)
		w.WriteHeader(http.StatusNoContent)
	}))

	first := run(h, nil)
	ck := sessionCookie(t, first)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, 1, store.Len())

	run(h, ck)
	run(h, ck)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, store.Len())
}

func TestReadOnlyRequestDoesNotSetCookie(t *testing.T) {
	store := session.NewMemoryStore()
	h := session.Middleware(store, session.DefaultOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = session.FromCtx(r).Get("cart")
		w.WriteHeader(http.StatusOK)
	}))

	rec := run(h, nil)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 0, store.Len())
}

func TestRegenerateDropsOldID(t *testing.T) {
	store := session.NewMemoryStore()
	mw := session.Middleware(store, session.DefaultOptions())

	set := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session.FromCtx(r).Set("cart", map[string]int{"1": 2})
	}))
	login := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Regenerate()
		sess.Set("_auth_user_id", uint(5))
	}))
	var cart interface{}
	var user int
	read := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		cart, _ = sess.Get("cart")
		user, _ = sess.GetInt("_auth_user_id")
	}))

	before := sessionCookie(t, run(set, nil))
	after := sessionCookie(t, run(login, before))
	require.NotEqual(t, before.Value, after.Value)
	assert.Equal(t, 1, store.Len())

	run(read, after)
	assert.Equal(t, map[string]interface{}{"1": float64(2)}, cart)
	assert.Equal(t, 5, user)

	// The old id no longer resolves.
	cart, user = nil, 0
	run(read, before)
	assert.Nil(t, cart)
	assert.Zero(t, user)
}

func TestInvalidateClearsData(t *testing.T) {
	store := session.NewMemoryStore()
	mw := session.Middleware(store, session.DefaultOptions())

	set := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session.FromCtx(r).Set("_auth_user_id", 5)
	}))
	logout := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session.FromCtx(r).Invalidate()
	}))
	var ok bool
	read := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = session.FromCtx(r).GetInt("_auth_user_id")
	}))

	ck := sessionCookie(t, run(set, nil))
	fresh := sessionCookie(t, run(logout, ck))
	run(read, fresh)
	assert.False(t, ok)
	run(read, ck)
	assert.False(t, ok)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "abc", map[string]interface{}{"k": "v"}, time.Millisecond))

	time.Sleep(5 * time.Millisecond)
	data, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, data)
}
