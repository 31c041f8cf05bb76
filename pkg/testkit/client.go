// Package testkit drives an http.Handler the way a browser would: cookies set
// by one response are sent with the next request, so session state carries
// across calls.
//
//	c := testkit.NewClient(t, handler)
//	c.PostForm("/login/", url.Values{"username": {"ana"}, "password": {"segredo123"}})
//	res := c.Get("/meus-pedidos/")
//	res.AssertStatus(http.StatusOK)
package testkit

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Client sends requests straight to a handler, keeping a cookie jar.
type Client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	headers http.Header
}

func NewClient(t *testing.T, handler http.Handler) *Client {
	return &Client{
		t:       t,
		handler: handler,
		cookies: map[string]*http.Cookie{},
		headers: http.Header{},
	}
}

// WithHeader sets a header sent with every later request.
func (c *Client) WithHeader(key, value string) *Client {
	c.headers.Set(key, value)
	return c
}

// Cookie returns the stored cookie value for name.
func (c *Client) Cookie(name string) string {
	if ck, ok := c.cookies[name]; ok {
		return ck.Value
	}
	return ""
}

func (c *Client) Get(path string) *Response {
	return c.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// PostForm submits url-encoded values, like an HTML form.
func (c *Client) PostForm(path string, form url.Values) *Response {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

// PostJSON submits body encoded as JSON and asks for a JSON answer.
func (c *Client) PostJSON(path string, body interface{}) *Response {
	var buf bytes.Buffer
	require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.Do(req)
}

// Do sends req with the jar's cookies and stores the cookies it gets back.
func (c *Client) Do(req *http.Request) *Response {
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = &http.Cookie{Name: ck.Name, Value: ck.Value}
	}
	return &Response{t: c.t, Recorder: rec}
}

// Response wraps a recorded response with assertion helpers.
type Response struct {
	t        *testing.T
	Recorder *httptest.ResponseRecorder
}

func (r *Response) Status() int { return r.Recorder.Code }

// Location is the redirect target, or "".
func (r *Response) Location() string { return r.Recorder.Header().Get("Location") }

func (r *Response) String() string { return r.Recorder.Body.String() }

// Decode unmarshals the whole body into dest.
func (r *Response) Decode(dest interface{}) {
	r.t.Helper()
	require.NoError(r.t, json.Unmarshal(r.Recorder.Body.Bytes(), dest), "body: %s", r.String())
}
