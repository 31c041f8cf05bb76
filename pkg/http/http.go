// Package http is a small fluent HTTP client with retries over resty, used
// for outbound calls to collaborator services.
//
//	resp, err := http.Get(quoteURL).
//	    Query("cep", cep).
//	    Timeout(3 * time.Second).
//	    Retry(2, 200*time.Millisecond).
//	    WithContext(ctx).
//	    Send()
package http

import (
	"context"
	"encoding/json"
	"fmt"
	gohttp "net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cupcakery/storefront/pkg/logger"
)

// client is the shared resty client behind every request. Retries and
// timeouts are applied per request by Send.
var client = resty.New().
	SetTransport(&gohttp.Transport{
		Proxy:               gohttp.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}).
	SetHeader("User-Agent", "storefront/1.0")

// ------------------- Request -------------------

type Request struct {
	method    string
	url       string
	query     url.Values
	headers   map[string]string
	body      interface{}
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	ctx       context.Context
}

func Get(url string) *Request  { return newRequest(gohttp.MethodGet, url) }
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:    method,
		url:       url,
		query:     map[string][]string{},
		headers:   map[string]string{"Accept": "application/json"},
		timeout:   10 * time.Second,
		retries:   1,
		retryWait: 200 * time.Millisecond,
		ctx:       context.Background(),
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Query adds a query-string parameter.
func (r *Request) Query(key, value string) *Request {
	r.query.Add(key, value)
	return r
}

// Body sets a JSON body.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// Timeout sets the per-attempt timeout.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets total attempts n and the initial backoff, which doubles per
// attempt. Transport errors and 5xx responses are retried.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n < 1 {
		n = 1
	}
	r.retries = n
	r.retryWait = wait
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// ------------------- Send -------------------

func (r *Request) Send() (*Response, error) {
	var lastErr error
	wait := r.retryWait

	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, err := r.do()
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if err == nil {
			err = resp.Throw()
		}
		lastErr = err

		if attempt < r.retries {
			logger.WithCtx(r.ctx).Warn("http: request failed, retrying",
				"url", r.url, "attempt", attempt, "backoff", wait, "error", err)
			select {
			case <-r.ctx.Done():
				return nil, r.ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
	}

	return nil, fmt.Errorf("http: %d attempt(s) failed for %s %s: %w", r.retries, r.method, r.url, lastErr)
}

func (r *Request) do() (*Response, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req := client.R().
		SetContext(ctx).
		SetHeaders(r.headers).
		SetQueryParamsFromValues(r.query)
	if r.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(r.body)
	}

	resp, err := req.Execute(r.method, r.url)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode(), Headers: resp.Header(), Raw: resp.Body()}, nil
}

// ------------------- Response -------------------

type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Throw returns an error if the response status is not 2xx.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("http: request failed with status %d: %s", r.StatusCode, string(r.Raw))
	}
	return nil
}
