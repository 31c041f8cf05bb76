package http_test

import (
	"context"
	"encoding/json"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/pkg/http"
)

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(gohttp.StatusBadGateway)
			return
		}
		assert.Equal(t, "01001000", r.URL.Query().Get("cep"))
		w.Write([]byte(`{"prazo":"2 dias úteis"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL).
		Query("cep", "01001000").
		Retry(3, time.Millisecond).
		Send()
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())

	var out map[string]string
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, "2 dias úteis", out["prazo"])
}

func TestGiveUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.WriteHeader(gohttp.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := http.Get(srv.URL).Retry(2, time.Millisecond).Send()
	assert.ErrorContains(t, err, "2 attempt(s) failed")
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		calls.Add(1)
		w.WriteHeader(gohttp.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, resp.OK())
	assert.Error(t, resp.Throw())
}

func TestPostJSONBody(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, gohttp.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "segredo", r.Header.Get("X-Api-Key"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.WriteHeader(gohttp.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"echo": in["cep"]}) //nolint:errcheck
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL).
		Header("X-Api-Key", "segredo").
		Body(map[string]string{"cep": "20000000"}).
		WithContext(context.Background()).
		Send()
	require.NoError(t, err)
	assert.Equal(t, gohttp.StatusCreated, resp.StatusCode)
	var out map[string]string
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, "20000000", out["echo"])
}

func TestTimeoutPerAttempt(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := http.Get(srv.URL).Timeout(20 * time.Millisecond).Send()
	assert.Error(t, err)
}
