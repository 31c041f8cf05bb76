package testkit

import (
	"encoding/json"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the JSON shape written by pkg/response and pkg/ctx.
type Envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// AssertStatus checks the status code, printing the body on mismatch.
func (r *Response) AssertStatus(want int) bool {
	r.t.Helper()
	return assert.Equal(r.t, want, r.Status(), "body: %s", r.String())
}

// AssertRedirect checks for a 303 to location.
func (r *Response) AssertRedirect(location string) bool {
	r.t.Helper()
	return r.AssertStatus(303) && assert.Equal(r.t, location, r.Location())
}

// Envelope decodes the response envelope.
func (r *Response) Envelope() Envelope {
	r.t.Helper()
	var env Envelope
	r.Decode(&env)
	return env
}

// Data decodes the envelope's data field into dest.
func (r *Response) Data(dest interface{}) {
	r.t.Helper()
	env := r.Envelope()
	require.NotEmpty(r.t, env.Data, "envelope has no data: %s", r.String())
	require.NoError(r.t, json.Unmarshal(env.Data, dest))
}

// AssertJSON compares the body with expected after normalising both through
// JSON, so key order and whitespace never matter.
func (r *Response) AssertJSON(expected string) bool {
	r.t.Helper()
	var want, got interface{}
	require.NoError(r.t, json.Unmarshal([]byte(expected), &want), "expected is not valid JSON")
	if !assert.NoError(r.t, json.Unmarshal(r.Recorder.Body.Bytes(), &got), "body: %s", r.String()) {
		return false
	}
	return assert.Equal(r.t, want, got)
}
