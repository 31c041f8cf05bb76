package graphql_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gql "github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/pkg/graphql"
)

func greetingSchema(t *testing.T) gql.Schema {
	t.Helper()
	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"greeting": &gql.Field{
				Type: gql.String,
				Args: gql.FieldConfigArgument{
					"name": &gql.ArgumentConfig{Type: gql.String, DefaultValue: "mundo"},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return "olá, " + p.Args["name"].(string), nil
				},
			},
		},
	})
	schema, err := graphql.NewSchema(query)
	require.NoError(t, err)
	return schema
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandlerPost(t *testing.T) {
	h := graphql.Handler(greetingSchema(t))
	body := `{"query":"query($n: String){ greeting(name: $n) }","variables":{"n":"Ana"}}`
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "olá, Ana", data["greeting"])
}

func TestHandlerGet(t *testing.T) {
	h := graphql.Handler(greetingSchema(t))
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/graphql?query=%7Bgreeting%7D", nil))

	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "olá, mundo", data["greeting"])
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	h := graphql.Handler(greetingSchema(t))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPut, "/graphql", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlerReportsQueryErrors(t *testing.T) {
	h := graphql.Handler(greetingSchema(t))
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ nope }"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["errors"])
}
