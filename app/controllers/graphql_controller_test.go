package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gqlProduct struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

func TestGraphQLCatalog(t *testing.T) {
	s := newSite(t)
	p := s.product("Cupcake Doce de Leite", "9.5", 3)
	s.product("Cupcake Esgotado", "9.00", 0)
	c := s.client()

	var list struct {
		Data struct {
			Products []gqlProduct `json:"products"`
		} `json:"data"`
	}
	res := c.PostJSON("/graphql", map[string]string{"query": `{ products(q: "leite") { id name price stock } }`})
	res.AssertStatus(http.StatusOK)
	res.Decode(&list)
	require.Len(t, list.Data.Products, 1)
	assert.Equal(t, gqlProduct{ID: int(p.ID), Name: p.Name, Price: "9.50", Stock: 3}, list.Data.Products[0])

	var one struct {
		Data struct {
			Product *gqlProduct `json:"product"`
		} `json:"data"`
	}
	c.PostJSON("/graphql", map[string]interface{}{
		"query":     `query One($id: Int!) { product(id: $id) { id name } }`,
		"variables": map[string]interface{}{"id": p.ID},
	}).Decode(&one)
	require.NotNil(t, one.Data.Product)
	assert.Equal(t, p.Name, one.Data.Product.Name)

	c.Get(fmt.Sprintf("/graphql?query=%s", "%7B%20product(id%3A%20999)%20%7B%20id%20%7D%20%7D")).Decode(&one)
	assert.Nil(t, one.Data.Product)
}
