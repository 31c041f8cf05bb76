package controllers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/services"
)

func TestCatalogListsInStockProducts(t *testing.T) {
	s := newSite(t)
	s.product("Cupcake Chocolate", "8.00", 3)
	s.product("Cupcake Morango", "8.00", 0)

	var page services.CatalogPage
	s.client().Get("/?q=cupcake").Data(&page)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Cupcake Chocolate", page.Products[0].Name)
}

func TestProductPageShowsOutOfStock(t *testing.T) {
	s := newSite(t)
	p := s.product("Cupcake Morango", "8.00", 0)
	c := s.client()

	var detail services.ProductDetail
	c.Get(fmt.Sprintf("/produto/%d/", p.ID)).Data(&detail)
	assert.Equal(t, p.ID, detail.Product.ID)
	assert.False(t, detail.Favorited)

	c.Get("/produto/999/").AssertStatus(http.StatusNotFound)
}

func TestRatingNeedsAPurchase(t *testing.T) {
	s := newSite(t)
	p := s.product("Cupcake Limão", "12.00", 5)
	s.register("ana", false)
	c := s.login("ana")
	rate := fmt.Sprintf("/produto/%d/", p.ID)

	s.client().PostJSON(rate, map[string]interface{}{"estrelas": 5}).AssertStatus(http.StatusUnauthorized)

	res := c.PostJSON(rate, map[string]interface{}{"estrelas": 5})
	res.AssertStatus(http.StatusForbidden)
	assert.Equal(t, services.ErrNotPurchased.Error(), res.Envelope().Message)

	c.Get(fmt.Sprintf("/carrinho/adicionar/%d/", p.ID)).AssertStatus(http.StatusOK)
	c.PostJSON("/finalizar-pedido/", map[string]string{}).AssertStatus(http.StatusCreated)

	c.PostJSON(rate, map[string]interface{}{"estrelas": 9}).AssertStatus(http.StatusUnprocessableEntity)
	c.PostJSON(rate, map[string]interface{}{"estrelas": 4, "comentario": "Bom"}).AssertStatus(http.StatusOK)
	c.PostForm(rate, url.Values{"estrelas": {"5"}, "comentario": {"Ótimo"}}).AssertRedirect(rate)

	var detail services.ProductDetail
	c.Get(rate).Data(&detail)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, 5, detail.Reviews[0].Stars)
	require.NotNil(t, detail.Reviews[0].Comment)
	assert.Equal(t, "Ótimo", *detail.Reviews[0].Comment)
	assert.Equal(t, 5.0, detail.AverageRating)
}

func TestFavoriteToggle(t *testing.T) {
	s := newSite(t)
	p := s.product("Cupcake Coco", "7.00", 2)
	s.register("ana", false)
	c := s.login("ana")
	fav := fmt.Sprintf("/produto/%d/favoritar/", p.ID)

	var state map[string]bool
	c.PostJSON(fav, nil).Data(&state)
	assert.True(t, state["favorited"])

	var favs []models.Favorite
	c.Get("/favoritos/").Data(&favs)
	require.Len(t, favs, 1)
	assert.Equal(t, p.ID, favs[0].ProductID)

	// A form post goes back to the page it came from.
	back := fmt.Sprintf("/produto/%d/", p.ID)
	req := httptest.NewRequest(http.MethodPost, fav, strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", back)
	c.Do(req).AssertRedirect(back)

	var env struct {
		Data []models.Favorite `json:"data"`
	}
	c.Get("/favoritos/").Decode(&env)
	assert.Empty(t, env.Data)
}
