package controllers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/services"
)

func TestCheckoutRequiresLogin(t *testing.T) {
	s := newSite(t)
	c := s.client()

	c.Get("/finalizar-pedido/").AssertStatus(http.StatusUnauthorized)
	c.PostJSON("/finalizar-pedido/", map[string]string{}).AssertStatus(http.StatusUnauthorized)
	c.Get("/meus-pedidos/").AssertStatus(http.StatusUnauthorized)
}

func TestCheckoutFlow(t *testing.T) {
	s := newSite(t)
	p := s.product("Cupcake Baunilha", "6.00", 5)
	s.register("ana", false)
	c := s.login("ana")
	add := fmt.Sprintf("/carrinho/adicionar/%d/", p.ID)

	c.Get(add).AssertStatus(http.StatusOK)
	res := c.PostJSON("/finalizar-pedido/", map[string]string{})
	res.AssertStatus(http.StatusConflict)
	assert.Equal(t, services.ErrBelowMinimumOrder.Error(), res.Envelope().Message)
	assert.Equal(t, 5, s.stock(p.ID))

	c.Get(add).AssertStatus(http.StatusOK)

	var quote services.Quote
	c.Get("/finalizar-pedido/").Data(&quote)
	assert.Equal(t, "12.00", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", quote.Shipping.StringFixed(2))
	assert.Equal(t, "22.00", quote.Total.StringFixed(2))

	res = c.PostJSON("/finalizar-pedido/", map[string]string{"tipo_entrega": models.DeliveryShip})
	res.AssertStatus(http.StatusCreated)
	var order models.Order
	res.Data(&order)
	assert.True(t, order.PaymentConfirmed)
	assert.Equal(t, "22.00", order.Total.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 3, s.stock(p.ID))

	// The cart is emptied once the order is placed.
	var view services.CartView
	c.Get("/carrinho/").Data(&view)
	assert.Empty(t, view.Lines)
	c.PostJSON("/finalizar-pedido/", map[string]string{}).AssertStatus(http.StatusConflict)

	var mine []models.Order
	c.Get("/meus-pedidos/").Data(&mine)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)
	c.Get(fmt.Sprintf("/meus-pedidos/%d/", order.ID)).AssertStatus(http.StatusOK)

	s.register("bia", false)
	s.login("bia").Get(fmt.Sprintf("/meus-pedidos/%d/", order.ID)).AssertStatus(http.StatusNotFound)
}

func TestCheckoutFormPostRedirectsToOrder(t *testing.T) {
	s := newSite(t)
	p := s.product("Cupcake Pistache", "12.00", 1)
	s.register("ana", false)
	c := s.login("ana")

	c.Get(fmt.Sprintf("/carrinho/adicionar/%d/", p.ID)).AssertStatus(http.StatusOK)
	res := c.PostForm("/finalizar-pedido/", url.Values{"tipo_entrega": {models.DeliveryPickup}})
	res.AssertStatus(http.StatusSeeOther)

	var order models.Order
	require.NoError(t, s.db.First(&order).Error)
	assert.Equal(t, fmt.Sprintf("/meus-pedidos/%d/", order.ID), res.Location())
	assert.Equal(t, models.DeliveryPickup, order.DeliveryType)
	assert.Equal(t, 0, s.stock(p.ID))
}

func TestCheckoutRejectsUnknownDeliveryType(t *testing.T) {
	s := newSite(t)
	s.register("ana", false)
	c := s.login("ana")

	res := c.PostJSON("/finalizar-pedido/", map[string]string{"tipo_entrega": "drone"})
	res.AssertStatus(http.StatusUnprocessableEntity)
	assert.Contains(t, res.Envelope().Errors, "tipo_entrega")
}
