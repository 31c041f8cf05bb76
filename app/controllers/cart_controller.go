package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/ctx"
)

// CartController manages the session cart and the shipping estimate.
type CartController struct {
	cart     *services.CartService
	shipping *services.ShippingService
}

func NewCartController(reg *services.Registry) *CartController {
	return &CartController{cart: reg.Cart, shipping: reg.Shipping}
}

func (h *CartController) Show(c *ctx.Context) {
	view, err := h.cart.View(c.Context(), services.LoadCart(c.Session()))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(view)
}

func (h *CartController) Add(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	sess := c.Session()
	cart := services.LoadCart(sess)

	product, err := h.cart.Add(c.Context(), cart, id)
	if err != nil {
		c.Fail(err)
		return
	}
	cart.Save(sess)
	c.SuccessMessage(fmt.Sprintf("%q foi adicionado ao carrinho.", product.Name), map[string]interface{}{
		"product_id": id,
		"quantity":   cart.Quantity(id),
	})
}

func (h *CartController) Remove(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	sess := c.Session()
	cart := services.LoadCart(sess)
	cart.Remove(id)
	cart.Save(sess)
	c.Success(map[string]interface{}{
		"product_id": id,
		"quantity":   cart.Quantity(id),
	})
}

// Shipping answers {valor, prazo}, or {error} with 400/500.
func (h *CartController) Shipping(c *ctx.Context) {
	quote, err := h.shipping.Quote(c.Context(), c.Query("cep"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, quote)
	case errors.Is(err, services.ErrMissingInput):
		c.JSON(http.StatusBadRequest, map[string]string{"error": services.ErrMissingInput.Error()})
	default:
		c.JSON(http.StatusInternalServerError, map[string]string{"error": services.ErrQuoteUnavailable.Error()})
	}
}
