package controllers

import (
	"fmt"
	"net/http"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/ctx"
)

// CheckoutController previews and places orders. Both routes require a
// logged-in customer.
type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(reg *services.Registry) *CheckoutController {
	return &CheckoutController{checkout: reg.Checkout}
}

// Quote prices the current cart without side effects.
func (h *CheckoutController) Quote(c *ctx.Context) {
	quote, err := h.checkout.Quote(c.Context(), services.LoadCart(c.Session()))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(quote)
}

type confirmInput struct {
	DeliveryType string `json:"tipo_entrega" form:"tipo_entrega" validate:"omitempty,oneof=entrega retirada"`
}

// Confirm charges the cart and places the order.
func (h *CheckoutController) Confirm(c *ctx.Context) {
	var in confirmInput
	if !c.Bind(&in) {
		return
	}
	if in.DeliveryType == "" {
		in.DeliveryType = models.DeliveryShip
	}

	sess := c.Session()
	cart := services.LoadCart(sess)
	order, err := h.checkout.Confirm(c.Context(), c.UserID(), cart, in.DeliveryType)
	if err != nil {
		c.Fail(err)
		return
	}
	cart.Save(sess)

	if c.IsFormPost() {
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/meus-pedidos/%d/", order.ID))
		return
	}
	c.Created(order)
}
