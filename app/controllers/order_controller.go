package controllers

import (
	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/ctx"
)

// OrderController lists the customer's own orders.
type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(reg *services.Registry) *OrderController {
	return &OrderController{orders: reg.Orders}
}

func (h *OrderController) Index(c *ctx.Context) {
	orders, err := h.orders.List(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

// Show answers 404 for orders that belong to someone else.
func (h *OrderController) Show(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := h.orders.Detail(c.Context(), c.UserID(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}
