package controllers

import (
	"net/http"

	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/ctx"
)

func init() {
	ctx.MapError(services.ErrNotFound, http.StatusNotFound)

	ctx.MapError(services.ErrValidation, http.StatusUnprocessableEntity)
	ctx.MapError(services.ErrInvalidQuantity, http.StatusUnprocessableEntity)
	ctx.MapError(services.ErrInvalidDate, http.StatusUnprocessableEntity)

	ctx.MapError(services.ErrEmptyCart, http.StatusConflict)
	ctx.MapError(services.ErrBelowMinimumOrder, http.StatusConflict)
	ctx.MapError(services.ErrInsufficientStock, http.StatusConflict)
	ctx.MapError(services.ErrCartItemLimit, http.StatusConflict)
	ctx.MapError(services.ErrConflict, http.StatusConflict)
	ctx.MapError(services.ErrPaymentDeclined, http.StatusPaymentRequired)

	ctx.MapError(services.ErrMissingInput, http.StatusBadRequest)
	ctx.MapError(services.ErrQuoteUnavailable, http.StatusInternalServerError)

	ctx.MapError(services.ErrInvalidCredentials, http.StatusUnauthorized)
	ctx.MapError(services.ErrNotPurchased, http.StatusForbidden)
}

// idParam reads the {id} path parameter, answering 404 when it is not a
// positive integer.
func idParam(c *ctx.Context) (uint, bool) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
	}
	return id, ok
}
