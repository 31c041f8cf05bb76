package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/ctx"
)

// CatalogController serves the storefront listing and product pages.
type CatalogController struct {
	catalog *services.CatalogService
	reviews *services.ReviewService
}

func NewCatalogController(reg *services.Registry) *CatalogController {
	return &CatalogController{catalog: reg.Catalog, reviews: reg.Reviews}
}

// Index lists in-stock products, filtered by ?q= and ?categoria=.
func (h *CatalogController) Index(c *ctx.Context) {
	filter := repositories.CatalogFilter{Query: strings.TrimSpace(c.Query("q"))}
	if id, err := strconv.ParseUint(c.Query("categoria"), 10, 64); err == nil {
		filter.CategoryID = uint(id)
	}

	page, err := h.catalog.List(c.Context(), filter, c.QueryInt("page", 1), c.QueryInt("per_page", 0))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(page)
}

// Show returns the product page, out-of-stock products included.
func (h *CatalogController) Show(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	detail, err := h.reviews.Detail(c.Context(), id, c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(detail)
}

type rateInput struct {
	Stars   int    `json:"estrelas" form:"estrelas" validate:"required,min=1,max=5"`
	Comment string `json:"comentario" form:"comentario" validate:"max=1000"`
}

// Rate stores the customer's rating, replacing an earlier one.
func (h *CatalogController) Rate(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in rateInput
	if !c.Bind(&in) {
		return
	}

	review, err := h.reviews.Rate(c.Context(), c.UserID(), id, in.Stars, in.Comment)
	if err != nil {
		c.Fail(err)
		return
	}
	if c.IsFormPost() {
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/produto/%d/", id))
		return
	}
	c.SuccessMessage("Obrigado pela sua avaliação!", review)
}

// Favorite toggles the product in the customer's favorites.
func (h *CatalogController) Favorite(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	on, err := h.reviews.ToggleFavorite(c.Context(), c.UserID(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	if c.IsFormPost() {
		c.RedirectBack("/")
		return
	}
	c.Success(map[string]bool{"favorited": on})
}

// Favorites lists the customer's bookmarked products.
func (h *CatalogController) Favorites(c *ctx.Context) {
	favs, err := h.reviews.Favorites(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(favs)
}
