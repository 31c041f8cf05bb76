package controllers

import (
	"net/http"

	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/ctx"
	"github.com/cupcakery/storefront/pkg/middleware"
)

// AccountController handles sign-up, login and the e-mail preference.
type AccountController struct {
	accounts *services.AccountService
}

func NewAccountController(reg *services.Registry) *AccountController {
	return &AccountController{accounts: reg.Accounts}
}

func (h *AccountController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.Bind(&in) {
		return
	}
	user, err := h.accounts.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	if c.IsFormPost() {
		c.Redirect(http.StatusSeeOther, "/login/")
		return
	}
	c.Created(user)
}

// Login starts a session for the user and also returns a bearer token for
// API clients.
func (h *AccountController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.Bind(&in) {
		return
	}
	user, token, err := h.accounts.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}

	sess := c.Session()
	sess.Regenerate()
	sess.Set(middleware.SessionUserKey, user.ID)

	if c.IsFormPost() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Success(map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (h *AccountController) Logout(c *ctx.Context) {
	c.Session().Invalidate()
	if c.IsFormPost() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.SuccessMessage("Você saiu da sua conta.", nil)
}

type preferencesInput struct {
	ReceivePromotions bool `json:"receber_promocoes" form:"receber_promocoes"`
}

// Preferences shows the marketing opt-in on GET and sets it on POST. An
// unchecked checkbox is absent from the form, which turns the opt-in off.
func (h *AccountController) Preferences(c *ctx.Context) {
	if c.Method() == http.MethodPost {
		var in preferencesInput
		if !c.Bind(&in) {
			return
		}
		if err := h.accounts.SetPromotions(c.Context(), c.UserID(), in.ReceivePromotions); err != nil {
			c.Fail(err)
			return
		}
		if c.IsFormPost() {
			c.Redirect(http.StatusSeeOther, "/preferencias-email/")
			return
		}
		c.SuccessMessage("Suas preferências de comunicação foram atualizadas.", in)
		return
	}

	user, err := h.accounts.User(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(preferencesInput{ReceivePromotions: user.ReceivePromotions})
}
