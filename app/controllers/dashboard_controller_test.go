package controllers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/services"
)

func TestDashboardIsStaffOnly(t *testing.T) {
	s := newSite(t)
	s.register("ana", false)
	s.register("staff", true)

	s.client().Get("/dashboard/").AssertStatus(http.StatusUnauthorized)
	s.login("ana").Get("/dashboard/").AssertStatus(http.StatusForbidden)
	s.login("ana").Get("/dashboard/estoque/").AssertStatus(http.StatusForbidden)

	var body map[string]int64
	s.login("staff").Get("/dashboard/").Data(&body)
	assert.Equal(t, int64(0), body["pedidos_hoje"])
}

func TestStockEdit(t *testing.T) {
	s := newSite(t)
	p := s.product("Cupcake Caramelo", "9.00", 4)
	s.register("staff", true)
	c := s.login("staff")
	edit := fmt.Sprintf("/dashboard/estoque/editar/%d/", p.ID)

	var shown models.Product
	c.Get(edit).Data(&shown)
	assert.Equal(t, 4, shown.Stock)

	for _, bad := range []string{"-3", "abc", ""} {
		res := c.PostForm(edit, url.Values{"quantidade_estoque": {bad}})
		res.AssertStatus(http.StatusUnprocessableEntity)
		env := res.Envelope()
		assert.Equal(t, services.ErrInvalidQuantity.Error(), env.Message, "input %q", bad)

		var echoed models.Product
		res.Data(&echoed)
		assert.Equal(t, p.ID, echoed.ID)
	}
	for _, bad := range []interface{}{"abc", true, -1, 2.5, nil, "-3"} {
		res := c.PostJSON(edit, map[string]interface{}{"quantidade_estoque": bad})
		res.AssertStatus(http.StatusUnprocessableEntity)
		assert.Equal(t, services.ErrInvalidQuantity.Error(), res.Envelope().Message, "json %v", bad)

		var echoed models.Product
		res.Data(&echoed)
		assert.Equal(t, p.ID, echoed.ID)
	}
	assert.Equal(t, 4, s.stock(p.ID))

	c.PostJSON(edit, map[string]interface{}{"quantidade_estoque": "5"}).AssertStatus(http.StatusOK)
	assert.Equal(t, 5, s.stock(p.ID))

	c.PostForm(edit, url.Values{"quantidade_estoque": {"7"}}).AssertRedirect("/dashboard/estoque/")
	assert.Equal(t, 7, s.stock(p.ID))

	c.PostJSON(edit, map[string]interface{}{"quantidade_estoque": 0}).AssertStatus(http.StatusOK)
	assert.Equal(t, 0, s.stock(p.ID))

	c.Get("/dashboard/estoque/editar/999/").AssertStatus(http.StatusNotFound)
}

func TestSalesReportEndpoint(t *testing.T) {
	s := newSite(t)
	p := s.product("Cupcake Nozes", "15.00", 10)
	s.register("ana", false)
	s.register("staff", true)

	buyer := s.login("ana")
	buyer.Get(fmt.Sprintf("/carrinho/adicionar/%d/", p.ID)).AssertStatus(http.StatusOK)
	buyer.PostJSON("/finalizar-pedido/", map[string]string{}).AssertStatus(http.StatusCreated)

	staff := s.login("staff")
	staff.Get("/dashboard/relatorios/vendas/?date_from=2024-13-01").AssertStatus(http.StatusUnprocessableEntity)

	today := time.Now().UTC().Format("2006-01-02")
	var report services.SalesReport
	staff.Get("/dashboard/relatorios/vendas/?date_from=" + today + "&date_to=" + today).Data(&report)
	assert.Equal(t, int64(1), report.OrdersCount)
	assert.Equal(t, "25.00", report.Revenue.StringFixed(2))
	require.Len(t, report.TopProducts, 1)

	var counts map[string]int64
	staff.Get("/dashboard/").Data(&counts)
	assert.Equal(t, int64(1), counts["pedidos_hoje"])
}

func TestUpdateOrderStatus(t *testing.T) {
	s := newSite(t)
	p := s.product("Cupcake Nozes", "15.00", 10)
	s.register("ana", false)
	s.register("staff", true)

	buyer := s.login("ana")
	buyer.Get(fmt.Sprintf("/carrinho/adicionar/%d/", p.ID)).AssertStatus(http.StatusOK)
	var order models.Order
	buyer.PostJSON("/finalizar-pedido/", map[string]string{}).Data(&order)
	path := fmt.Sprintf("/dashboard/pedidos/%d/status/", order.ID)

	buyer.PostJSON(path, map[string]string{"status": models.StatusDelivered}).AssertStatus(http.StatusForbidden)

	staff := s.login("staff")
	staff.PostJSON(path, map[string]string{"status": "perdido"}).AssertStatus(http.StatusUnprocessableEntity)
	staff.PostJSON("/dashboard/pedidos/999/status/", map[string]string{"status": models.StatusDelivered}).
		AssertStatus(http.StatusNotFound)
	staff.PostJSON(path, map[string]string{"status": models.StatusDelivered}).AssertStatus(http.StatusOK)

	var got models.Order
	require.NoError(t, s.db.First(&got, order.ID).Error)
	assert.Equal(t, models.StatusDelivered, got.Status)
}
