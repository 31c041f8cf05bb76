package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/ctx"
)

// DashboardController is the staff back office: stock, reports and order
// status. Every route sits behind an rbac capability.
type DashboardController struct {
	orders  *services.OrderService
	stock   *services.StockService
	reports *services.ReportService
	now     func() time.Time
}

func NewDashboardController(reg *services.Registry) *DashboardController {
	return &DashboardController{
		orders:  reg.Orders,
		stock:   reg.Stock,
		reports: reg.Reports,
		now:     time.Now,
	}
}

func (h *DashboardController) Index(c *ctx.Context) {
	n, err := h.orders.CountToday(c.Context(), h.now())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]int64{"pedidos_hoje": n})
}

func (h *DashboardController) Stock(c *ctx.Context) {
	products, err := h.stock.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(products)
}

type stockInput struct {
	Quantity rawQuantity `json:"quantidade_estoque" form:"quantidade_estoque"`
}

// rawQuantity keeps whatever JSON value was sent as text, so a string, a
// bool or a fraction reaches services.ParseQuantity instead of failing the
// body decode.
type rawQuantity string

func (q *rawQuantity) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*q = rawQuantity(s)
		return nil
	}
	*q = rawQuantity(b)
	return nil
}

// EditStock shows one product on GET and sets its stock on POST. A rejected
// quantity echoes the product so the form can be shown again.
func (h *DashboardController) EditStock(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if c.Method() != http.MethodPost {
		product, err := h.stock.Product(c.Context(), id)
		if err != nil {
			c.Fail(err)
			return
		}
		c.Success(product)
		return
	}

	var in stockInput
	if !c.Bind(&in) {
		return
	}
	product, err := h.stock.Update(c.Context(), id, string(in.Quantity))
	if err != nil {
		c.FailData(err, product)
		return
	}
	if c.IsFormPost() {
		c.Redirect(http.StatusSeeOther, "/dashboard/estoque/")
		return
	}
	c.SuccessMessage("Estoque atualizado.", product)
}

func (h *DashboardController) SalesReport(c *ctx.Context) {
	report, err := h.reports.Sales(c.Context(), c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(report)
}

// ExportSalesReport writes the report as CSV to storage and returns its URL.
func (h *DashboardController) ExportSalesReport(c *ctx.Context) {
	export, err := h.reports.Export(c.Context(), c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(export)
}

type statusInput struct {
	Status string `json:"status" form:"status" validate:"required"`
}

func (h *DashboardController) UpdateOrderStatus(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in statusInput
	if !c.Bind(&in) {
		return
	}
	if err := h.orders.UpdateStatus(c.Context(), id, in.Status); err != nil {
		c.Fail(err)
		return
	}
	if c.IsFormPost() {
		c.RedirectBack("/dashboard/")
		return
	}
	c.SuccessMessage("Status do pedido atualizado.", map[string]interface{}{"id": id, "status": in.Status})
}
