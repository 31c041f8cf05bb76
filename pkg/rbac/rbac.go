// Package rbac maps roles to capabilities and gates routes on them.
package rbac

import (
	"net/http"

	"github.com/cupcakery/storefront/pkg/auth"
	"github.com/cupcakery/storefront/pkg/response"
)

// Capabilities checked by the dashboard routes.
const (
	ViewDashboard = "dashboard.view"
	ManageStock   = "stock.manage"
	ViewReports   = "reports.view"
	ManageOrders  = "orders.manage"
)

var grants = map[string]map[string]bool{
	auth.RoleStaff: {
		ViewDashboard: true,
		ManageStock:   true,
		ViewReports:   true,
		ManageOrders:  true,
	},
	auth.RoleCustomer: {},
}

// Can reports whether role holds capability.
func Can(role, capability string) bool {
	return grants[role][capability]
}

// Require allows the request only when the authenticated identity holds every
// capability. Anonymous requests get 401, authenticated ones without the
// grant get 403.
func Require(capabilities ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromCtx(r.Context())
			if !ok {
				response.Unauthorized(w)
				return
			}
			for _, capability := range capabilities {
				if !Can(id.Role, capability) {
					response.Forbidden(w)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
