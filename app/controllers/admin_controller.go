package controllers

import (
	"net/http"

	"askblog/app/services"
)

// AdminController serves the staff dashboard. Access control is left to
// middleware.RequireStaff.
type AdminController struct {
	adminService *services.AdminService
	render       *Renderer
}

func NewAdminController(adminService *services.AdminService, render *Renderer) *AdminController {
	return &AdminController{adminService: adminService, render: render}
}

// Index renders the dashboard.
func (ac *AdminController) Index(w http.ResponseWriter, r *http.Request) {
	d, err := ac.adminService.Dashboard(r.Context())
	if err != nil {
		ac.render.ServerError(w, r, err)
		return
	}
	ac.render.Page(w, r, http.StatusOK, "admin/index.html", d)
}
