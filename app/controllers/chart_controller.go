package controllers

import (
	"net/http"

	"askblog/app/services"
)

// ChartController serves the activity chart.
type ChartController struct {
	chartService *services.ChartService
	render       *Renderer
}

func NewChartController(chartService *services.ChartService, render *Renderer) *ChartController {
	return &ChartController{chartService: chartService, render: render}
}

// Index renders the chart page.
func (cc *ChartController) Index(w http.ResponseWriter, r *http.Request) {
	days, err := cc.chartService.DailyActivity(r.Context())
	if err != nil {
		cc.render.ServerError(w, r, err)
		return
	}
	cc.render.Page(w, r, http.StatusOK, "mychart/index.html", days)
}

// Data serves the chart series as JSON.
func (cc *ChartController) Data(w http.ResponseWriter, r *http.Request) {
	days, err := cc.chartService.DailyActivity(r.Context())
	if err != nil {
		cc.render.ServerError(w, r, err)
		return
	}
	cc.render.JSON(w, http.StatusOK, days)
}
