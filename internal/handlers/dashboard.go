package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/models"
	"github.com/KofuCodes/ReMind/internal/store"
)

type DashboardHandler struct {
	log   *zap.Logger
	store store.Store
}

func NewDashboardHandler(log *zap.Logger, st store.Store) *DashboardHandler {
	return &DashboardHandler{log: log, store: st}
}

// Show renders the dashboard: a deviation timeline and a risk-tier
// distribution for the (optionally source-filtered) history. The selected
// filter is remembered in the session so a reload keeps the view.
func (h *DashboardHandler) Show(c *gin.Context) {
	session := sessions.Default(c)

	source := c.Query("source")
	if source == "" {
		if saved, ok := session.Get("dashboard_source").(string); ok {
			source = saved
		}
	} else {
		session.Set("dashboard_source", source)
		if err := session.Save(); err != nil {
			h.log.Warn("Failed to save dashboard session", zap.Error(err))
		}
	}

	records := h.store.All()
	if source != "" && source != "all" {
		filtered := records[:0]
		for _, rec := range records {
			if string(rec.Source) == source {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		generateDeviationTimeline(records),
		generateRiskDistribution(records),
	)

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(c.Writer); err != nil {
		h.log.Error("Failed to render dashboard", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to render dashboard")
	}
}

func generateDeviationTimeline(records []models.SessionRecord) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Deviation Over Time",
			Subtitle: "0 = at or above baseline, 100 = worst",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Max:   100,
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	// History is head-first; walk it backwards so the series is
	// chronological.
	items := make([]opts.LineData, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		items = append(items, opts.LineData{Value: []interface{}{rec.Timestamp, rec.DeviationScore}})
	}

	line.AddSeries("Deviation Score", items).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func generateRiskDistribution(records []models.SessionRecord) *charts.Pie {
	counts := map[models.RiskLevel]int{}
	for _, rec := range records {
		counts[rec.RiskLevel]++
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Risk Tier Distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.PieData, 0, 3)
	for _, level := range []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		items = append(items, opts.PieData{Name: string(level), Value: counts[level]})
	}

	pie.AddSeries("Risk Tiers", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}))
	return pie
}
