package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"ifrs-console/internal/logger"
	"ifrs-console/internal/view"
	"ifrs-console/internal/web"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct{ *Deps }

func NewExportHandler(d *Deps) *ExportHandler { return &ExportHandler{Deps: d} }

type scoreRow struct {
	Label string
	Score float64
}

func (h *ExportHandler) Compliance(c *gin.Context) {
	o, ok := mount(c, h.Deps, h.API.Compliance)
	if !ok || !h.exportable(c, o.Phase, o.Error) {
		return
	}
	r := o.Result
	f := excelize.NewFile()
	defer f.Close()

	rows := []scoreRow{
		{"IFRS S1", r.S1Score},
		{"IFRS S2", r.S2Score},
		{"Governance", r.GovernanceScore},
		{"Strategy", r.StrategyScore},
		{"Risk Management", r.RiskScore},
		{"Metrics & Targets", r.MetricsScore},
	}
	if err := writeScores(f, "Compliance", rows); err != nil {
		h.exportFailed(c, err)
		return
	}
	if r.GapSummary != "" {
		if _, err := f.NewSheet("Gap Summary"); err != nil {
			h.exportFailed(c, err)
			return
		}
		f.SetCellValue("Gap Summary", "A1", r.GapSummary)
		f.SetColWidth("Gap Summary", "A", "A", 120)
	}
	h.send(c, f, "compliance-"+r.DocumentID+".xlsx")
}

func (h *ExportHandler) Climate(c *gin.Context) {
	o, ok := mount(c, h.Deps, h.API.Climate)
	if !ok || !h.exportable(c, o.Phase, o.Error) {
		return
	}
	r := o.Result
	f := excelize.NewFile()
	defer f.Close()

	rows := []scoreRow{
		{"Physical Risk", r.PhysicalRiskScore},
		{"Transition Risk", r.TransitionRiskScore},
		{"Scenario Alignment", r.ScenarioAlignmentScore},
	}
	if err := writeScores(f, "Climate", rows); err != nil {
		h.exportFailed(c, err)
		return
	}

	e := r.Emissions()
	base := len(rows) + 3
	f.SetSheetRow("Climate", cell(1, base), &[]any{"Emissions", "tCO2e"})
	f.SetSheetRow("Climate", cell(1, base+1), &[]any{"Scope 1", e.Scope1})
	f.SetSheetRow("Climate", cell(1, base+2), &[]any{"Scope 2", e.Scope2})
	f.SetSheetRow("Climate", cell(1, base+3), &[]any{"Scope 3", e.Scope3})

	if err := writeHeatmap(f, view.HeatmapRows(r.RiskHeatmapData.SeverityMatrix)); err != nil {
		h.exportFailed(c, err)
		return
	}
	h.send(c, f, "climate-"+r.DocumentID+".xlsx")
}

// exportable writes a banner page when there is nothing to export.
func (h *ExportHandler) exportable(c *gin.Context, phase view.Phase, msg string) bool {
	switch phase {
	case view.Loaded:
		return true
	case view.Empty:
		render(c, http.StatusNotFound, "error", web.Page{Title: "Nothing to export", Banner: view.InfoBanner("Run the analysis before exporting.")})
	default:
		render(c, http.StatusBadGateway, "error", web.Page{Title: "Export failed", Banner: &view.Banner{Kind: view.BannerError, Message: msg}})
	}
	return false
}

func (h *ExportHandler) exportFailed(c *gin.Context, err error) {
	logger.Error("export.failed", "path", c.Request.URL.Path, "err", err)
	render(c, http.StatusInternalServerError, "error", web.Page{Title: "Export failed", Banner: view.ErrorBanner(err, "Could not build the spreadsheet.")})
}

func (h *ExportHandler) send(c *gin.Context, f *excelize.File, name string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Error("export.write.failed", "file", name, "err", err)
	}
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// writeScores renames the default sheet and fills it with score, tier rows.
func writeScores(f *excelize.File, sheet string, rows []scoreRow) error {
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Section", "Score", "Tier"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", bold); err != nil {
		return err
	}
	for i, r := range rows {
		s := view.NormalizeScore(r.Score)
		if err := f.SetSheetRow(sheet, cell(1, i+2), &[]any{r.Label, s, string(view.TierOf(s))}); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 24)
}

func writeHeatmap(f *excelize.File, rows []view.HeatmapRow) error {
	const sheet = "Heatmap"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Risk", "Likelihood", "Impact", "Level", "Severity"}); err != nil {
		return err
	}
	for i, r := range rows {
		if err := f.SetSheetRow(sheet, cell(1, i+2), &[]any{r.Risk, r.Likelihood, r.Impact, r.Level, r.Label}); err != nil {
			return err
		}
	}
	return nil
}
