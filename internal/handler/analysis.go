package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ifrs-console/internal/logger"
	"ifrs-console/internal/model"
	"ifrs-console/internal/view"
	"ifrs-console/internal/web"
)

type fetchFunc[T any] func(ctx context.Context, token, documentID string) (*T, error)

type outcome[T any] struct {
	Result *T
	Phase  view.Phase
	Error  string
	Banner *view.Banner
}

// mount is the initial read of an analysis page. ok is false when the
// response has already been written.
func mount[T any](c *gin.Context, d *Deps, fetch fetchFunc[T]) (outcome[T], bool) {
	res, err := fetch(c.Request.Context(), token(c), c.Param("documentId"))
	if d.rejected(c, err) {
		return outcome[T]{}, false
	}
	o := outcome[T]{Phase: view.MountPhase(err)}
	switch o.Phase {
	case view.Loaded:
		o.Result = res
	case view.Error:
		o.Error = errorText(err)
	}
	return o, true
}

// run settles the mount read, then triggers the analysis and replaces the
// result on success. On failure the prior result is kept. A mount read that
// ends in Error leaves nothing to act on, so no analysis is triggered.
func run[T any](c *gin.Context, d *Deps, action string, fetch, trigger fetchFunc[T]) (outcome[T], bool) {
	id := c.Param("documentId")
	release, ok := d.acquire(c, action, id)
	if !ok {
		return outcome[T]{}, false
	}
	defer release()

	prior, ok := mount(c, d, fetch)
	if !ok {
		return prior, false
	}
	if prior.Phase == view.Error {
		prior.Banner = &view.Banner{Kind: view.BannerError, Message: prior.Error}
		return prior, true
	}
	phase := prior.Phase.Refresh()

	res, err := trigger(c.Request.Context(), token(c), id)
	if d.rejected(c, err) {
		return outcome[T]{}, false
	}
	if err != nil {
		logger.Warn(action+".failed", "doc", id, "err", err)
		prior.Phase = phase.Complete(err)
		prior.Banner = view.ErrorBanner(err, "Analysis failed. Please try again.")
		return prior, true
	}
	logger.Info(action+".ok", "doc", id)
	return outcome[T]{Result: res, Phase: phase.Complete(nil), Banner: view.SuccessBanner("Analysis complete.")}, true
}

// --- compliance ---

type ComplianceHandler struct{ *Deps }

func NewComplianceHandler(d *Deps) *ComplianceHandler { return &ComplianceHandler{Deps: d} }

type ComplianceBody struct {
	Doc    DocHeader
	Phase  view.Phase
	Error  string
	Result *model.ComplianceResult
	Donuts []view.Donut
	Cards  []view.Card
}

func (h *ComplianceHandler) Show(c *gin.Context) {
	if o, ok := mount(c, h.Deps, h.API.Compliance); ok {
		h.render(c, o)
	}
}

func (h *ComplianceHandler) Run(c *gin.Context) {
	if o, ok := run(c, h.Deps, "compliance.run", h.API.Compliance, h.API.RunCompliance); ok {
		h.render(c, o)
	}
}

func (h *ComplianceHandler) render(c *gin.Context, o outcome[model.ComplianceResult]) {
	body := ComplianceBody{
		Doc:   DocHeader{Title: "IFRS Compliance", DocumentID: c.Param("documentId"), Tab: "compliance"},
		Phase: o.Phase,
		Error: o.Error,
	}
	if o.Result != nil {
		body.Result = o.Result
		body.Donuts = view.ComplianceDonuts(o.Result)
		body.Cards = view.ComplianceCards(o.Result)
	}
	render(c, http.StatusOK, "compliance", web.Page{Title: "Compliance", Nav: "upload", Banner: o.Banner, Body: body})
}

// --- climate ---

type ClimateHandler struct{ *Deps }

func NewClimateHandler(d *Deps) *ClimateHandler { return &ClimateHandler{Deps: d} }

type ClimateBody struct {
	Doc       DocHeader
	Phase     view.Phase
	Error     string
	Result    *model.ClimateResult
	Donuts    []view.Donut
	Emissions model.Emissions
	Heatmap   []view.HeatmapRow
}

func (h *ClimateHandler) Show(c *gin.Context) {
	if o, ok := mount(c, h.Deps, h.API.Climate); ok {
		h.render(c, o)
	}
}

func (h *ClimateHandler) Run(c *gin.Context) {
	if o, ok := run(c, h.Deps, "climate.run", h.API.Climate, h.API.RunClimate); ok {
		h.render(c, o)
	}
}

func (h *ClimateHandler) render(c *gin.Context, o outcome[model.ClimateResult]) {
	body := ClimateBody{
		Doc:   DocHeader{Title: "Climate Risk", DocumentID: c.Param("documentId"), Tab: "climate"},
		Phase: o.Phase,
		Error: o.Error,
	}
	if o.Result != nil {
		body.Result = o.Result
		body.Donuts = view.ClimateDonuts(o.Result)
		body.Emissions = o.Result.Emissions()
		body.Heatmap = view.HeatmapRows(o.Result.RiskHeatmapData.SeverityMatrix)
	}
	render(c, http.StatusOK, "climate", web.Page{Title: "Climate", Nav: "upload", Banner: o.Banner, Body: body})
}

// --- full document analysis ---

type DocumentAnalysisHandler struct{ *Deps }

func NewDocumentAnalysisHandler(d *Deps) *DocumentAnalysisHandler {
	return &DocumentAnalysisHandler{Deps: d}
}

type AnalysisBody struct {
	Doc      DocHeader
	Phase    view.Phase
	Error    string
	Analysis *model.DocumentAnalysis
	Cards    []view.Card
	Sections []view.Section
	Open     view.Expanded
}

func (h *DocumentAnalysisHandler) Show(c *gin.Context) {
	if o, ok := mount(c, h.Deps, h.API.DocumentAnalysis); ok {
		h.render(c, o)
	}
}

func (h *DocumentAnalysisHandler) Run(c *gin.Context) {
	if o, ok := run(c, h.Deps, "document_analysis.run", h.API.DocumentAnalysis, h.API.RunDocumentAnalysis); ok {
		h.render(c, o)
	}
}

func (h *DocumentAnalysisHandler) render(c *gin.Context, o outcome[model.DocumentAnalysis]) {
	open := view.ParseExpanded(c.QueryArray("open"))
	if len(open) == 0 {
		open = view.Expanded{"overview": true}
	}
	body := AnalysisBody{
		Doc:   DocHeader{Title: "Document Analysis", DocumentID: c.Param("documentId"), Tab: "analysis"},
		Phase: o.Phase,
		Error: o.Error,
		Open:  open,
	}
	if o.Result != nil {
		body.Analysis = o.Result
		body.Cards = view.AnalysisCards(o.Result)
		body.Sections = view.Sections(o.Result)
	}
	render(c, http.StatusOK, "analysis", web.Page{Title: "Analysis", Nav: "upload", Banner: o.Banner, Body: body})
}
