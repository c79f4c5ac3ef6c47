package handler

import (
	"github.com/gin-gonic/gin"

	"ifrs-console/internal/middleware"
	"ifrs-console/internal/model"
)

// Handlers groups every page handler behind one set of dependencies.
type Handlers struct {
	Auth       *AuthHandler
	Dashboard  *DashboardHandler
	Documents  *DocumentHandler
	Compliance *ComplianceHandler
	Climate    *ClimateHandler
	Analysis   *DocumentAnalysisHandler
	Reports    *ReportHandler
	Admin      *AdminHandler
	Export     *ExportHandler
}

func New(d *Deps, uploadLimit int64) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(d),
		Dashboard:  NewDashboardHandler(d),
		Documents:  NewDocumentHandler(d, uploadLimit),
		Compliance: NewComplianceHandler(d),
		Climate:    NewClimateHandler(d),
		Analysis:   NewDocumentAnalysisHandler(d),
		Reports:    NewReportHandler(d),
		Admin:      NewAdminHandler(d),
		Export:     NewExportHandler(d),
	}
}

// Mount registers the page routes on r, which must already run the Session middleware.
func (h *Handlers) Mount(r gin.IRouter) {
	r.GET("/login", h.Auth.LoginPage)
	r.POST("/login", h.Auth.Login)
	r.GET("/register", h.Auth.RegisterPage)
	r.POST("/register", h.Auth.Register)
	r.POST("/logout", h.Auth.Logout)

	app := r.Group("", middleware.RequireAuth())
	app.GET("/", h.Dashboard.Show)
	app.GET("/upload", h.Documents.List)
	app.POST("/upload", h.Documents.Upload)
	app.POST("/documents/:id/delete", h.Documents.Delete)
	app.GET("/analysis/:documentId", h.Analysis.Show)
	app.POST("/analysis/:documentId/run", h.Analysis.Run)
	app.GET("/compliance/:documentId", h.Compliance.Show)
	app.POST("/compliance/:documentId/run", h.Compliance.Run)
	app.GET("/compliance/:documentId/export", h.Export.Compliance)
	app.GET("/climate/:documentId", h.Climate.Show)
	app.POST("/climate/:documentId/run", h.Climate.Run)
	app.GET("/climate/:documentId/export", h.Export.Climate)
	app.GET("/reports/:documentId", h.Reports.List)
	app.POST("/reports/:documentId/generate", h.Reports.Generate)

	admin := r.Group("/admin", middleware.RequireAuth(model.RoleAdmin))
	admin.GET("", h.Admin.Show)
	admin.POST("/users/:id/delete", h.Admin.DeleteUser)
	admin.POST("/companies", h.Admin.CreateCompany)
	admin.GET("/audit", h.Admin.Audit)
}
