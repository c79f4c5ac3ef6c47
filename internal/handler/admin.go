package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ifrs-console/internal/logger"
	"ifrs-console/internal/model"
	"ifrs-console/internal/view"
	"ifrs-console/internal/web"
)

type AdminHandler struct{ *Deps }

func NewAdminHandler(d *Deps) *AdminHandler { return &AdminHandler{Deps: d} }

type AdminBody struct {
	Phase   view.Phase
	Error   string
	Users   []model.User
	Company model.CompanyRequest
}

type AuditBody struct {
	Phase   view.Phase
	Error   string
	Entries []model.AuditEntry
}

func userID(u model.User) string { return u.ID }

func (h *AdminHandler) load(c *gin.Context) (AdminBody, bool) {
	users, err := h.API.ListUsers(c.Request.Context(), token(c))
	if h.rejected(c, err) {
		return AdminBody{}, false
	}
	body := AdminBody{Phase: view.MountPhase(err), Users: users}
	if body.Phase == view.Error {
		body.Error = errorText(err)
	}
	return body, true
}

func (h *AdminHandler) page(c *gin.Context, status int, banner *view.Banner, body AdminBody) {
	render(c, status, "admin", web.Page{Title: "Admin", Nav: "admin", Banner: banner, Body: body})
}

func (h *AdminHandler) Show(c *gin.Context) {
	if body, ok := h.load(c); ok {
		h.page(c, http.StatusOK, nil, body)
	}
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if c.PostForm("confirm") != "yes" {
		render(c, http.StatusOK, "confirm", web.Page{Title: "Delete user", Nav: "admin", Body: ConfirmBody{
			Heading: "Delete user?",
			Message: "The user will lose access immediately.",
			Action:  "/admin/users/" + id + "/delete",
			Cancel:  "/admin",
		}})
		return
	}
	if me := currentUser(c); me != nil && me.ID == id {
		body, ok := h.load(c)
		if ok {
			h.page(c, http.StatusBadRequest, &view.Banner{Kind: view.BannerError, Message: "You cannot delete your own account."}, body)
		}
		return
	}

	release, ok := h.acquire(c, "user.delete", id)
	if !ok {
		return
	}
	defer release()

	body, ok := h.load(c)
	if !ok {
		return
	}
	if body.Phase == view.Error {
		h.page(c, http.StatusOK, &view.Banner{Kind: view.BannerError, Message: body.Error}, body)
		return
	}

	err := h.API.DeleteUser(c.Request.Context(), token(c), id)
	if h.rejected(c, err) {
		return
	}
	if err != nil {
		logger.Warn("admin.user.delete.failed", "user", id, "err", err)
		h.page(c, http.StatusOK, view.ErrorBanner(err, "Failed to delete user."), body)
		return
	}
	logger.Info("admin.user.delete.ok", "user", id)
	body.Users = view.RemoveByID(body.Users, id, userID)
	h.page(c, http.StatusOK, view.SuccessBanner("User deleted."), body)
}

func (h *AdminHandler) CreateCompany(c *gin.Context) {
	req := model.CompanyRequest{
		Name:     strings.TrimSpace(c.PostForm("name")),
		Industry: strings.TrimSpace(c.PostForm("industry")),
		Region:   strings.TrimSpace(c.PostForm("region")),
	}

	body, ok := h.load(c)
	if !ok {
		return
	}
	if req.Name == "" {
		body.Company = req
		h.page(c, http.StatusBadRequest, &view.Banner{Kind: view.BannerError, Message: "Company name is required."}, body)
		return
	}

	release, ok := h.acquire(c, "company.create", strings.ToLower(req.Name))
	if !ok {
		return
	}
	defer release()

	co, err := h.API.CreateCompany(c.Request.Context(), token(c), req)
	if h.rejected(c, err) {
		return
	}
	if err != nil {
		logger.Warn("admin.company.create.failed", "name", req.Name, "err", err)
		body.Company = req
		h.page(c, http.StatusOK, view.ErrorBanner(err, "Failed to create company."), body)
		return
	}
	logger.Info("admin.company.create.ok", "company", co.ID, "name", co.Name)
	h.page(c, http.StatusOK, view.SuccessBanner(fmt.Sprintf("Company %q created successfully (ID: %s)", co.Name, co.ID)), body)
}

func (h *AdminHandler) Audit(c *gin.Context) {
	entries, err := h.API.AuditLog(c.Request.Context(), token(c))
	if h.rejected(c, err) {
		return
	}
	body := AuditBody{Phase: view.MountPhase(err), Entries: entries}
	if body.Phase == view.Error {
		body.Error = errorText(err)
	}
	render(c, http.StatusOK, "audit", web.Page{Title: "Audit log", Nav: "admin", Body: body})
}
