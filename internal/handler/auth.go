package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ifrs-console/internal/logger"
	"ifrs-console/internal/middleware"
	"ifrs-console/internal/model"
	"ifrs-console/internal/session"
	"ifrs-console/internal/view"
	"ifrs-console/internal/web"
)

type AuthHandler struct{ *Deps }

func NewAuthHandler(d *Deps) *AuthHandler { return &AuthHandler{Deps: d} }

type LoginBody struct{ Email string }

type RegisterBody struct {
	Email     string
	Role      model.Role
	CompanyID string
	Roles     []model.Role
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, http.StatusOK, "login", web.Page{Title: "Sign in", Body: LoginBody{}})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	if email == "" || password == "" {
		render(c, http.StatusBadRequest, "login", web.Page{
			Title:  "Sign in",
			Banner: &view.Banner{Kind: view.BannerError, Message: "Email and password are required."},
			Body:   LoginBody{Email: email},
		})
		return
	}

	st := middleware.CurrentSession(c)
	if _, err := h.Sessions.Login(c.Request.Context(), st, email, password); err != nil {
		render(c, http.StatusUnauthorized, "login", web.Page{
			Title:  "Sign in",
			Banner: authBanner(err),
			Body:   LoginBody{Email: email},
		})
		return
	}
	h.signedIn(c, st)
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, http.StatusOK, "register", web.Page{
		Title: "Register",
		Body:  RegisterBody{Role: model.RoleAnalyst, Roles: model.Roles()},
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	body := RegisterBody{
		Email:     strings.TrimSpace(c.PostForm("email")),
		CompanyID: strings.TrimSpace(c.PostForm("company_id")),
		Roles:     model.Roles(),
	}
	role, err := model.ParseRole(c.DefaultPostForm("role", string(model.RoleAnalyst)))
	body.Role = role
	password := c.PostForm("password")

	var msg string
	switch {
	case err != nil:
		msg = "Choose a valid role."
		body.Role = model.RoleAnalyst
	case body.Email == "" || password == "":
		msg = "Email and password are required."
	}
	if msg != "" {
		render(c, http.StatusBadRequest, "register", web.Page{Title: "Register", Banner: &view.Banner{Kind: view.BannerError, Message: msg}, Body: body})
		return
	}

	st := middleware.CurrentSession(c)
	req := model.RegisterRequest{Email: body.Email, Password: password, Role: role, CompanyID: body.CompanyID}
	if _, err := h.Sessions.Register(c.Request.Context(), st, req); err != nil {
		render(c, http.StatusBadRequest, "register", web.Page{Title: "Register", Banner: authBanner(err), Body: body})
		return
	}
	h.signedIn(c, st)
}

// signedIn hands the browser the cookie for the rotated session id.
func (h *AuthHandler) signedIn(c *gin.Context, st *session.State) {
	if err := h.Cookies.Set(c, st.ID); err != nil {
		logger.Error("session.cookie.failed", "err", err)
		render(c, http.StatusInternalServerError, "error", web.Page{
			Title:  "Sign in",
			Banner: &view.Banner{Kind: view.BannerError, Message: "Could not start your session. Please try again."},
		})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	st := middleware.CurrentSession(c)
	if err := h.Sessions.Logout(c.Request.Context(), st); err != nil {
		logger.Error("logout.failed", "sid", st.ID, "err", err)
	}
	h.Cookies.Clear(c)
	c.Redirect(http.StatusFound, "/login")
}

func authBanner(err error) *view.Banner {
	var authErr *session.AuthenticationError
	if errors.As(err, &authErr) {
		return &view.Banner{Kind: view.BannerError, Message: authErr.Message}
	}
	return view.ErrorBanner(err, "Login failed. Please check your credentials.")
}
