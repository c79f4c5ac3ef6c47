package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"ifrs-console/internal/model"
	"ifrs-console/internal/web"
)

type Decision int

const (
	Allow Decision = iota
	ShowLoading
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case ShowLoading:
		return "loading"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	}
	return "unknown"
}

// Decide is the route guard. An empty roles set admits any signed-in user.
func Decide(loading bool, user *model.User, roles []model.Role) Decision {
	switch {
	case loading:
		return ShowLoading
	case user == nil:
		return RedirectLogin
	case len(roles) > 0 && !slices.Contains(roles, user.Role):
		return RedirectHome
	default:
		return Allow
	}
}

// RequireAuth applies Decide to the session resolved by Session.
func RequireAuth(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := CurrentSession(c)
		switch Decide(st.Loading(), st.User(), roles) {
		case ShowLoading:
			c.Header("Retry-After", "1")
			c.HTML(http.StatusServiceUnavailable, "loading", web.Page{Title: "Loading", Path: web.PagePath(c.Request)})
			c.Abort()
		case RedirectLogin:
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		case RedirectHome:
			c.Redirect(http.StatusFound, "/")
			c.Abort()
		default:
			c.Next()
		}
	}
}
