package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ifrs-console/internal/session"
)

const sessionKey = "session"

// Resolver turns a session id into the settled session for this request.
type Resolver interface {
	Resolve(ctx context.Context, sid string) *session.State
}

// Cookies issues and expires the browser's session cookie.
type Cookies struct {
	Codec  *session.CookieCodec
	Secure bool
}

func (k Cookies) Set(c *gin.Context, sid string) error {
	v, err := k.Codec.Encode(sid)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, v, int(k.Codec.MaxAge().Seconds()), "/", "", k.Secure, true)
	return nil
}

func (k Cookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", k.Secure, true)
}

// Session reads the signed cookie, resolves the session once and stores it
// on the context. A missing or tampered cookie starts a fresh session.
func Session(cookies Cookies, resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(session.CookieName)
		sid, renew, err := cookies.Codec.Decode(raw)
		if err != nil {
			sid, renew = session.NewID(), true
		}
		if renew {
			if err := cookies.Set(c, sid); err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}
		c.Set(sessionKey, resolver.Resolve(c.Request.Context(), sid))
		c.Next()
	}
}

// CurrentSession returns the state stored by Session. Handlers mounted
// without the middleware get a settled anonymous session.
func CurrentSession(c *gin.Context) *session.State {
	if v, ok := c.Get(sessionKey); ok {
		if st, ok := v.(*session.State); ok {
			return st
		}
	}
	return session.NewSettled("", "", nil)
}
