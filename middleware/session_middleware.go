package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/catalogviewer/session"
)

const (
	SessionCookie = "catalog_session"
	controllerKey = "controller"
)

// SessionMiddleware resolves the visitor's controller from the session
// cookie, creating one (and the cookie) on first visit.
func SessionMiddleware(reg *session.Registry, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := c.Cookie(SessionCookie)
		id, ctl := reg.Get(current)
		if id != current {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set("sessionID", id)
		c.Set(controllerKey, ctl)
		c.Next()
	}
}

func Controller(c *gin.Context) *session.Controller {
	v, ok := c.Get(controllerKey)
	if !ok {
		return nil
	}
	ctl, _ := v.(*session.Controller)
	return ctl
}
