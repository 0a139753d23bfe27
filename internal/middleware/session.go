package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	jwtsvc "keymaster/internal/pkg/jwt"
)

// SessionCookieName is the host dashboard session cookie.
const SessionCookieName = "km_session"

const sessionContextKey = "host_session"

// HostSession is the explicit session context handed to host-shell
// handlers. Guest endpoints never see one.
type HostSession struct {
	UserID int64
	Email  string
	Name   string
}

// RequireHostSession gates host-only routes on a valid session cookie.
func RequireHostSession(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			abortUnauthorized(c, "Missing session cookie")
			return
		}

		claims, err := jwt.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		c.Set(sessionContextKey, HostSession{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
		})
		c.Set("host_email", claims.Email)
		c.Next()
	}
}

// SessionFromContext returns the host session set by RequireHostSession.
func SessionFromContext(c *gin.Context) (HostSession, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return HostSession{}, false
	}
	s, ok := v.(HostSession)
	return s, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
