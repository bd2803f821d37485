package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireSession authenticates API requests. Unlike the page gateway, which
// redirects browsers, API callers get a JSON 401 when no valid session is
// present. Rotated tokens are applied to the response here because the page
// gateway never sees bypassed API paths.
func RequireSession(sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, rotated := sessions.Read(c.Request.Context(), c.Request)
		if rotated != "" {
			http.SetCookie(c.Writer, sessions.Cookie(rotated))
		}

		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"trace_id": GetTraceID(c),
			})
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}
