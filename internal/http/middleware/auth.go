// Session-presence middleware.
//
// The mobile client authenticates upstream; the backend only needs to know
// which user a request belongs to. RequireSession resolves the user id via a
// pluggable SessionChecker and stores it under the "userID" context key that
// handlers and the access logger read. Deployments without a real session
// layer run the header checker with a development fallback.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionChecker resolves the user id for a request. ok=false rejects the
// request with 401.
type SessionChecker func(c *gin.Context) (userID string, ok bool)

// HeaderSession returns a SessionChecker that trusts the X-User-ID header.
// A non-empty fallback id keeps the endpoint usable without the header
// (development and demo setups); an empty fallback makes the header mandatory.
func HeaderSession(fallback string) SessionChecker {
	return func(c *gin.Context) (string, bool) {
		if id := strings.TrimSpace(c.GetHeader("X-User-ID")); id != "" {
			return id, true
		}
		if fallback != "" {
			return fallback, true
		}
		return "", false
	}
}

// RequireSession gates a route group behind the given checker and publishes
// the resolved user id under the "userID" context key.
func RequireSession(check SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := check(c)
		if !ok {
			rid, _ := c.Get(requestIDKey)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": asString(rid),
				"code":       "unauthorized",
				"message":    "session required",
			})
			return
		}
		c.Set("userID", id)
		c.Next()
	}
}
