// README: Firebase bearer-token auth middleware for the API group.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lantern/internal/infra"
	"lantern/internal/types"
)

const (
	ctxKeyUID  = "caller_uid"
	ctxKeyRole = "caller_role"
)

// Auth verifies the Authorization bearer token and stores the caller's
// UID and role claim on the request context. Requests without a valid
// token never reach a handler.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxKeyUID, token.UID)
		c.Set(ctxKeyRole, roleClaim(token))
		c.Next()
	}
}

// roleClaim reads the custom role claim; callers without one are plain
// customers.
func roleClaim(token *infra.AuthToken) string {
	if v, ok := token.Claims["role"].(string); ok && v != "" {
		return v
	}
	return types.RoleCustomer
}

func CallerUID(c *gin.Context) string {
	return c.GetString(ctxKeyUID)
}

func CallerRole(c *gin.Context) string {
	return c.GetString(ctxKeyRole)
}

// CallerActor packages the verified identity for the domain services.
func CallerActor(c *gin.Context) types.Actor {
	return types.Actor{
		ID:   types.ID(CallerUID(c)),
		Role: CallerRole(c),
	}
}
