package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/response"
)

// MustGetUserID extracts the authenticated user ID from the Gin context.
// Writes a 401 and returns ok=false when the auth middleware did not run;
// callers should return immediately in that case.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetRole extracts the caller's role from the Gin context.
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// tokenSession pulls the token ID and expiry injected by the auth
// middleware, used for logout revocation.
func tokenSession(c *gin.Context) (jti string, expiresAt time.Time) {
	if v, ok := c.Get("token_jti"); ok {
		jti, _ = v.(string)
	}
	if v, ok := c.Get("token_exp"); ok {
		expiresAt, _ = v.(time.Time)
	}
	return jti, expiresAt
}
