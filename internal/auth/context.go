package auth

import (
	"github.com/gin-gonic/gin"
)

const (
	CtxClaims = "auth_claims"
)

// ClaimsFrom returns the claims stored by the auth middleware.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}

// UserID returns the authenticated user id, or "".
func UserID(c *gin.Context) string {
	if claims, ok := ClaimsFrom(c); ok {
		return claims.UserID
	}
	return ""
}
