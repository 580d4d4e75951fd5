package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/auth"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/dto"
)

const ContextUserID = "user_id"

// JWTAuth requires a valid bearer token and stores its user ID in the context.
func JWTAuth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			dto.JSONError(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		token, ok := BearerToken(authHeader)
		if !ok {
			dto.JSONError(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			dto.JSONError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.Identity())
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GatewayUser trusts the X-User-ID header set by an upstream gateway. It is
// used when no JWT secret is configured.
func GatewayUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			dto.JSONError(c, http.StatusUnauthorized, "X-User-ID header is required")
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// Authenticate picks JWTAuth when the verifier has a secret, GatewayUser otherwise.
func Authenticate(verifier *auth.Verifier) gin.HandlerFunc {
	if verifier.Enabled() {
		return JWTAuth(verifier)
	}
	return GatewayUser()
}
