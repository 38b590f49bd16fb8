package auth

import (
	"strings"

	"github.com/Kilat-Rental/service-reservation/internal/platform/response"
	"github.com/gin-gonic/gin"
)

const claimsKey = "auth.claims"

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(m *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "missing bearer token")
			return
		}
		claims, err := m.ValidateToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches claims when a bearer token is present and lets
// anonymous requests through. A malformed or expired token is still rejected.
func OptionalAuthMiddleware(m *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := m.ValidateToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole allows only the listed roles. Must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			response.Unauthorized(c, "unauthorized")
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Forbidden(c, "insufficient role")
			return
		}
		c.Next()
	}
}

// GetClaims returns the verified claims for the request, if any.
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
