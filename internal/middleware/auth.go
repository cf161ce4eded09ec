package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"campus-events-api/internal/domain"
	"campus-events-api/internal/response"
)

// Context keys set by Auth
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
	ContextKeyToken    = "jwtToken"
)

// Auth returns a middleware that validates HS256 JWT tokens issued by the identity provider
// and stores the caller's id and role in the context
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			unauthorized(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, "Invalid token claims")
			return
		}

		userID, err := userIDFromClaims(claims)
		if err != nil {
			unauthorized(c, "User ID not found in token")
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyUserRole, roleFromClaims(claims))
		c.Set(ContextKeyToken, tokenString)

		c.Next()
	}
}

// userIDFromClaims supports "user_id", "sub" and "uid" claim formats
func userIDFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, key := range []string{"user_id", "sub", "uid"} {
		if value, ok := claims[key].(string); ok && value != "" {
			return uuid.Parse(value)
		}
	}
	return uuid.Nil, jwt.ErrTokenInvalidClaims
}

// roleFromClaims reads "role", falling back to the first entry of "roles"
func roleFromClaims(claims jwt.MapClaims) domain.Role {
	if role, ok := claims["role"].(string); ok {
		return domain.ParseRole(role)
	}
	if roles, ok := claims["roles"].([]interface{}); ok && len(roles) > 0 {
		if role, ok := roles[0].(string); ok {
			return domain.ParseRole(role)
		}
	}
	return domain.RoleUser
}

func unauthorized(c *gin.Context, message string) {
	response.AbortWithError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, message)
}
