package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"loan-origination-api/config"
	"loan-origination-api/models"
	"loan-origination-api/services"
)

type Claims struct {
	UserID   int    `json:"user_id"`
	TenantID int    `json:"tenant_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates JWT token and resolves the acting staff user. The
// tenant in the claims must still match the user row, so a stale token cannot
// cross tenants.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		var user models.User
		if err := config.DB.Where("user_id = ? AND tenant_id = ? AND delete_at IS NULL", claims.UserID, claims.TenantID).
			First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		c.Set("userID", user.UserID)
		c.Set("tenantID", user.TenantID)
		c.Set("role", user.Role)
		c.Set("actor", &user)

		c.Next()
	}
}

// RequirePermission checks that the acting role grants a capability.
func RequirePermission(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		if !services.RoleCan(role.(string), capability) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Actor returns the authenticated staff user set by AuthMiddleware.
func Actor(c *gin.Context) *models.User {
	if v, exists := c.Get("actor"); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// TenantID returns the tenant resolved from the request context.
func TenantID(c *gin.Context) int {
	if v, exists := c.Get("tenantID"); exists {
		if id, ok := v.(int); ok {
			return id
		}
	}
	return 0
}
