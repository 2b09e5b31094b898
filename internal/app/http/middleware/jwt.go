package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"curio-server/internal/domain/access"
	"curio-server/internal/domain/users"
)

const identityKey = "identity"

// Auth validates the bearer token and loads the user behind it, so the
// role and active flags reflect the database rather than stale claims.
func Auth(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	key := []byte(jwtSecret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		var user users.User
		if err := db.First(&user, uint(userIDFloat)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Inactive user"})
			return
		}

		c.Set(identityKey, access.Identity{UserID: user.ID, IsSuperuser: user.IsSuperuser})
		c.Set("current_user", user)
		c.Next()
	}
}

// RequireSuperuser sits behind Auth on admin routes.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !id.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "The user doesn't have enough privileges"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity set by Auth.
func CurrentIdentity(c *gin.Context) (access.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return access.Identity{}, false
	}
	id, ok := v.(access.Identity)
	return id, ok
}

// CurrentUser returns the full user row loaded by Auth.
func CurrentUser(c *gin.Context) (users.User, bool) {
	v, exists := c.Get("current_user")
	if !exists {
		return users.User{}, false
	}
	u, ok := v.(users.User)
	return u, ok
}
