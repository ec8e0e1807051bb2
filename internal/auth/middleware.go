package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hadhin/internal/model"
)

const userKey = "current_user"

// UserLoader resolves a token subject to a live account.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Authenticated enforces bearer JWT tokens signed with HS256 and loads the
// calling account so deactivated users are rejected even with a valid token.
func Authenticated(signingKey, issuer string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is missing"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid or expired"})
			return
		}
		id, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid or expired"})
			return
		}
		user, err := users.GetByID(c.Request.Context(), id)
		if err != nil || user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid or expired"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// RequireRoles gates a route on the caller holding one of the given roles.
// Runs after Authenticated.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is missing"})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied"})
	}
}

// CurrentUser returns the authenticated account, or nil outside the
// Authenticated chain.
func CurrentUser(c *gin.Context) *model.User {
	val, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := val.(*model.User)
	return user
}
