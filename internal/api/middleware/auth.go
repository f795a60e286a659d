package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/config"
	"reviewhub/internal/permissions"
	"reviewhub/internal/utils"
)

const actorKey = "actor"

// RequireAuth rejects requests without a valid bearer access token and stores
// the resolved actor on the context.
func RequireAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFromHeader(c, cfg.JWTSecret)
		if !ok {
			utils.SendUnauthorized(c, "valid bearer token required")
			c.Abort()
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// OptionalAuth resolves the actor when a valid token is present and stays
// anonymous otherwise. Used on public reads that personalize their response.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := actorFromHeader(c, cfg.JWTSecret); ok {
			c.Set(actorKey, actor)
		}
		c.Next()
	}
}

// StaffOnly must run after RequireAuth.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Actor(c).IsStaff {
			utils.SendForbidden(c, "staff access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Actor returns the request's actor; the zero Actor means anonymous.
func Actor(c *gin.Context) permissions.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(permissions.Actor); ok {
			return actor
		}
	}
	return permissions.Actor{}
}

func actorFromHeader(c *gin.Context, jwtSecret string) (permissions.Actor, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return permissions.Actor{}, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return permissions.Actor{}, false
	}

	claims, err := utils.ValidateToken(tokenString, jwtSecret)
	if err != nil || claims.Type != string(utils.AccessToken) {
		return permissions.Actor{}, false
	}

	return permissions.Actor{
		ID:       claims.UserID,
		Username: claims.Username,
		IsStaff:  claims.IsStaff,
	}, true
}
