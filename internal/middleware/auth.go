package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/eduquiz/grading-service/internal/config"
	"github.com/eduquiz/grading-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates Casdoor-issued JWTs and exposes the caller's
// identity to the handlers via the Gin context.
type AuthMiddleware struct {
	client *casdoorsdk.Client
	logger utils.Logger
}

func NewAuthMiddleware(cfg config.CasdoorConfig, logger utils.Logger) *AuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)

	return &AuthMiddleware{
		client: client,
		logger: logger,
	}
}

// RequireAuth rejects requests without a valid bearer token. On success it
// sets user_id, user_name and is_admin on the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing authorization token",
			})
			return
		}

		claims, err := m.client.ParseJwtToken(token)
		if err != nil {
			m.logger.Warn("Token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		// Accounts are provisioned with numeric external IDs; anything
		// else cannot be mapped onto our records.
		userID, err := strconv.ParseUint(claims.User.Id, 10, 32)
		if err != nil {
			m.logger.Warn("Token subject is not a numeric user ID", "subject", claims.User.Id)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Unrecognized token subject",
			})
			return
		}

		c.Set("user_id", uint(userID))
		c.Set("user_name", claims.User.Name)
		c.Set("is_admin", claims.User.IsAdmin)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
