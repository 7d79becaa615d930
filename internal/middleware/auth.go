package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"subscription_console/internal/auth"
	"subscription_console/internal/logger"
	"subscription_console/internal/models"
	"subscription_console/pkg/apperrors"
)

const (
	CtxUserID = "userID"
	CtxRole   = "role"
)

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.New(apperrors.CodeUnauthorized, "auth", "Not authenticated", http.StatusUnauthorized))
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(secret, tokenStr)
		if err != nil {
			apperrors.HandleError(c, apperrors.New(apperrors.CodeUnauthorized, "auth", "Could not validate credentials", http.StatusUnauthorized))
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, models.UserRole(claims.Role))
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

// RoleMiddleware - middleware ограничения по ролям
func RoleMiddleware(requiredRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(CtxRole)
		role, ok := roleVal.(models.UserRole)
		if !exists || !ok || role != requiredRole {
			apperrors.HandleError(c, apperrors.ErrAdminRequired)
			return
		}
		c.Next()
	}
}

// UserID - id пользователя из токена (после AuthMiddleware)
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// Role - роль из токена (после AuthMiddleware)
func Role(c *gin.Context) models.UserRole {
	v, _ := c.Get(CtxRole)
	role, _ := v.(models.UserRole)
	return role
}
