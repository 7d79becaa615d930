package auth

import "subscription_console/internal/models"

// Разрешения, которыми консоль решает, какие экраны показывать.
// Сервер проверяет права сам; это только навигация.
const (
	PermPlansRead     = "plans:read"
	PermPlansWrite    = "plans:write"
	PermUsersRead     = "users:read"
	PermAnalyticsRead = "analytics:read"
	PermProfileRead   = "profile:read:self"
)

// Permissions список разрешений
var Permissions = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		PermPlansRead,
		PermPlansWrite,
		PermUsersRead,
		PermAnalyticsRead,
		PermProfileRead,
	},
	models.UserRoleUser: {
		PermPlansRead,
		PermProfileRead,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	permissions, exists := Permissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Can - то же для пользователя из сессии
func Can(user *models.User, permission string) bool {
	if user == nil {
		return false
	}
	return HasPermission(user.Role, permission)
}
