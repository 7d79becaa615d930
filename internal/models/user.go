package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User - учётная запись из ответа сервера на login/register.
// Роль приходит только от сервера.
type User struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// DisplayName - username, а если его нет, то email
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// AdminUser - пользователь с подпиской и статистикой (/api/admin/users)
type AdminUser struct {
	User
	CurrentPlan       string          `json:"current_plan"`
	MonthlySpend      decimal.Decimal `json:"monthly_spend"`
	SubscriptionStart Timestamp       `json:"subscription_start"`
	SubscriptionEnd   Timestamp       `json:"subscription_end"`
	CreatedAt         Timestamp       `json:"created_at"`
	IsActive          bool            `json:"is_active"`
	RecentUsage       *UsageStats     `json:"recent_usage,omitempty"`
}

// UsageStats - сводка использования за 7 дней
type UsageStats struct {
	APICalls7d        int64     `json:"api_calls_7d"`
	DataProcessedGB7d float64   `json:"data_processed_gb_7d"`
	SupportTickets7d  int64     `json:"support_tickets_7d"`
	LastLogin         Timestamp `json:"last_login"`
}

// AnalyticsOverview - верхние карточки админ-дашборда
type AnalyticsOverview struct {
	TotalUsers            int64           `json:"total_users"`
	ActiveUsers           int64           `json:"active_users"`
	TotalMonthlyRevenue   decimal.Decimal `json:"total_monthly_revenue"`
	AverageRevenuePerUser decimal.Decimal `json:"average_revenue_per_user"`
	TotalAPICalls         int64           `json:"total_api_calls"`
	TotalDataProcessedGB  float64         `json:"total_data_processed_gb"`
}

// UserProfile - профиль текущего пользователя (/api/user/profile)
type UserProfile struct {
	User
	CurrentPlan       string          `json:"current_plan"`
	MonthlySpend      decimal.Decimal `json:"monthly_spend"`
	SubscriptionStart Timestamp       `json:"subscription_start"`
	SubscriptionEnd   Timestamp       `json:"subscription_end"`
	CreatedAt         Timestamp       `json:"created_at"`
}

// DaysSubscribed - сколько полных дней прошло с начала подписки (0, если подписки нет)
func (p UserProfile) DaysSubscribed(now time.Time) int {
	if p.SubscriptionStart.IsZero() || now.Before(p.SubscriptionStart.Time) {
		return 0
	}
	return int(now.Sub(p.SubscriptionStart.Time).Hours() / 24)
}
