package dto

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"subscription_console/internal/models"
)

// UsersResponse - /api/admin/users. Сервер отдаёт либо массив,
// либо объект {users, total_count}; принимаем оба.
type UsersResponse struct {
	Users      []models.AdminUser `json:"users"`
	TotalCount int                `json:"total_count"`
}

func (r *UsersResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var users []models.AdminUser
		if err := json.Unmarshal(trimmed, &users); err != nil {
			return err
		}
		r.Users = users
		r.TotalCount = len(users)
		return nil
	}

	type alias UsersResponse
	var a alias
	if err := json.Unmarshal(trimmed, &a); err != nil {
		return err
	}
	*r = UsersResponse(a)
	if r.TotalCount == 0 {
		r.TotalCount = len(r.Users)
	}
	return nil
}

// AnalyticsResponse - /api/admin/analytics?days=N
type AnalyticsResponse struct {
	PeriodDays  int                      `json:"period_days"`
	Overview    models.AnalyticsOverview `json:"overview"`
	GeneratedAt models.Timestamp         `json:"generated_at"`
}

// RenewalPredictionsResponse - /api/admin/renewal-predictions
type RenewalPredictionsResponse struct {
	Analysis    models.RenewalAnalysis `json:"analysis"`
	GeneratedAt models.Timestamp       `json:"generated_at"`
}

// UserDetail - карточка пользователя в детальном отчёте
type UserDetail struct {
	ID                int64            `json:"id"`
	Username          string           `json:"username"`
	Email             string           `json:"email"`
	CurrentPlan       string           `json:"current_plan"`
	MonthlySpend      decimal.Decimal  `json:"monthly_spend"`
	SubscriptionStart models.Timestamp `json:"subscription_start"`
	SubscriptionEnd   models.Timestamp `json:"subscription_end"`
}

// UserDetailResponse - /api/admin/user/{id}/detailed?days=N
type UserDetailResponse struct {
	User                  UserDetail              `json:"user"`
	UsageData             []models.DailyUsage     `json:"usage_data"`
	RecentRecommendations []models.Recommendation `json:"recent_recommendations"`
}
