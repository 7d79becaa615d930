package dto

import (
	"subscription_console/internal/models"
)

// UsageResponse - /api/user/usage?days=N
type UsageResponse struct {
	UserID     int64               `json:"user_id"`
	PeriodDays int                 `json:"period_days"`
	Summary    models.UsageSummary `json:"summary"`
	DailyUsage []models.DailyUsage `json:"daily_usage"`
}

// RecommendationsResponse - /api/user/recommendations
type RecommendationsResponse struct {
	UserID          int64                   `json:"user_id"`
	Recommendations []models.Recommendation `json:"recommendations"`
	GeneratedAt     models.Timestamp        `json:"generated_at"`
}
