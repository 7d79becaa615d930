package models

import (
	"github.com/shopspring/decimal"
)

// DailyUsage - использование за один день
type DailyUsage struct {
	Date                   Timestamp `json:"date"`
	APICalls               int64     `json:"api_calls"`
	DataProcessedGB        float64   `json:"data_processed_gb"`
	SessionDurationMinutes float64   `json:"session_duration_minutes"`
	FeaturesUsed           []string  `json:"features_used"`
	SupportTickets         int64     `json:"support_tickets"`
	FeatureAdoptionScore   float64   `json:"feature_adoption_score"`
}

// UsageSummary - итоги за период (/api/user/usage)
type UsageSummary struct {
	TotalAPICalls                 int64           `json:"total_api_calls"`
	TotalDataProcessedGB          float64         `json:"total_data_processed_gb"`
	AverageSessionDurationMinutes float64         `json:"average_session_duration_minutes"`
	TotalSupportTickets           int64           `json:"total_support_tickets"`
	FeaturesUsed                  []string        `json:"features_used"`
	CurrentPlan                   string          `json:"current_plan"`
	MonthlySpend                  decimal.Decimal `json:"monthly_spend"`
}

// ============================================
// Рекомендации
// ============================================

type RecommendationType string

const (
	RecommendationPlanUpgrade      RecommendationType = "plan_upgrade"
	RecommendationCostOptimization RecommendationType = "cost_optimization"
	RecommendationFeature          RecommendationType = "feature_suggestion"
	RecommendationUsage            RecommendationType = "usage_improvement"
)

// Label - подпись для таблиц
func (t RecommendationType) Label() string {
	switch t {
	case RecommendationPlanUpgrade:
		return "Plan upgrade"
	case RecommendationCostOptimization:
		return "Cost optimization"
	case RecommendationFeature:
		return "Feature"
	case RecommendationUsage:
		return "Usage"
	default:
		return string(t)
	}
}

type Recommendation struct {
	ID               int64              `json:"id,omitempty"`
	Type             RecommendationType `json:"type"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	ConfidenceScore  float64            `json:"confidence_score"`
	PotentialSavings decimal.Decimal    `json:"potential_savings"`
	Reasoning        string             `json:"reasoning,omitempty"`
	CreatedAt        Timestamp          `json:"created_at"`
}

// ============================================
// Прогноз продлений
// ============================================

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type RenewalPrediction struct {
	UserID             int64     `json:"user_id"`
	RenewalLikelihood  float64   `json:"renewal_likelihood"`
	RiskLevel          RiskLevel `json:"risk_level"`
	KeyFactors         []string  `json:"key_factors"`
	RecommendedActions []string  `json:"recommended_actions"`
}

type RenewalMetrics struct {
	AverageRenewalLikelihood float64 `json:"average_renewal_likelihood"`
	HighRiskUsers            int     `json:"high_risk_users"`
	LikelyRenewals           int     `json:"likely_renewals"`
	TotalAnalyzed            int     `json:"total_analyzed"`
}

// RenewalAnalysis - итог анализа продлений по всем пользователям
type RenewalAnalysis struct {
	OverallMetrics  RenewalMetrics      `json:"overall_metrics"`
	UserPredictions []RenewalPrediction `json:"user_predictions"`
	Insights        []string            `json:"insights"`
}

// ByRisk - прогнозы с заданным уровнем риска, не больше limit (0 - все)
func (a RenewalAnalysis) ByRisk(level RiskLevel, limit int) []RenewalPrediction {
	out := make([]RenewalPrediction, 0)
	for _, p := range a.UserPredictions {
		if p.RiskLevel != level {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
