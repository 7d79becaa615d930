package mockapi

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"subscription_console/internal/models"
)

// ============================================
// История использования
// ============================================

// AddUsage добавляет дневные записи пользователя
func (s *Store) AddUsage(userID int64, days ...models.DailyUsage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[userID] = append(s.usage[userID], days...)
	sort.SliceStable(s.usage[userID], func(i, j int) bool {
		return s.usage[userID][i].Date.Before(s.usage[userID][j].Date.Time)
	})
}

// Usage - записи не раньше since, по возрастанию даты
func (s *Store) Usage(userID int64, since time.Time) []models.DailyUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(s.usage[userID], func(u models.DailyUsage, _ int) bool {
		return !u.Date.Before(since)
	})
}

// SaveRecommendations сохраняет выданные рекомендации (для детального отчёта)
func (s *Store) SaveRecommendations(userID int64, recs []models.Recommendation, now time.Time) []models.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Recommendation, len(recs))
	for i, r := range recs {
		r.ID = s.nextRecID
		s.nextRecID++
		r.CreatedAt = models.Timestamp{Time: now}
		out[i] = r
	}
	s.recs[userID] = append(s.recs[userID], out...)
	return out
}

// RecentRecommendations - последние limit рекомендаций, новые первыми
func (s *Store) RecentRecommendations(userID int64, limit int) []models.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := lo.Reverse(append(make([]models.Recommendation, 0, len(s.recs[userID])), s.recs[userID]...))
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func summarizeUsage(u models.AdminUser, usage []models.DailyUsage) models.UsageSummary {
	sum := models.UsageSummary{
		FeaturesUsed: []string{},
		CurrentPlan:  u.CurrentPlan,
		MonthlySpend: u.MonthlySpend,
	}
	var minutes float64
	for _, d := range usage {
		sum.TotalAPICalls += d.APICalls
		sum.TotalDataProcessedGB += d.DataProcessedGB
		sum.TotalSupportTickets += d.SupportTickets
		minutes += d.SessionDurationMinutes
		sum.FeaturesUsed = append(sum.FeaturesUsed, d.FeaturesUsed...)
	}
	sum.FeaturesUsed = lo.Uniq(sum.FeaturesUsed)
	sort.Strings(sum.FeaturesUsed)
	sum.TotalDataProcessedGB = round2(sum.TotalDataProcessedGB)
	if len(usage) > 0 {
		sum.AverageSessionDurationMinutes = round2(minutes / float64(len(usage)))
	}
	return sum
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// ============================================
// Рекомендации: всегда три, по одной каждого вида
// ============================================

var knownFeatures = []string{"api", "reports", "exports", "integrations", "alerts"}

func recommend(u models.AdminUser, usage []models.DailyUsage) []models.Recommendation {
	sum := summarizeUsage(u, usage)

	cost := models.Recommendation{
		Type:            models.RecommendationCostOptimization,
		Title:           "Your plan fits your usage",
		Description:     "Spend and API volume are in line with the current plan.",
		ConfidenceScore: 0.85,
		Reasoning:       fmt.Sprintf("%d API calls over %d days", sum.TotalAPICalls, len(usage)),
	}
	if len(usage) > 0 && sum.TotalAPICalls/int64(len(usage)) < 100 && sum.MonthlySpend.IsPositive() {
		cost.Title = "Consider a smaller plan"
		cost.Description = "Daily API volume stays under 100 calls; a lower tier would cover it."
		cost.PotentialSavings = sum.MonthlySpend.Mul(decimal.RequireFromString("0.2")).Round(2)
	}

	feature := models.Recommendation{
		Type:            models.RecommendationFeature,
		Title:           "You use every feature of your plan",
		Description:     "No unused features found in the period.",
		ConfidenceScore: 0.8,
	}
	if unused, ok := lo.Find(knownFeatures, func(f string) bool { return !lo.Contains(sum.FeaturesUsed, f) }); ok {
		feature.Title = fmt.Sprintf("Try %s", unused)
		feature.Description = fmt.Sprintf("%s is included in your plan but was not used in the period.", unused)
	}
	feature.Reasoning = fmt.Sprintf("%d of %d features used", len(sum.FeaturesUsed), len(knownFeatures))

	habit := models.Recommendation{
		Type:            models.RecommendationUsage,
		Title:           "Keep your current routine",
		Description:     "Session length is healthy.",
		ConfidenceScore: 0.75,
		Reasoning:       fmt.Sprintf("average session %.0f min", sum.AverageSessionDurationMinutes),
	}
	if sum.AverageSessionDurationMinutes < 15 {
		habit.Title = "Schedule longer sessions"
		habit.Description = "Short sessions suggest setup friction; saved reports can help."
	}

	return []models.Recommendation{cost, feature, habit}
}

// ============================================
// Прогноз продлений
// ============================================

// predictRenewal считает вероятность продления в процентах по активности за 30 дней
func predictRenewal(u models.AdminUser, usage []models.DailyUsage, now time.Time) models.RenewalPrediction {
	var calls, tickets int64
	for _, d := range usage {
		calls += d.APICalls
		tickets += d.SupportTickets
	}
	sinceLogin := 999
	if len(usage) > 0 {
		sinceLogin = int(now.Sub(usage[len(usage)-1].Date.Time).Hours() / 24)
	}

	score := 50
	if calls > 500 {
		score += 30
	}
	if tickets > 2 {
		score -= 20
	}
	switch {
	case sinceLogin <= 7:
		score += 10
	case sinceLogin > 14:
		score -= 20
	}
	score = lo.Clamp(score, 0, 100)

	p := models.RenewalPrediction{
		UserID:            u.ID,
		RenewalLikelihood: float64(score) / 100,
		KeyFactors: []string{
			fmt.Sprintf("api_calls_30d=%d", calls),
			fmt.Sprintf("support_tickets_30d=%d", tickets),
			fmt.Sprintf("days_since_last_login=%d", sinceLogin),
		},
	}
	switch {
	case score >= 70:
		p.RiskLevel = models.RiskLow
		p.RecommendedActions = []string{"Offer annual billing"}
	case score >= 45:
		p.RiskLevel = models.RiskMedium
		p.RecommendedActions = []string{"Offer a usage review"}
	default:
		p.RiskLevel = models.RiskHigh
		p.RecommendedActions = []string{"Reach out with onboarding help", "Check open support tickets"}
	}
	return p
}

func analyzeRenewals(predictions []models.RenewalPrediction) models.RenewalAnalysis {
	a := models.RenewalAnalysis{
		UserPredictions: predictions,
		Insights:        []string{},
	}
	a.OverallMetrics.TotalAnalyzed = len(predictions)
	if len(predictions) == 0 {
		return a
	}
	var total float64
	for _, p := range predictions {
		total += p.RenewalLikelihood
		switch p.RiskLevel {
		case models.RiskHigh:
			a.OverallMetrics.HighRiskUsers++
		case models.RiskLow:
			a.OverallMetrics.LikelyRenewals++
		}
	}
	a.OverallMetrics.AverageRenewalLikelihood = round2(total / float64(len(predictions)))
	a.Insights = append(a.Insights,
		fmt.Sprintf("%d of %d users are at high risk of not renewing", a.OverallMetrics.HighRiskUsers, len(predictions)),
		fmt.Sprintf("Average renewal likelihood is %.0f%%", a.OverallMetrics.AverageRenewalLikelihood*100),
	)
	return a
}
