package mockapi

import (
	"time"

	"github.com/shopspring/decimal"

	"subscription_console/internal/dto"
	"subscription_console/internal/models"
)

// Учётные данные демо-данных
const (
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "admin12345"
	SeedUserEmail     = "user@example.com"
	SeedUserPassword  = "user12345"
)

// Seed наполняет магазин демо-данными для mock-api и тестов
func Seed(s *Store) error {
	now := time.Now().UTC()

	plans := []dto.PlanRequest{
		{Type: models.PlanTypeBasic, Name: "Starter", Price: decimal.RequireFromString("199"), Duration: models.PlanDurationMonth, Description: "Entry plan for individuals"},
		{Type: models.PlanTypeStandard, Name: "Team", Price: decimal.RequireFromString("499"), Duration: models.PlanDurationThreeMonths, Description: "Shared workspace for small teams"},
		{Type: models.PlanTypePremium, Name: "Enterprise", Price: decimal.RequireFromString("1999"), Duration: models.PlanDurationYear, Description: "Everything, with priority support"},
	}
	for _, p := range plans {
		s.CreatePlan(p)
	}

	if _, err := s.AddUser(models.AdminUser{
		User:     models.User{Email: SeedAdminEmail, Username: "admin", Role: models.UserRoleAdmin},
		IsActive: true,
	}, SeedAdminPassword); err != nil {
		return err
	}

	jane, err := s.AddUser(models.AdminUser{
		User:              models.User{Email: SeedUserEmail, Username: "jane", Role: models.UserRoleUser},
		CurrentPlan:       "Standard",
		MonthlySpend:      decimal.RequireFromString("49.99"),
		SubscriptionStart: models.Timestamp{Time: now.AddDate(0, 0, -45)},
		IsActive:          true,
		RecentUsage: &models.UsageStats{
			APICalls7d:        1200,
			DataProcessedGB7d: 3.5,
			LastLogin:         models.Timestamp{Time: now.AddDate(0, 0, -1)},
		},
	}, SeedUserPassword)
	if err != nil {
		return err
	}
	s.AddUsage(jane.ID, seedUsage(now)...)
	return nil
}

// seedUsage - 30 дней активности: 2350 вызовов API, 3 обращения в поддержку,
// последний вход сегодня
func seedUsage(now time.Time) []models.DailyUsage {
	today := now.Truncate(24 * time.Hour)
	days := make([]models.DailyUsage, 0, 30)
	for i := 0; i < 30; i++ {
		features := []string{"api", "reports"}
		if i%10 == 0 {
			features = append(features, "exports")
		}
		var tickets int64
		if i%12 == 0 {
			tickets = 1
		}
		days = append(days, models.DailyUsage{
			Date:                   models.Timestamp{Time: today.AddDate(0, 0, i-29)},
			APICalls:               50 + int64(i%7)*10,
			DataProcessedGB:        0.1 * float64(i%5+1),
			SessionDurationMinutes: float64(20 + (i%3)*5),
			FeaturesUsed:           features,
			SupportTickets:         tickets,
			FeatureAdoptionScore:   0.6,
		})
	}
	return days
}
