package mockapi

import (
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"subscription_console/internal/auth"
	"subscription_console/internal/dto"
	"subscription_console/internal/models"
)

type account struct {
	models.AdminUser
	PasswordHash string
}

// Store - данные фейкового API в памяти
type Store struct {
	mu         sync.Mutex
	plans      []models.Plan
	nextPlanID int64
	accounts   []account
	nextUserID int64
	options    models.PlanOptions
	usage      map[int64][]models.DailyUsage
	recs       map[int64][]models.Recommendation
	nextRecID  int64
}

func NewStore() *Store {
	return &Store{
		nextPlanID: 1,
		nextUserID: 1,
		nextRecID:  1,
		options:    models.DefaultPlanOptions(),
		usage:      make(map[int64][]models.DailyUsage),
		recs:       make(map[int64][]models.Recommendation),
	}
}

// ============================================
// Тарифы
// ============================================

func (s *Store) Plans() []models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Plan, len(s.plans))
	copy(out, s.plans)
	return out
}

func (s *Store) Plan(id int64) (models.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Find(s.plans, func(p models.Plan) bool { return p.ID == id })
}

func (s *Store) CreatePlan(req dto.PlanRequest) models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan := dto.PlanFromRequest(s.nextPlanID, req)
	s.nextPlanID++
	s.plans = append(s.plans, plan)
	return plan
}

// SetNextPlanID - тесты, которым нужен конкретный id (например 42)
func (s *Store) SetNextPlanID(id int64) {
	s.mu.Lock()
	s.nextPlanID = id
	s.mu.Unlock()
}

func (s *Store) UpdatePlan(id int64, req dto.PlanRequest) (models.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, idx, ok := lo.FindIndexOf(s.plans, func(p models.Plan) bool { return p.ID == id })
	if !ok {
		return models.Plan{}, false
	}
	s.plans[idx] = dto.PlanFromRequest(id, req)
	return s.plans[idx], true
}

// PatchPlan - частичное обновление: пустые поля не трогаются
func (s *Store) PatchPlan(id int64, req dto.PlanRequest, hasPrice bool) (models.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, idx, ok := lo.FindIndexOf(s.plans, func(p models.Plan) bool { return p.ID == id })
	if !ok {
		return models.Plan{}, false
	}
	p := &s.plans[idx]
	if req.Type != "" {
		p.Type = req.Type
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if hasPrice {
		p.Price = req.Price
	}
	if req.Duration != "" {
		p.Duration = req.Duration
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	return *p, true
}

func (s *Store) DeletePlan(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.plans)
	s.plans = lo.Reject(s.plans, func(p models.Plan, _ int) bool { return p.ID == id })
	return len(s.plans) != before
}

func (s *Store) Options() models.PlanOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

func (s *Store) SetOptions(opts models.PlanOptions) {
	s.mu.Lock()
	s.options = opts
	s.mu.Unlock()
}

// ============================================
// Пользователи
// ============================================

// AddUser создаёт учётную запись с bcrypt-хешем пароля
func (s *Store) AddUser(u models.AdminUser, password string) (models.AdminUser, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.AdminUser{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextUserID
	s.nextUserID++
	if u.Role == "" {
		u.Role = models.UserRoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = models.Timestamp{Time: time.Now().UTC()}
	}
	s.accounts = append(s.accounts, account{AdminUser: u, PasswordHash: hash})
	return u, nil
}

func (s *Store) Authenticate(email, password string) (models.User, bool) {
	s.mu.Lock()
	acc, ok := lo.Find(s.accounts, func(a account) bool { return strings.EqualFold(a.Email, email) })
	s.mu.Unlock()
	if !ok || !auth.CheckPasswordHash(password, acc.PasswordHash) {
		return models.User{}, false
	}
	return acc.User, true
}

func (s *Store) EmailTaken(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.ContainsBy(s.accounts, func(a account) bool { return strings.EqualFold(a.Email, email) })
}

func (s *Store) Users() []models.AdminUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Map(s.accounts, func(a account, _ int) models.AdminUser { return a.AdminUser })
}

func (s *Store) User(id int64) (models.AdminUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := lo.Find(s.accounts, func(a account) bool { return a.ID == id })
	return acc.AdminUser, ok
}

// Overview считает карточки дашборда по текущим пользователям
func (s *Store) Overview() models.AnalyticsOverview {
	users := s.Users()
	var o models.AnalyticsOverview
	o.TotalUsers = int64(len(users))
	for _, u := range users {
		if u.IsActive {
			o.ActiveUsers++
		}
		o.TotalMonthlyRevenue = o.TotalMonthlyRevenue.Add(u.MonthlySpend)
		if u.RecentUsage != nil {
			o.TotalAPICalls += u.RecentUsage.APICalls7d
			o.TotalDataProcessedGB += u.RecentUsage.DataProcessedGB7d
		}
	}
	o.TotalMonthlyRevenue = o.TotalMonthlyRevenue.Round(2)
	if o.TotalUsers > 0 {
		o.AverageRevenuePerUser = o.TotalMonthlyRevenue.Div(decimal.NewFromInt(o.TotalUsers)).Round(2)
	}
	return o
}
