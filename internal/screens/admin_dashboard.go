package screens

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"subscription_console/internal/dto"
	"subscription_console/internal/listmanager"
	"subscription_console/internal/models"
	"subscription_console/pkg/apperrors"
)

type userList = listmanager.Manager[models.AdminUser, struct{}]

// AdminDashboard - карточки аналитики, список пользователей,
// прогноз продлений и детальный отчёт по пользователю
type AdminDashboard struct {
	d     Deps
	users *userList
	loads *loads

	mu        sync.Mutex
	days      int
	analytics *dto.AnalyticsResponse
	renewals  *dto.RenewalPredictionsResponse
	detail    *dto.UserDetailResponse
}

func NewAdminDashboard(d Deps) *AdminDashboard {
	users := listmanager.New[models.AdminUser, struct{}](
		listmanager.ReadOnly[models.AdminUser](d.Client.Users()),
		listmanager.Options[models.AdminUser]{
			Name:        "admin.users",
			Key:         func(u models.AdminUser) int64 { return u.ID },
			DisplayName: func(u models.AdminUser) string { return u.DisplayName() },
			Match: listmanager.MatchAny(
				func(u models.AdminUser) string { return u.Username },
				func(u models.AdminUser) string { return u.Email },
				func(u models.AdminUser) string { return u.CurrentPlan },
			),
			Reporter: d.Notify,
			PageSize: d.Config.UI.PageSize,
		},
	)
	days := d.Config.UI.AnalyticsDays
	if days < 1 {
		days = 30
	}
	return &AdminDashboard{d: d, users: users, loads: newLoads("admin.dashboard"), days: days}
}

func (s *AdminDashboard) Name() string { return "admin.dashboard" }

func (s *AdminDashboard) SetPeriod(days int) {
	if days <= 0 {
		return
	}
	s.mu.Lock()
	s.days = days
	s.mu.Unlock()
}

func (s *AdminDashboard) Period() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.days
}

// Load читает аналитику и пользователей параллельно.
// Каждая ошибка сообщается отдельно; данные, которые пришли, остаются.
func (s *AdminDashboard) Load(ctx context.Context) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		return s.loadAnalytics(ctx)
	})
	g.Go(func() error {
		return s.users.Load(ctx)
	})
	return g.Wait()
}

func (s *AdminDashboard) requireAdmin(ctx context.Context) error {
	if s.loads.isClosed() {
		return apperrors.ErrScreenClosed
	}
	if !s.d.Session.IsAdmin() {
		s.d.Notify.Report(ctx, apperrors.ErrAdminRequired)
		return apperrors.ErrAdminRequired
	}
	return nil
}

func (s *AdminDashboard) loadAnalytics(ctx context.Context) error {
	days := s.Period()
	rctx, seq, done := s.loads.begin(ctx)
	defer done()

	resp, err := s.d.Client.AdminAnalytics(rctx, days)
	return s.finish(ctx, "analytics", seq, err, func() { s.analytics = resp })
}

// LoadRenewals - прогноз продлений. Считается дольше остального,
// поэтому не входит в Load.
func (s *AdminDashboard) LoadRenewals(ctx context.Context) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	rctx, seq, done := s.loads.begin(ctx)
	defer done()

	resp, err := s.d.Client.RenewalPredictions(rctx)
	return s.finish(ctx, "renewals", seq, err, func() { s.renewals = resp })
}

// LoadUserDetail - детальный отчёт по пользователю за период дашборда
func (s *AdminDashboard) LoadUserDetail(ctx context.Context, id int64) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	days := s.Period()
	rctx, seq, done := s.loads.begin(ctx)
	defer done()

	resp, err := s.d.Client.UserDetail(rctx, id, days)
	return s.finish(ctx, "detail", seq, err, func() { s.detail = resp })
}

// finish применяет ответ, если экран открыт и ответ не устарел.
// Ошибка устаревшего запроса не показывается.
func (s *AdminDashboard) finish(ctx context.Context, part string, seq uint64, err error, apply func()) error {
	if err != nil {
		stale, cerr := s.loads.commit(ctx, part, seq, nil)
		if cerr != nil {
			return cerr
		}
		if !stale {
			s.d.Notify.Report(ctx, err)
		}
		return err
	}
	_, cerr := s.loads.commit(ctx, part, seq, func() {
		s.mu.Lock()
		apply()
		s.mu.Unlock()
	})
	return cerr
}

func (s *AdminDashboard) Overview() (models.AnalyticsOverview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analytics == nil {
		return models.AnalyticsOverview{}, false
	}
	return s.analytics.Overview, true
}

// AnalyticsPeriod - за сколько дней посчитаны применённые карточки
func (s *AdminDashboard) AnalyticsPeriod() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analytics == nil {
		return 0
	}
	return s.analytics.PeriodDays
}

func (s *AdminDashboard) Renewals() (models.RenewalAnalysis, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renewals == nil {
		return models.RenewalAnalysis{}, false
	}
	return s.renewals.Analysis, true
}

func (s *AdminDashboard) UserDetail() (dto.UserDetailResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail == nil {
		return dto.UserDetailResponse{}, false
	}
	return *s.detail, true
}

// Users - поиск по username, email и текущему тарифу
func (s *AdminDashboard) Users(term string) []models.AdminUser {
	return s.users.Filter(term)
}

func (s *AdminDashboard) UsersPage(term string, page int) listmanager.Page[models.AdminUser] {
	return s.users.Page(term, 0, page)
}

// ExportCSV выгружает отфильтрованных пользователей
func (s *AdminDashboard) ExportCSV(w io.Writer, term string) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "username", "email", "role", "current_plan", "monthly_spend", "is_active", "subscription_start", "last_login"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, u := range s.Users(term) {
		lastLogin := ""
		if u.RecentUsage != nil && !u.RecentUsage.LastLogin.IsZero() {
			lastLogin = u.RecentUsage.LastLogin.Format("2006-01-02")
		}
		start := ""
		if !u.SubscriptionStart.IsZero() {
			start = u.SubscriptionStart.Format("2006-01-02")
		}
		record := []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.Email,
			string(u.Role),
			u.CurrentPlan,
			u.MonthlySpend.StringFixed(2),
			strconv.FormatBool(u.IsActive),
			start,
			lastLogin,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *AdminDashboard) Close() {
	s.loads.close()
	s.users.Close()
}
