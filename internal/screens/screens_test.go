package screens

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscription_console/internal/client"
	"subscription_console/internal/config"
	"subscription_console/internal/listmanager"
	"subscription_console/internal/mockapi"
	"subscription_console/internal/models"
	"subscription_console/internal/notify"
	"subscription_console/internal/session"
	"subscription_console/internal/validator"
	"subscription_console/pkg/apperrors"
)

// ============================================
// Окружение: mock API + настоящий клиент и сессия
// ============================================

type env struct {
	ts  *mockapi.TestServer
	cfg *config.Config
	d   Deps
}

func newEnv(t *testing.T, edit ...func(*config.Config)) *env {
	t.Helper()
	ts := mockapi.NewTestServer(t, mockapi.Options{})

	cfg := config.Default()
	cfg.API.BaseURL = ts.URL()
	cfg.UI.PageSize = 2
	for _, fn := range edit {
		fn(cfg)
	}

	sessions := session.NewManager(session.NewMemoryStore(), nil)
	c, err := client.NewFromConfig(cfg, sessions)
	require.NoError(t, err)
	sessions.SetAuthenticator(c)

	return &env{
		ts:  ts,
		cfg: cfg,
		d: Deps{
			Config:    cfg,
			Client:    c,
			Session:   sessions,
			Notify:    notify.NewCenter(time.Minute),
			Validator: validator.New(),
		},
	}
}

func (e *env) login(t *testing.T, email, password string) {
	t.Helper()
	_, err := e.d.Session.Login(context.Background(), email, password)
	require.NoError(t, err)
}

func (e *env) asAdmin(t *testing.T) *env {
	e.login(t, mockapi.SeedAdminEmail, mockapi.SeedAdminPassword)
	return e
}

func (e *env) asUser(t *testing.T) *env {
	e.login(t, mockapi.SeedUserEmail, mockapi.SeedUserPassword)
	return e
}

func planIDs(plans []models.Plan) []int64 {
	return lo.Map(plans, func(p models.Plan, _ int) int64 { return p.ID })
}

func lastNotification(t *testing.T, c *notify.Center) notify.Notification {
	t.Helper()
	active := c.Active()
	require.NotEmpty(t, active)
	return active[len(active)-1]
}

// ============================================
// Добавление
// ============================================

func TestAddPlan_CreateClearsForm(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	ctx := context.Background()

	s := NewAddPlan(e.d)
	defer s.Close()

	require.NoError(t, s.Set("type", "Premium"))
	require.NoError(t, s.Set("name", "Pro"))
	require.NoError(t, s.Set("price", "999.99"))
	require.NoError(t, s.Set("duration", "6 Months"))
	require.NoError(t, s.Set("description", "For power users"))

	conf, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, listmanager.KindCreate, conf.Kind)
	assert.Equal(t, []string{"Pro"}, conf.Names)
	assert.Equal(t, listmanager.StatePendingConfirmation, s.State())

	e.ts.API.Store().SetNextPlanID(42)
	plan, err := s.Confirm(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(42), plan.ID)
	assert.Contains(t, planIDs(s.Plans()), int64(42))
	assert.True(t, s.Form().IsEmpty())
	assert.Equal(t, "Plan added successfully!", lastNotification(t, e.d.Notify).Message)

	stored, ok := e.ts.API.Store().Plan(42)
	require.True(t, ok)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("999.99")))
}

func TestAddPlan_InvalidFormSendsNothing(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	before := len(e.ts.API.Store().Plans())

	s := NewAddPlan(e.d)
	defer s.Close()
	require.NoError(t, s.Set("name", "Broken"))
	require.NoError(t, s.Set("price", "-5"))

	_, err := s.Submit(context.Background())
	assert.Equal(t, apperrors.KindValidationFailure, apperrors.KindOf(err))
	assert.Equal(t, listmanager.StateIdle, s.State())
	assert.Len(t, e.ts.API.Store().Plans(), before)

	n := lastNotification(t, e.d.Notify)
	assert.Equal(t, notify.LevelWarning, n.Level)
	assert.Contains(t, n.Details, "price")

	assert.Error(t, s.Set("color", "red"))
	// форма сохранилась для исправления
	assert.Equal(t, "Broken", s.Form().Name)
}

func TestAddPlan_CancelKeepsForm(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	s := NewAddPlan(e.d)
	defer s.Close()

	for field, value := range map[string]string{
		"type": "Basic", "name": "Mini", "price": "9", "duration": "1 Month", "description": "Small",
	} {
		require.NoError(t, s.Set(field, value))
	}
	_, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Cancel())

	assert.False(t, s.Form().IsEmpty())
	assert.Len(t, e.ts.API.Store().Plans(), 3)
}

func TestAddPlan_LoadOptions(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	e.ts.API.Store().SetOptions(models.PlanOptions{Types: []string{"Basic"}})

	s := NewAddPlan(e.d)
	defer s.Close()
	require.NoError(t, s.LoadOptions(context.Background()))

	assert.Equal(t, []string{"Basic"}, s.Options().Types)
	// пустой список сроков с сервера - остаётся встроенный
	assert.Equal(t, models.DefaultPlanOptions().Durations, s.Options().Durations)
}

// ============================================
// Редактирование
// ============================================

func TestEditPlan_Update(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	ctx := context.Background()

	s := NewEditPlan(e.d)
	defer s.Close()
	require.NoError(t, s.Load(ctx))

	_, err := s.Submit(ctx)
	assert.Error(t, err, "без выбранного тарифа")

	require.NoError(t, s.Select(2))
	assert.Equal(t, "Team", s.Form().Name)
	assert.Equal(t, "499.00", s.Form().Price)

	require.NoError(t, s.Set("price", "549"))
	conf, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, listmanager.KindUpdate, conf.Kind)
	assert.Equal(t, []string{"Team"}, conf.Names)

	plan, err := s.Confirm(ctx)
	require.NoError(t, err)
	assert.True(t, plan.Price.Equal(decimal.NewFromInt(549)))
	assert.Equal(t, "549.00", s.Form().Price)

	selected, ok := s.Selected()
	require.True(t, ok)
	assert.True(t, selected.Price.Equal(decimal.NewFromInt(549)))

	require.NoError(t, s.Select(0))
	assert.True(t, s.Form().IsEmpty())
	assert.Error(t, s.Select(999))
}

// ============================================
// Удаление
// ============================================

func TestDeletePlan_PartialFailure(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	ctx := context.Background()
	e.ts.API.Inject("DELETE /api/plans/2", mockapi.Fault{Status: 500, Message: "boom"})

	s := NewDeletePlan(e.d)
	defer s.Close()
	require.NoError(t, s.Load(ctx))

	for _, id := range []int64{1, 2} {
		selected, err := s.Toggle(id)
		require.NoError(t, err)
		assert.True(t, selected)
	}
	_, err := s.Toggle(999)
	assert.Error(t, err)

	conf, err := s.RequestDelete(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Starter", "Team"}, conf.Names)

	res, err := s.Confirm(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.New(apperrors.CodeBatchPartialFailure, "", "", 0)))
	assert.Equal(t, []int64{1}, res.Deleted)
	assert.Equal(t, []int64{2}, res.Failed)

	assert.Equal(t, []int64{2, 3}, planIDs(s.Plans()))
	assert.True(t, s.IsSelected(2))
	assert.False(t, s.IsSelected(1))
	assert.Equal(t, notify.LevelError, lastNotification(t, e.d.Notify).Level)

	// повтор после починки сервера
	e.ts.API.ClearFaults()
	_, err = s.RequestDelete(ctx)
	require.NoError(t, err)
	res, err = s.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, res.Deleted)
	assert.Empty(t, s.Selected())
	assert.Equal(t, "Selected plans deleted successfully!", lastNotification(t, e.d.Notify).Message)
}

func TestDeletePlan_EmptySelection(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	s := NewDeletePlan(e.d)
	defer s.Close()
	require.NoError(t, s.Load(context.Background()))

	_, err := s.RequestDelete(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrEmptySelection)
	assert.Len(t, e.ts.API.Store().Plans(), 3)
}

func TestDeletePlan_SearchAndPages(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	s := NewDeletePlan(e.d)
	defer s.Close()
	require.NoError(t, s.Load(context.Background()))

	page := s.Page()
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)

	page = s.GoTo(5)
	assert.Equal(t, 2, page.Number, "номер страницы зажат")
	assert.Equal(t, []int64{3}, planIDs(page.Items))

	// маленький список - поиск применяется сразу и сбрасывает страницу
	s.Search("STAR")
	assert.Equal(t, "STAR", s.SearchTerm())
	page = s.Page()
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, []int64{1}, planIDs(page.Items))

	s.Search("nothing matches")
	page = s.Page()
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalItems)
}

func TestDeletePlan_DebouncedSearch(t *testing.T) {
	e := newEnv(t, func(cfg *config.Config) {
		cfg.UI.Debounce = 30 * time.Millisecond
		cfg.UI.DebounceThreshold = 0
	}).asAdmin(t)

	s := NewDeletePlan(e.d)
	defer s.Close()
	require.NoError(t, s.Load(context.Background()))

	s.Search("te")
	s.Search("team")
	assert.Equal(t, "", s.SearchTerm())
	assert.Eventually(t, func() bool { return s.SearchTerm() == "team" }, time.Second, 5*time.Millisecond)

	s.Search("enter")
	s.Flush()
	assert.Equal(t, "enter", s.SearchTerm())
	assert.Equal(t, []int64{3}, planIDs(s.Page().Items))
}

// ============================================
// Каталог
// ============================================

func TestPlanCatalog_Tabs(t *testing.T) {
	e := newEnv(t).asUser(t)
	s := NewPlanCatalog(e.d)
	defer s.Close()
	require.NoError(t, s.Load(context.Background()))

	tabs := s.Tabs()
	require.Len(t, tabs, 3)
	assert.Equal(t, "Basic", tabs[0].Name)
	assert.True(t, tabs[0].Active)
	assert.True(t, tabs[1].Popular)
	for _, tab := range tabs {
		assert.Equal(t, 1, tab.Count, tab.Name)
	}

	require.NoError(t, s.SelectTab("Premium"))
	visible := s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Enterprise", visible[0].Name)
	assert.False(t, s.IsPopular(visible[0]))

	assert.Error(t, s.SelectTab("Gold"))
	assert.Equal(t, "Premium", s.ActiveTab())
}

func TestPlanCatalog_LoadFailureKeepsPlans(t *testing.T) {
	e := newEnv(t).asUser(t)
	s := NewPlanCatalog(e.d)
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	e.ts.API.InjectOnce("GET /api/plans", mockapi.Fault{Status: 500, Message: "database is locked"})
	err := s.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, "database is locked", lastNotification(t, e.d.Notify).Message)
	assert.Equal(t, 3, s.Page("", 1).TotalItems)
}

// ============================================
// Дашборды
// ============================================

func TestAdminDashboard_LoadAndExport(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	s := NewAdminDashboard(e.d)
	defer s.Close()
	s.SetPeriod(7)
	require.NoError(t, s.Load(context.Background()))

	overview, ok := s.Overview()
	require.True(t, ok)
	assert.EqualValues(t, 2, overview.TotalUsers)

	assert.Len(t, s.Users(""), 2)
	assert.Len(t, s.Users("standard"), 1)
	assert.Equal(t, 1, s.UsersPage("", 5).Number)

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(&buf, "jane"))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "username", records[0][1])
	assert.Equal(t, []string{"jane", "user@example.com", "user", "Standard", "49.99", "true"}, records[1][1:7])
	assert.NotEmpty(t, records[1][7])
}

func TestAdminDashboard_RequiresAdmin(t *testing.T) {
	e := newEnv(t).asUser(t)
	s := NewAdminDashboard(e.d)
	defer s.Close()

	err := s.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrAdminRequired)
	_, ok := s.Overview()
	assert.False(t, ok)
}

func TestAdminDashboard_AnalyticsFailureKeepsUsers(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	e.ts.API.Inject("GET /api/admin/analytics", mockapi.Fault{Status: 503})

	s := NewAdminDashboard(e.d)
	defer s.Close()
	assert.Error(t, s.Load(context.Background()))

	_, ok := s.Overview()
	assert.False(t, ok)
	assert.Len(t, s.Users(""), 2)
}

func TestAdminDashboard_CloseDiscardsLateAnalytics(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	e.ts.API.Inject("GET /api/admin/analytics", mockapi.Fault{Delay: 300 * time.Millisecond})

	s := NewAdminDashboard(e.d)
	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	s.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, apperrors.ErrScreenClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("load did not return after close")
	}
	_, ok := s.Overview()
	assert.False(t, ok, "ответ после закрытия не применяется")
	assert.Empty(t, e.d.Notify.Active())
	assert.ErrorIs(t, s.Load(context.Background()), apperrors.ErrScreenClosed)
}

func TestAdminDashboard_OlderAnalyticsDoesNotOverwriteNewer(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	e.ts.API.InjectOnce("GET /api/admin/analytics", mockapi.Fault{Delay: 300 * time.Millisecond})

	s := NewAdminDashboard(e.d)
	defer s.Close()
	s.SetPeriod(7)

	slow := make(chan error, 1)
	go func() { slow <- s.Load(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	s.SetPeriod(90)
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 90, s.AnalyticsPeriod())

	require.NoError(t, <-slow)
	assert.Equal(t, 90, s.AnalyticsPeriod(), "ответ первой загрузки устарел")
}

func TestAdminDashboard_SetPeriodDuringLoad(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	s := NewAdminDashboard(e.d)
	defer s.Close()

	stop := make(chan struct{})
	go func() {
		for i := 1; ; i++ {
			select {
			case <-stop:
				return
			default:
				s.SetPeriod(i%60 + 1)
			}
		}
	}()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Load(context.Background()))
	}
	close(stop)

	s.SetPeriod(0)
	assert.Positive(t, s.Period(), "нулевой период игнорируется")
}

func TestAdminDashboard_Renewals(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	s := NewAdminDashboard(e.d)
	defer s.Close()

	_, ok := s.Renewals()
	assert.False(t, ok)
	require.NoError(t, s.LoadRenewals(context.Background()))

	a, ok := s.Renewals()
	require.True(t, ok)
	assert.Equal(t, 2, a.OverallMetrics.TotalAnalyzed)
	assert.Equal(t, 1, a.OverallMetrics.HighRiskUsers)
	assert.Equal(t, 1, a.OverallMetrics.LikelyRenewals)
	assert.InDelta(t, 0.5, a.OverallMetrics.AverageRenewalLikelihood, 0.001)

	likely := a.ByRisk(models.RiskLow, 5)
	require.Len(t, likely, 1)
	jane, ok := lo.Find(e.ts.API.Store().Users(), func(u models.AdminUser) bool { return u.Email == mockapi.SeedUserEmail })
	require.True(t, ok)
	assert.Equal(t, jane.ID, likely[0].UserID)
	assert.Len(t, a.ByRisk(models.RiskHigh, 0), 1)
	assert.NotEmpty(t, a.Insights)
}

func TestAdminDashboard_UserDetail(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	s := NewAdminDashboard(e.d)
	defer s.Close()

	jane, ok := lo.Find(e.ts.API.Store().Users(), func(u models.AdminUser) bool { return u.Email == mockapi.SeedUserEmail })
	require.True(t, ok)

	// рекомендации, выданные раньше, попадают в отчёт
	_, err := e.d.Client.UserRecommendations(context.Background(), jane.ID)
	require.NoError(t, err)

	s.SetPeriod(30)
	require.NoError(t, s.LoadUserDetail(context.Background(), jane.ID))
	detail, ok := s.UserDetail()
	require.True(t, ok)
	assert.Equal(t, mockapi.SeedUserEmail, detail.User.Email)
	assert.Equal(t, "Standard", detail.User.CurrentPlan)
	assert.Len(t, detail.UsageData, 30)
	require.Len(t, detail.RecentRecommendations, 3)
	assert.Greater(t, detail.RecentRecommendations[0].ID, detail.RecentRecommendations[2].ID, "новые первыми")

	err = s.LoadUserDetail(context.Background(), 99)
	assert.Equal(t, apperrors.KindServerError, apperrors.KindOf(err))
	assert.Equal(t, "User not found", lastNotification(t, e.d.Notify).Message)
	detail, ok = s.UserDetail()
	require.True(t, ok, "прежний отчёт остаётся")
	assert.Equal(t, jane.ID, detail.User.ID)
}

func TestAddPlan_LoadOptionsAfterClose(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	e.ts.API.Store().SetOptions(models.PlanOptions{Types: []string{"Gold"}, Durations: []string{"1 Week"}})
	e.ts.API.Inject("GET /api/plan-options", mockapi.Fault{Delay: 300 * time.Millisecond})

	s := NewAddPlan(e.d)
	done := make(chan error, 1)
	go func() { done <- s.LoadOptions(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	s.Close()

	assert.ErrorIs(t, <-done, apperrors.ErrScreenClosed)
	assert.Equal(t, models.DefaultPlanOptions(), s.Options())
	assert.Empty(t, e.d.Notify.Active())
}

func TestUserDashboard(t *testing.T) {
	e := newEnv(t).asUser(t)
	s := NewUserDashboard(e.d)
	require.NoError(t, s.Load(context.Background()))

	profile, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, "Standard", profile.CurrentPlan)
	assert.InDelta(t, 45, s.DaysSubscribed(time.Now()), 1)

	s.Close()
	assert.ErrorIs(t, s.Load(context.Background()), apperrors.ErrScreenClosed)
	// профиль после закрытия не сбрасывается
	_, ok = s.Profile()
	assert.True(t, ok)
}

func TestUserDashboard_UsageAndRecommendations(t *testing.T) {
	e := newEnv(t).asUser(t)
	s := NewUserDashboard(e.d)
	defer s.Close()
	require.NoError(t, s.Load(context.Background()))

	usage, ok := s.Usage()
	require.True(t, ok)
	assert.Equal(t, 30, usage.PeriodDays)
	assert.Len(t, usage.DailyUsage, 30)
	assert.EqualValues(t, 2350, usage.Summary.TotalAPICalls)
	assert.EqualValues(t, 3, usage.Summary.TotalSupportTickets)
	assert.Equal(t, []string{"api", "exports", "reports"}, usage.Summary.FeaturesUsed)

	s.SetPeriod(7)
	require.NoError(t, s.Load(context.Background()))
	usage, _ = s.Usage()
	assert.Equal(t, 7, usage.PeriodDays)
	assert.Len(t, usage.DailyUsage, 7)

	assert.Empty(t, s.Recommendations())
	require.NoError(t, s.LoadRecommendations(context.Background()))
	recs := s.Recommendations()
	require.Len(t, recs, 3)
	assert.Equal(t, models.RecommendationCostOptimization, recs[0].Type)
	assert.Equal(t, "Consider a smaller plan", recs[0].Title)
	assert.Equal(t, "10", recs[0].PotentialSavings.String())
	assert.Equal(t, "Try integrations", recs[1].Title)
}

func TestUserDashboard_UsageFailureKeepsProfile(t *testing.T) {
	e := newEnv(t).asUser(t)
	e.ts.API.Inject("GET /api/user/usage", mockapi.Fault{Status: 500, Message: "usage store offline"})

	s := NewUserDashboard(e.d)
	defer s.Close()
	assert.Error(t, s.Load(context.Background()))

	_, ok := s.Profile()
	assert.True(t, ok)
	_, ok = s.Usage()
	assert.False(t, ok)
	assert.Equal(t, "usage store offline", lastNotification(t, e.d.Notify).Message)
}

func TestUserDashboard_CloseDiscardsLateRecommendations(t *testing.T) {
	e := newEnv(t).asUser(t)
	e.ts.API.Inject("GET /api/user/recommendations", mockapi.Fault{Delay: 300 * time.Millisecond})

	s := NewUserDashboard(e.d)
	done := make(chan error, 1)
	go func() { done <- s.LoadRecommendations(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	s.Close()

	assert.ErrorIs(t, <-done, apperrors.ErrScreenClosed)
	assert.Empty(t, s.Recommendations())
}

// ============================================
// Навигация
// ============================================

func TestNavigator_Gating(t *testing.T) {
	e := newEnv(t)
	n := NewNavigator(e.d)
	defer n.Close()

	assert.Equal(t, RouteLogin, n.Landing())
	_, err := n.Go(RouteCatalog)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	_, err = n.Go(RoutePricing)
	assert.NoError(t, err)

	e.asUser(t)
	assert.Equal(t, RouteUser, n.Landing())
	_, err = n.Go(RouteAddPlan)
	assert.ErrorIs(t, err, apperrors.ErrAdminRequired)
	assert.Equal(t, RoutePricing, n.Current())

	screen, err := n.Go(RouteCatalog)
	require.NoError(t, err)
	assert.IsType(t, &PlanCatalog{}, screen)
	assert.Equal(t, RouteCatalog, n.Current())

	_, err = n.Go("nowhere")
	assert.Error(t, err)
}

func TestNavigator_LogoutReturnsToLogin(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	n := NewNavigator(e.d)
	defer n.Close()

	assert.Equal(t, RouteAdmin, n.Landing())
	screen, err := n.Go(RouteDelete)
	require.NoError(t, err)

	require.NoError(t, e.d.Session.Logout(context.Background()))
	assert.Equal(t, RouteLogin, n.Current())
	assert.Equal(t, "login", n.Active().Name())

	// закрытый экран больше не принимает подтверждения
	_, err = screen.(*DeletePlan).Confirm(context.Background())
	assert.Error(t, err)
}

func TestNavigator_ExpiredSessionReturnsToLogin(t *testing.T) {
	e := newEnv(t).asAdmin(t)
	n := NewNavigator(e.d)
	defer n.Close()

	screen, err := n.Go(RouteCatalog)
	require.NoError(t, err)

	e.ts.API.InjectOnce("GET /api/plans", mockapi.Fault{Status: 401})
	err = screen.(*PlanCatalog).Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)

	assert.False(t, e.d.Session.Authenticated())
	assert.Equal(t, RouteLogin, n.Current())
}

// ============================================
// Цены
// ============================================

func TestSavingsPercent(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		monthly, yearly string
		want            int64
	}{
		{"9.99", "7.99", 20},
		{"49.99", "39.99", 20},
		{"10", "7.5", 25},
		{"0", "0", 0},
		{"5", "5", 0},
		{"5", "6", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SavingsPercent(d(tt.monthly), d(tt.yearly)), tt.monthly+"/"+tt.yearly)
	}
}

func TestPricing_Cycle(t *testing.T) {
	e := newEnv(t)
	s := NewPricing(e.d)

	monthly := s.Cards()
	require.NotEmpty(t, monthly)
	assert.Equal(t, "Free", monthly[0].PriceLabel())
	assert.Zero(t, monthly[0].SavingsPercent)

	assert.Equal(t, CycleYearly, s.Toggle())
	yearly := s.Cards()
	pro, ok := lo.Find(yearly, func(c Card) bool { return c.Name == "Pro" })
	require.True(t, ok)
	assert.Equal(t, "$7.99/mo", pro.PriceLabel())
	assert.Equal(t, int64(20), pro.SavingsPercent)
	assert.True(t, pro.Featured)

	assert.Equal(t, CycleMonthly, s.Toggle())

	c, err := ParseCycle("")
	require.NoError(t, err)
	assert.Equal(t, CycleMonthly, c)
	_, err = ParseCycle("weekly")
	assert.Error(t, err)
}
