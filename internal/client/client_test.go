package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"subscription_console/internal/dto"
	"subscription_console/internal/mockapi"
	"subscription_console/internal/models"
	"subscription_console/internal/session"
	"subscription_console/pkg/apperrors"
)

// staticTokens - TokenSource с фиксированным токеном; считает Invalidate
type staticTokens struct {
	mu          sync.Mutex
	token       string
	invalidated []error
}

func (s *staticTokens) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *staticTokens) Invalidate(_ context.Context, token string, reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return
	}
	s.token = ""
	s.invalidated = append(s.invalidated, reason)
}

func (s *staticTokens) invalidations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invalidated)
}

type ClientSuite struct {
	suite.Suite
	ts     *mockapi.TestServer
	tokens *staticTokens
	client *Client
}

func (s *ClientSuite) SetupTest() {
	s.ts = mockapi.NewTestServer(s.T(), mockapi.Options{})
	s.tokens = &staticTokens{token: s.ts.AdminToken(s.T())}

	c, err := New(Options{BaseURL: s.ts.URL()}, s.tokens)
	s.Require().NoError(err)
	s.client = c
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func newPlanRequest(name string) dto.PlanRequest {
	return dto.PlanRequest{
		Type:        models.PlanTypeStandard,
		Name:        name,
		Price:       decimal.RequireFromString("9.999"),
		Duration:    models.PlanDurationMonth,
		Description: "Created from tests",
	}
}

// ============================================
// Тарифы
// ============================================

func (s *ClientSuite) TestListPlans() {
	plans, err := s.client.ListPlans(context.Background())
	s.Require().NoError(err)
	s.Require().Len(plans, 3)
	s.Equal("Starter", plans[0].Name)
	s.True(plans[0].Price.Equal(decimal.NewFromInt(199)))
}

func (s *ClientSuite) TestPlanOptions() {
	opts, err := s.client.PlanOptions(context.Background())
	s.Require().NoError(err)
	s.Contains(opts.Types, "Premium")
	s.Contains(opts.Durations, "1 Year")
}

func (s *ClientSuite) TestCreatePlan_ReturnsServerEntity() {
	s.ts.API.Store().SetNextPlanID(42)

	plan, err := s.client.CreatePlan(context.Background(), newPlanRequest("Growth"))
	s.Require().NoError(err)

	// id назначил сервер, цену он округлил
	s.Equal(int64(42), plan.ID)
	s.True(plan.Price.Equal(decimal.RequireFromString("10")), "price: %s", plan.Price)

	stored, ok := s.ts.API.Store().Plan(42)
	s.Require().True(ok)
	s.Equal("Growth", stored.Name)
}

func (s *ClientSuite) TestCreatePlan_AlternatePath() {
	ts := mockapi.NewTestServer(s.T(), mockapi.Options{CreatePath: "/api/add-plan"})
	// основной путь на этом сервере не отвечает
	ts.API.Inject("POST /api/plans", mockapi.Fault{Status: http.StatusNotFound})

	c, err := New(Options{BaseURL: ts.URL(), CreatePath: "/api/add-plan"}, &staticTokens{token: ts.AdminToken(s.T())})
	s.Require().NoError(err)

	plan, err := c.CreatePlan(context.Background(), newPlanRequest("Growth"))
	s.Require().NoError(err)
	s.Equal(int64(4), plan.ID)
}

func (s *ClientSuite) TestCreatePlan_ValidationRejected() {
	req := newPlanRequest("Growth")
	req.Type = "Gold"

	_, err := s.client.CreatePlan(context.Background(), req)
	appErr, ok := apperrors.AsAppError(err)
	s.Require().True(ok)
	s.Equal(http.StatusUnprocessableEntity, appErr.HTTPCode)
	s.Equal(apperrors.KindServerError, apperrors.KindOf(err))
	s.Equal("Invalid plan", appErr.Message)
}

func (s *ClientSuite) TestUpdatePlan_Put() {
	plan, err := s.client.UpdatePlan(context.Background(), 2, newPlanRequest("Team Plus"))
	s.Require().NoError(err)
	s.Equal(int64(2), plan.ID)
	s.Equal("Team Plus", plan.Name)
	s.Equal("Created from tests", plan.Description)
}

func (s *ClientSuite) TestUpdatePlan_Patch() {
	c, err := New(Options{BaseURL: s.ts.URL(), UpdateMethod: "patch"}, s.tokens)
	s.Require().NoError(err)

	req := dto.PlanRequest{Name: "Team Plus", Price: decimal.RequireFromString("550")}
	plan, err := c.UpdatePlan(context.Background(), 2, req)
	s.Require().NoError(err)
	s.Equal("Team Plus", plan.Name)
	s.Equal(models.PlanTypeStandard, plan.Type, "незаданные поля не меняются")
	s.True(plan.Price.Equal(decimal.NewFromInt(550)))
}

func (s *ClientSuite) TestDeletePlan() {
	ctx := context.Background()
	s.Require().NoError(s.client.DeletePlan(ctx, 1))

	err := s.client.DeletePlan(ctx, 1)
	appErr, ok := apperrors.AsAppError(err)
	s.Require().True(ok)
	s.Equal(apperrors.CodeNotFound, appErr.Code)
	s.Equal("Plan not found", appErr.Message)
}

func (s *ClientSuite) TestNonAdminForbidden() {
	userToken := s.ts.LoginAs(s.T(), mockapi.SeedUserEmail, mockapi.SeedUserPassword)
	c, err := New(Options{BaseURL: s.ts.URL()}, &staticTokens{token: userToken})
	s.Require().NoError(err)

	_, err = c.CreatePlan(context.Background(), newPlanRequest("Growth"))
	appErr, ok := apperrors.AsAppError(err)
	s.Require().True(ok)
	s.Equal(apperrors.CodeForbidden, appErr.Code)
	s.Len(s.ts.API.Store().Plans(), 3)
}

// ============================================
// Ошибки
// ============================================

func (s *ClientSuite) TestUnauthorizedInvalidatesSession() {
	s.tokens.token = "not-a-jwt"

	_, err := s.client.ListAdminUsers(context.Background())
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrSessionExpired)
	s.Equal(apperrors.KindSessionExpired, apperrors.KindOf(err))
	s.Equal(1, s.tokens.invalidations())
	s.Empty(s.tokens.Token())
}

func (s *ClientSuite) TestLateUnauthorizedKeepsNewerSession() {
	sessions := session.NewManager(session.NewMemoryStore(), nil)
	c, err := New(Options{BaseURL: s.ts.URL()}, sessions)
	s.Require().NoError(err)
	sessions.SetAuthenticator(c)

	ctx := context.Background()
	_, err = sessions.Login(ctx, mockapi.SeedUserEmail, mockapi.SeedUserPassword)
	s.Require().NoError(err)

	s.ts.API.InjectOnce("GET /api/user/profile", mockapi.Fault{Delay: 300 * time.Millisecond, Status: http.StatusUnauthorized})
	done := make(chan error, 1)
	go func() {
		_, err := c.UserProfile(ctx)
		done <- err
	}()

	// вход под другим пользователем, пока старый запрос в полёте
	time.Sleep(50 * time.Millisecond)
	_, err = sessions.Login(ctx, mockapi.SeedAdminEmail, mockapi.SeedAdminPassword)
	s.Require().NoError(err)

	s.ErrorIs(<-done, apperrors.ErrSessionExpired)
	s.True(sessions.Authenticated())
	s.Equal(mockapi.SeedAdminEmail, sessions.User().Email)
}

func (s *ClientSuite) TestServerErrorCarriesMessage() {
	s.ts.API.InjectOnce("GET /api/plans", mockapi.Fault{Status: http.StatusInternalServerError, Message: "database is locked"})

	_, err := s.client.ListPlans(context.Background())
	appErr, ok := apperrors.AsAppError(err)
	s.Require().True(ok)
	s.Equal(apperrors.CodeServerError, appErr.Code)
	s.Equal(http.StatusInternalServerError, appErr.HTTPCode)
	s.Equal("database is locked", appErr.Message)

	// неисправность одноразовая
	_, err = s.client.ListPlans(context.Background())
	s.NoError(err)
}

func (s *ClientSuite) TestContextCanceledIsNotNetworkFailure() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.client.ListPlans(ctx)
	s.ErrorIs(err, context.Canceled)
	_, isAppErr := apperrors.AsAppError(err)
	s.False(isAppErr)
}

// ============================================
// Админка и профиль
// ============================================

func (s *ClientSuite) TestListAdminUsers_ObjectShape() {
	users, err := s.client.ListAdminUsers(context.Background())
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("jane", users[1].Username)
	s.Require().NotNil(users[1].RecentUsage)
	s.Equal(int64(1200), users[1].RecentUsage.APICalls7d)
}

func (s *ClientSuite) TestListAdminUsers_ArrayShape() {
	ts := mockapi.NewTestServer(s.T(), mockapi.Options{UsersAsArray: true})
	c, err := New(Options{BaseURL: ts.URL()}, &staticTokens{token: ts.AdminToken(s.T())})
	s.Require().NoError(err)

	users, err := c.ListAdminUsers(context.Background())
	s.Require().NoError(err)
	s.Len(users, 2)
}

func (s *ClientSuite) TestAdminAnalytics() {
	resp, err := s.client.AdminAnalytics(context.Background(), 7)
	s.Require().NoError(err)
	s.Equal(7, resp.PeriodDays)
	s.Equal(int64(2), resp.Overview.TotalUsers)
}

func (s *ClientSuite) TestUserProfile() {
	userToken := s.ts.LoginAs(s.T(), mockapi.SeedUserEmail, mockapi.SeedUserPassword)
	c, err := New(Options{BaseURL: s.ts.URL()}, &staticTokens{token: userToken})
	s.Require().NoError(err)

	profile, err := c.UserProfile(context.Background())
	s.Require().NoError(err)
	s.Equal(mockapi.SeedUserEmail, profile.Email)
	s.Equal("Standard", profile.CurrentPlan)
	s.False(profile.SubscriptionStart.IsZero())
}

func (s *ClientSuite) TestUserUsageAndRecommendations() {
	userToken := s.ts.LoginAs(s.T(), mockapi.SeedUserEmail, mockapi.SeedUserPassword)
	c, err := New(Options{BaseURL: s.ts.URL()}, &staticTokens{token: userToken})
	s.Require().NoError(err)

	usage, err := c.UserUsage(context.Background(), 2, 0)
	s.Require().NoError(err)
	s.Equal(30, usage.PeriodDays, "период по умолчанию")
	s.EqualValues(2, usage.UserID)
	s.Len(usage.DailyUsage, 30)

	recs, err := c.UserRecommendations(context.Background(), 0)
	s.Require().NoError(err)
	s.Len(recs, 3)
	s.NotZero(recs[0].ID)
}

func (s *ClientSuite) TestRenewalPredictionsAndUserDetail() {
	resp, err := s.client.RenewalPredictions(context.Background())
	s.Require().NoError(err)
	s.Equal(2, resp.Analysis.OverallMetrics.TotalAnalyzed)
	s.False(resp.GeneratedAt.IsZero())

	detail, err := s.client.UserDetail(context.Background(), 2, 7)
	s.Require().NoError(err)
	s.Equal(mockapi.SeedUserEmail, detail.User.Email)
	s.Len(detail.UsageData, 7)

	_, err = s.client.UserDetail(context.Background(), 99, 7)
	appErr, ok := apperrors.AsAppError(err)
	s.Require().True(ok)
	s.Equal(apperrors.CodeNotFound, appErr.Code)
}

// ============================================
// Вход
// ============================================

func (s *ClientSuite) TestLogin() {
	resp, err := s.client.Login(context.Background(), mockapi.SeedAdminEmail, mockapi.SeedAdminPassword)
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
	s.Equal(models.UserRoleAdmin, resp.User.Role)
}

func (s *ClientSuite) TestLogin_WrongPasswordDoesNotInvalidate() {
	_, err := s.client.Login(context.Background(), mockapi.SeedAdminEmail, "wrong-password")
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)
	s.Equal(0, s.tokens.invalidations())
}

func (s *ClientSuite) TestRegister_RoleAlwaysUser() {
	resp, err := s.client.Register(context.Background(), dto.RegisterRequest{
		Email:    "new@example.com",
		Username: "newbie",
		Password: "password123",
	})
	s.Require().NoError(err)
	s.Equal(models.UserRoleUser, resp.User.Role)
	s.Equal("newbie", resp.User.Username)
}

// ============================================
// Без фейкового API
// ============================================

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "localhost"}, nil)
	assert.Error(t, err)
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url}, nil)
	require.NoError(t, err)

	_, err = c.ListPlans(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNetworkFailure, apperrors.KindOf(err))
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, "Network error during loading plans. Please try again.", appErr.Message)
}

func TestClient_DecodeFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = c.ListPlans(context.Background())
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeDecodeFailed, appErr.Code)
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL}, &staticTokens{token: "abc"})
	require.NoError(t, err)

	plans, err := c.ListPlans(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, plans)
	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}

func TestClient_EmptyDeleteBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/plans/7", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	assert.NoError(t, c.DeletePlan(context.Background(), 7))
}
