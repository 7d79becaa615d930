package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"subscription_console/internal/auth"
	"subscription_console/internal/dto"
	"subscription_console/internal/middleware"
	"subscription_console/internal/models"
	"subscription_console/pkg/apperrors"
)

type Options struct {
	Secret   []byte
	TokenTTL time.Duration
	// CreatePath дублирует POST /api/plans (например /api/add-plan)
	CreatePath string
	// UsersAsArray: /api/admin/users отдаёт голый массив вместо {users: [...]}
	UsersAsArray bool
	// AllowOrigins - origins браузерного фронтенда; пусто - CORS выключен
	AllowOrigins []string
	Seed         bool
}

// API - фейковый бэкенд управления подписками на gin.
// Нужен тестам и команде mock-api; настоящий сервер вне этого репозитория.
type API struct {
	store  *Store
	opts   Options
	faults *faults
	router *gin.Engine
	now    func() time.Time
}

func New(opts Options) (*API, error) {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("mock-api-secret")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}

	a := &API{
		store:  NewStore(),
		opts:   opts,
		faults: newFaults(),
		now:    time.Now,
	}
	if opts.Seed {
		if err := Seed(a.store); err != nil {
			return nil, err
		}
	}
	a.router = a.setupRouter()
	return a, nil
}

func (a *API) Store() *Store {
	return a.store
}

func (a *API) Handler() http.Handler {
	return a.router
}

// Inject - постоянная неисправность маршрута
func (a *API) Inject(key string, f Fault) {
	a.faults.mu.Lock()
	a.faults.sticky[key] = f
	a.faults.mu.Unlock()
}

// InjectOnce - неисправности на следующие запросы, по одной на запрос
func (a *API) InjectOnce(key string, fs ...Fault) {
	a.faults.mu.Lock()
	a.faults.once[key] = append(a.faults.once[key], fs...)
	a.faults.mu.Unlock()
}

func (a *API) ClearFaults() {
	a.faults.mu.Lock()
	a.faults.sticky = make(map[string]Fault)
	a.faults.once = make(map[string][]Fault)
	a.faults.mu.Unlock()
}

// IssueToken - токен для существующего пользователя (тесты)
func (a *API) IssueToken(u models.User, ttl time.Duration) (string, error) {
	return auth.IssueToken(a.opts.Secret, u, ttl, a.now())
}

func (a *API) setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if len(a.opts.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  a.opts.AllowOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}))
	}
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(a.faults.middleware())
	r.Use(middleware.SanitizeInputMiddleware())

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/login", a.login)
		authGroup.POST("/register", a.register)

		api.GET("/plans", a.listPlans)
		api.GET("/plan-options", a.planOptions)

		secured := api.Group("")
		secured.Use(middleware.AuthMiddleware(a.opts.Secret))
		{
			secured.GET("/user/profile", a.profile)
			secured.GET("/user/usage", a.userUsage)
			secured.GET("/user/recommendations", a.recommendations)

			admin := secured.Group("")
			admin.Use(middleware.RoleMiddleware(models.UserRoleAdmin))
			admin.POST("/plans", a.createPlan)
			admin.PUT("/plans/:id", a.updatePlan)
			admin.PATCH("/plans/:id", a.patchPlan)
			admin.DELETE("/plans/:id", a.deletePlan)
			admin.GET("/admin/users", a.listUsers)
			admin.GET("/admin/analytics", a.analytics)
			admin.GET("/admin/renewal-predictions", a.renewalPredictions)
			admin.GET("/admin/user/:id/detailed", a.userDetail)
		}
	}

	if p := a.opts.CreatePath; p != "" && p != "/api/plans" {
		r.POST(p, middleware.AuthMiddleware(a.opts.Secret), middleware.RoleMiddleware(models.UserRoleAdmin), a.createPlan)
	}
	return r
}

// ============================================
// Auth
// ============================================

func (a *API) login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	user, ok := a.store.Authenticate(email, password)
	if !ok {
		apperrors.HandleError(c, apperrors.New(apperrors.CodeInvalidCredentials, "auth", "Incorrect email or password", http.StatusUnauthorized))
		return
	}
	a.issue(c, user)
}

func (a *API) register(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if email == "" || username == "" || password == "" {
		apperrors.HandleError(c, apperrors.NewValidationMessage("email, username and password are required"))
		return
	}
	if a.store.EmailTaken(email) {
		apperrors.HandleError(c, apperrors.New(apperrors.CodeValidationFailed, "auth", "Email already registered", http.StatusBadRequest))
		return
	}

	// роль из формы игнорируется
	created, err := a.store.AddUser(models.AdminUser{
		User:     models.User{Email: email, Username: username, Role: models.UserRoleUser},
		IsActive: true,
	}, password)
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	a.issue(c, created.User)
}

func (a *API) issue(c *gin.Context, user models.User) {
	token, err := a.IssueToken(user, a.opts.TokenTTL)
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	reply(c, http.StatusOK, dto.LoginResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// ============================================
// Plans
// ============================================

func (a *API) listPlans(c *gin.Context) {
	reply(c, http.StatusOK, a.store.Plans())
}

func (a *API) planOptions(c *gin.Context) {
	reply(c, http.StatusOK, a.store.Options())
}

func (a *API) createPlan(c *gin.Context) {
	req, ok := bindPlan(c)
	if !ok {
		return
	}
	reply(c, http.StatusCreated, a.store.CreatePlan(req))
}

func (a *API) updatePlan(c *gin.Context) {
	id, ok := planID(c)
	if !ok {
		return
	}
	req, ok := bindPlan(c)
	if !ok {
		return
	}
	plan, found := a.store.UpdatePlan(id, req)
	if !found {
		apperrors.HandleError(c, apperrors.ServerError(http.StatusNotFound, "Plan not found"))
		return
	}
	reply(c, http.StatusOK, plan)
}

func (a *API) patchPlan(c *gin.Context) {
	id, ok := planID(c)
	if !ok {
		return
	}
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		apperrors.HandleError(c, apperrors.NewValidationMessage("Malformed JSON"))
		return
	}
	var req dto.PlanRequest
	if v, ok := raw["type"].(string); ok {
		req.Type = models.PlanType(v)
	}
	if v, ok := raw["name"].(string); ok {
		req.Name = v
	}
	if v, ok := raw["duration"].(string); ok {
		req.Duration = models.PlanDuration(v)
	}
	if v, ok := raw["description"].(string); ok {
		req.Description = v
	}
	_, hasPrice := raw["price"]
	if hasPrice {
		price, err := decimal.NewFromString(strings.TrimSpace(toString(raw["price"])))
		if err != nil {
			apperrors.HandleError(c, apperrors.NewValidationMessage("price must be a number"))
			return
		}
		req.Price = price
	}

	plan, found := a.store.PatchPlan(id, req, hasPrice)
	if !found {
		apperrors.HandleError(c, apperrors.ServerError(http.StatusNotFound, "Plan not found"))
		return
	}
	reply(c, http.StatusOK, plan)
}

func (a *API) deletePlan(c *gin.Context) {
	id, ok := planID(c)
	if !ok {
		return
	}
	if !a.store.DeletePlan(id) {
		apperrors.HandleError(c, apperrors.ServerError(http.StatusNotFound, "Plan not found"))
		return
	}
	reply(c, http.StatusOK, gin.H{"message": "Plan deleted successfully"})
}

func bindPlan(c *gin.Context) (dto.PlanRequest, bool) {
	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.NewValidationMessage("Malformed plan payload"))
		return req, false
	}
	details := map[string]string{}
	if !req.Type.IsValid() {
		details["type"] = "invalid plan type"
	}
	if !req.Duration.IsValid() {
		details["duration"] = "invalid duration"
	}
	if strings.TrimSpace(req.Name) == "" {
		details["name"] = "name is required"
	}
	if req.Price.IsNegative() {
		details["price"] = "price must not be negative"
	}
	if len(details) > 0 {
		appErr := apperrors.New(apperrors.CodeValidationFailed, "plans", "Invalid plan", http.StatusUnprocessableEntity).WithDetails(details)
		apperrors.HandleError(c, appErr)
		return req, false
	}
	// сервер нормализует цену до копеек
	req.Price = req.Price.Round(2)
	return req, true
}

func planID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewValidationMessage("invalid plan id"))
		return 0, false
	}
	return id, true
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// ============================================
// Admin / user
// ============================================

func (a *API) listUsers(c *gin.Context) {
	users := a.store.Users()
	if c.Query("include_usage") != "true" {
		for i := range users {
			users[i].RecentUsage = nil
		}
	}
	if a.opts.UsersAsArray {
		reply(c, http.StatusOK, users)
		return
	}
	reply(c, http.StatusOK, dto.UsersResponse{Users: users, TotalCount: len(users)})
}

func periodDays(c *gin.Context) (int, bool) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 {
		apperrors.HandleError(c, apperrors.NewValidationMessage("days must be a positive integer"))
		return 0, false
	}
	return days, true
}

func (a *API) analytics(c *gin.Context) {
	days, ok := periodDays(c)
	if !ok {
		return
	}
	reply(c, http.StatusOK, dto.AnalyticsResponse{
		PeriodDays:  days,
		Overview:    a.store.Overview(),
		GeneratedAt: models.Timestamp{Time: a.now().UTC()},
	})
}

func (a *API) profile(c *gin.Context) {
	id, ok := middleware.UserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.ErrNotAuthenticated)
		return
	}
	u, found := a.store.User(id)
	if !found {
		apperrors.HandleError(c, apperrors.ServerError(http.StatusNotFound, "User not found"))
		return
	}
	reply(c, http.StatusOK, models.UserProfile{
		User:              u.User,
		CurrentPlan:       u.CurrentPlan,
		MonthlySpend:      u.MonthlySpend,
		SubscriptionStart: u.SubscriptionStart,
		SubscriptionEnd:   u.SubscriptionEnd,
		CreatedAt:         u.CreatedAt,
	})
}

func (a *API) renewalPredictions(c *gin.Context) {
	now := a.now().UTC()
	since := now.AddDate(0, 0, -30)
	predictions := lo.Map(a.store.Users(), func(u models.AdminUser, _ int) models.RenewalPrediction {
		return predictRenewal(u, a.store.Usage(u.ID, since), now)
	})
	reply(c, http.StatusOK, dto.RenewalPredictionsResponse{
		Analysis:    analyzeRenewals(predictions),
		GeneratedAt: models.Timestamp{Time: now},
	})
}

func (a *API) userDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewValidationMessage("invalid user id"))
		return
	}
	days, ok := periodDays(c)
	if !ok {
		return
	}
	u, found := a.store.User(id)
	if !found {
		apperrors.HandleError(c, apperrors.ServerError(http.StatusNotFound, "User not found"))
		return
	}
	usage := a.store.Usage(id, a.now().UTC().AddDate(0, 0, -days))
	if usage == nil {
		usage = []models.DailyUsage{}
	}
	reply(c, http.StatusOK, dto.UserDetailResponse{
		User: dto.UserDetail{
			ID:                u.ID,
			Username:          u.Username,
			Email:             u.Email,
			CurrentPlan:       u.CurrentPlan,
			MonthlySpend:      u.MonthlySpend,
			SubscriptionStart: u.SubscriptionStart,
			SubscriptionEnd:   u.SubscriptionEnd,
		},
		UsageData:             usage,
		RecentRecommendations: a.store.RecentRecommendations(id, 10),
	})
}

// targetUser - пользователь из токена; администратор может указать user_id
func (a *API) targetUser(c *gin.Context) (models.AdminUser, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.ErrNotAuthenticated)
		return models.AdminUser{}, false
	}
	if raw := c.Query("user_id"); raw != "" {
		requested, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewValidationMessage("invalid user_id"))
			return models.AdminUser{}, false
		}
		if requested != id && middleware.Role(c) != models.UserRoleAdmin {
			apperrors.HandleError(c, apperrors.ServerError(http.StatusForbidden, "Not allowed to view another user"))
			return models.AdminUser{}, false
		}
		id = requested
	}
	u, found := a.store.User(id)
	if !found {
		apperrors.HandleError(c, apperrors.ServerError(http.StatusNotFound, "User not found"))
		return models.AdminUser{}, false
	}
	return u, true
}

func (a *API) userUsage(c *gin.Context) {
	u, ok := a.targetUser(c)
	if !ok {
		return
	}
	days, ok := periodDays(c)
	if !ok {
		return
	}
	usage := a.store.Usage(u.ID, a.now().UTC().AddDate(0, 0, -days))
	if usage == nil {
		usage = []models.DailyUsage{}
	}
	reply(c, http.StatusOK, dto.UsageResponse{
		UserID:     u.ID,
		PeriodDays: days,
		Summary:    summarizeUsage(u, usage),
		DailyUsage: usage,
	})
}

func (a *API) recommendations(c *gin.Context) {
	u, ok := a.targetUser(c)
	if !ok {
		return
	}
	now := a.now().UTC()
	usage := a.store.Usage(u.ID, now.AddDate(0, 0, -30))
	recs := a.store.SaveRecommendations(u.ID, recommend(u, usage), now)
	reply(c, http.StatusOK, dto.RecommendationsResponse{
		UserID:          u.ID,
		Recommendations: recs,
		GeneratedAt:     models.Timestamp{Time: now},
	})
}
