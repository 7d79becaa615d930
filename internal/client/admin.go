package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"subscription_console/internal/dto"
	"subscription_console/internal/models"
)

// ListAdminUsers - GET /api/admin/users?include_usage=true
func (c *Client) ListAdminUsers(ctx context.Context) ([]models.AdminUser, error) {
	var resp dto.UsersResponse
	err := c.do(ctx, request{
		op:     "loading users",
		method: http.MethodGet,
		path:   "/api/admin/users",
		query:  url.Values{"include_usage": {"true"}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Users == nil {
		resp.Users = []models.AdminUser{}
	}
	return resp.Users, nil
}

// AdminAnalytics - GET /api/admin/analytics?days=N
func (c *Client) AdminAnalytics(ctx context.Context, days int) (*dto.AnalyticsResponse, error) {
	if days < 1 {
		days = 30
	}
	var resp dto.AnalyticsResponse
	err := c.do(ctx, request{
		op:     "loading analytics",
		method: http.MethodGet,
		path:   "/api/admin/analytics",
		query:  url.Values{"days": {strconv.Itoa(days)}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RenewalPredictions - GET /api/admin/renewal-predictions
func (c *Client) RenewalPredictions(ctx context.Context) (*dto.RenewalPredictionsResponse, error) {
	var resp dto.RenewalPredictionsResponse
	err := c.do(ctx, request{
		op:     "loading renewal predictions",
		method: http.MethodGet,
		path:   "/api/admin/renewal-predictions",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserDetail - GET /api/admin/user/{id}/detailed?days=N
func (c *Client) UserDetail(ctx context.Context, id int64, days int) (*dto.UserDetailResponse, error) {
	if days < 1 {
		days = 30
	}
	var resp dto.UserDetailResponse
	err := c.do(ctx, request{
		op:     "loading user details",
		method: http.MethodGet,
		path:   "/api/admin/user/" + strconv.FormatInt(id, 10) + "/detailed",
		query:  url.Values{"days": {strconv.Itoa(days)}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserProfile - GET /api/user/profile
func (c *Client) UserProfile(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.do(ctx, request{op: "loading profile", method: http.MethodGet, path: "/api/user/profile"}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UserRemote - пользователи админки как список только для чтения
type UserRemote struct {
	c *Client
}

func (c *Client) Users() UserRemote {
	return UserRemote{c: c}
}

func (r UserRemote) Fetch(ctx context.Context) ([]models.AdminUser, error) {
	return r.c.ListAdminUsers(ctx)
}

// userQuery - старый API берёт пользователя из user_id, новый из токена; шлём оба
func userQuery(userID int64) url.Values {
	q := url.Values{}
	if userID > 0 {
		q.Set("user_id", strconv.FormatInt(userID, 10))
	}
	return q
}

// UserUsage - GET /api/user/usage?days=N
func (c *Client) UserUsage(ctx context.Context, userID int64, days int) (*dto.UsageResponse, error) {
	if days < 1 {
		days = 30
	}
	q := userQuery(userID)
	q.Set("days", strconv.Itoa(days))

	var resp dto.UsageResponse
	err := c.do(ctx, request{
		op:     "loading usage",
		method: http.MethodGet,
		path:   "/api/user/usage",
		query:  q,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserRecommendations - GET /api/user/recommendations
func (c *Client) UserRecommendations(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	var resp dto.RecommendationsResponse
	err := c.do(ctx, request{
		op:     "loading recommendations",
		method: http.MethodGet,
		path:   "/api/user/recommendations",
		query:  userQuery(userID),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []models.Recommendation{}
	}
	return resp.Recommendations, nil
}
