package client

import (
	"context"
	"net/http"
	"strconv"

	"subscription_console/internal/dto"
	"subscription_console/internal/models"
)

// ListPlans - GET /api/plans
func (c *Client) ListPlans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := c.do(ctx, request{op: "loading plans", method: http.MethodGet, path: "/api/plans"}, &plans)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	return plans, nil
}

// PlanOptions - GET /api/plan-options
func (c *Client) PlanOptions(ctx context.Context) (models.PlanOptions, error) {
	var opts models.PlanOptions
	err := c.do(ctx, request{op: "loading plan options", method: http.MethodGet, path: "/api/plan-options"}, &opts)
	return opts, err
}

// CreatePlan - POST на настроенный путь (/api/plans или /api/add-plan).
// Возвращает тариф так, как его сохранил сервер (с id).
func (c *Client) CreatePlan(ctx context.Context, req dto.PlanRequest) (models.Plan, error) {
	var plan models.Plan
	err := c.do(ctx, request{op: "creating plan", method: http.MethodPost, path: c.createPath, json: req}, &plan)
	return plan, err
}

// UpdatePlan - PUT (или PATCH) /api/plans/{id}
func (c *Client) UpdatePlan(ctx context.Context, id int64, req dto.PlanRequest) (models.Plan, error) {
	var plan models.Plan
	err := c.do(ctx, request{op: "updating plan", method: c.updateMethod, path: planPath(id), json: req}, &plan)
	return plan, err
}

// DeletePlan - DELETE /api/plans/{id}; тело ответа не читается
func (c *Client) DeletePlan(ctx context.Context, id int64) error {
	return c.do(ctx, request{op: "deleting plan", method: http.MethodDelete, path: planPath(id)}, nil)
}

func planPath(id int64) string {
	return "/api/plans/" + strconv.FormatInt(id, 10)
}

// PlanRemote - тарифы как удалённый список для listmanager
type PlanRemote struct {
	c *Client
}

func (c *Client) Plans() PlanRemote {
	return PlanRemote{c: c}
}

func (r PlanRemote) Fetch(ctx context.Context) ([]models.Plan, error) {
	return r.c.ListPlans(ctx)
}

func (r PlanRemote) Create(ctx context.Context, req dto.PlanRequest) (models.Plan, error) {
	return r.c.CreatePlan(ctx, req)
}

func (r PlanRemote) Update(ctx context.Context, id int64, req dto.PlanRequest) (models.Plan, error) {
	return r.c.UpdatePlan(ctx, id, req)
}

func (r PlanRemote) Delete(ctx context.Context, id int64) error {
	return r.c.DeletePlan(ctx, id)
}
