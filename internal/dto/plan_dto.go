package dto

import (
	"github.com/shopspring/decimal"

	"subscription_console/internal/models"
)

// PlanRequest - тело create/update: поля Plan без id.
// Цена уходит строкой ("9.99"), как её ввели в форму.
type PlanRequest struct {
	Type        models.PlanType     `json:"type"`
	Name        string              `json:"name"`
	Price       decimal.Decimal     `json:"price"`
	Duration    models.PlanDuration `json:"duration"`
	Description string              `json:"description"`
}

// PlanFromRequest - как сервер собирает Plan из запроса (используется фейковым API)
func PlanFromRequest(id int64, req PlanRequest) models.Plan {
	return models.Plan{
		ID:          id,
		Type:        req.Type,
		Name:        req.Name,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
	}
}

// RequestFromPlan - обратное преобразование (префилл формы редактирования)
func RequestFromPlan(p models.Plan) PlanRequest {
	return PlanRequest{
		Type:        p.Type,
		Name:        p.Name,
		Price:       p.Price,
		Duration:    p.Duration,
		Description: p.Description,
	}
}
