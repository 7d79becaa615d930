package screens

import (
	"subscription_console/internal/client"
	"subscription_console/internal/config"
	"subscription_console/internal/dto"
	"subscription_console/internal/listmanager"
	"subscription_console/internal/models"
	"subscription_console/internal/notify"
	"subscription_console/internal/session"
	"subscription_console/internal/validator"
)

// Deps - всё, что нужно экранам. Передаётся явно, без глобального состояния.
type Deps struct {
	Config    *config.Config
	Client    *client.Client
	Session   *session.Manager
	Notify    *notify.Center
	Validator *validator.Validator
}

// Screen - экран, владеющий своими данными; Close вызывается при уходе с него
type Screen interface {
	Name() string
	Close()
}

type planList = listmanager.Manager[models.Plan, dto.PlanRequest]

func newPlanList(d Deps, name string) *planList {
	return listmanager.New[models.Plan, dto.PlanRequest](d.Client.Plans(), listmanager.Options[models.Plan]{
		Name:        name,
		Key:         func(p models.Plan) int64 { return p.ID },
		DisplayName: func(p models.Plan) string { return p.Name },
		Reporter:    d.Notify,
		PageSize:    d.Config.UI.PageSize,
		MaxParallel: d.Config.API.MaxParallelDeletes,
	})
}
