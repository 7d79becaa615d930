package screens

import (
	"context"
	"fmt"

	"subscription_console/internal/forms"
	"subscription_console/internal/listmanager"
	"subscription_console/internal/models"
	"subscription_console/pkg/apperrors"
)

// EditPlan - выбрать тариф, поправить форму, подтвердить обновление
type EditPlan struct {
	d        Deps
	list     *planList
	form     forms.PlanForm
	selected int64
}

func NewEditPlan(d Deps) *EditPlan {
	return &EditPlan{d: d, list: newPlanList(d, "plans.edit")}
}

func (s *EditPlan) Name() string { return "plans.edit" }

func (s *EditPlan) Load(ctx context.Context) error {
	return s.list.Load(ctx)
}

func (s *EditPlan) Plans() []models.Plan { return s.list.Items() }

// Select заполняет форму выбранным тарифом. id 0 - сброс выбора.
func (s *EditPlan) Select(id int64) error {
	if id == 0 {
		s.selected = 0
		s.form.Reset()
		return nil
	}
	plan, ok := s.list.Get(id)
	if !ok {
		return apperrors.NewValidationMessage("Please select a plan")
	}
	s.selected = id
	s.form = forms.PlanFormFrom(plan)
	return nil
}

func (s *EditPlan) Selected() (models.Plan, bool) {
	if s.selected == 0 {
		return models.Plan{}, false
	}
	return s.list.Get(s.selected)
}

func (s *EditPlan) Set(field, value string) error {
	if !s.form.Set(field, value) {
		return fmt.Errorf("unknown plan field %q", field)
	}
	return nil
}

func (s *EditPlan) Form() forms.PlanForm { return s.form }

func (s *EditPlan) Submit(ctx context.Context) (listmanager.Confirmation, error) {
	if s.selected == 0 {
		err := apperrors.NewValidationMessage("Please select a plan")
		s.d.Notify.Report(ctx, err)
		return listmanager.Confirmation{}, err
	}
	req, err := s.form.ToRequest(s.d.Validator)
	if err != nil {
		s.d.Notify.Report(ctx, err)
		return listmanager.Confirmation{}, err
	}
	if err := s.list.RequestUpdate(ctx, s.selected, req); err != nil {
		return listmanager.Confirmation{}, err
	}
	return s.list.Confirmation()
}

// Confirm отправляет обновление; форма перезаполняется ответом сервера
func (s *EditPlan) Confirm(ctx context.Context) (models.Plan, error) {
	res, err := s.list.Confirm(ctx)
	if err != nil {
		return models.Plan{}, err
	}
	s.form = forms.PlanFormFrom(res.Entity)
	s.d.Notify.Success(ctx, "Plan updated successfully!")
	return res.Entity, nil
}

func (s *EditPlan) Cancel() error { return s.list.Cancel() }

func (s *EditPlan) Close() { s.list.Close() }
