package screens

import (
	"context"
	"fmt"
	"sync"

	"subscription_console/internal/forms"
	"subscription_console/internal/listmanager"
	"subscription_console/internal/models"
	"subscription_console/pkg/apperrors"
)

// AddPlan - форма создания тарифа с подтверждением
type AddPlan struct {
	d     Deps
	list  *planList
	form  forms.PlanForm
	loads *loads

	mu      sync.Mutex
	options models.PlanOptions
}

func NewAddPlan(d Deps) *AddPlan {
	return &AddPlan{
		d:       d,
		list:    newPlanList(d, "plans.add"),
		loads:   newLoads("plans.add"),
		options: models.DefaultPlanOptions(),
	}
}

func (s *AddPlan) Name() string { return "plans.add" }

// LoadOptions читает справочник типов и сроков. При ошибке форма
// остаётся со встроенным справочником.
func (s *AddPlan) LoadOptions(ctx context.Context) error {
	if s.loads.isClosed() {
		return apperrors.ErrScreenClosed
	}
	rctx, seq, done := s.loads.begin(ctx)
	defer done()

	opts, err := s.d.Client.PlanOptions(rctx)
	if err != nil {
		stale, cerr := s.loads.commit(ctx, "options", seq, nil)
		if cerr != nil {
			return cerr
		}
		if !stale {
			s.d.Notify.Report(ctx, err)
		}
		return err
	}
	_, err = s.loads.commit(ctx, "options", seq, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(opts.Types) > 0 {
			s.options.Types = opts.Types
		}
		if len(opts.Durations) > 0 {
			s.options.Durations = opts.Durations
		}
	})
	return err
}

func (s *AddPlan) Options() models.PlanOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

func (s *AddPlan) Set(field, value string) error {
	if !s.form.Set(field, value) {
		return fmt.Errorf("unknown plan field %q", field)
	}
	return nil
}

func (s *AddPlan) Form() forms.PlanForm { return s.form }

// Submit проверяет форму (до любого запроса) и просит подтверждение
func (s *AddPlan) Submit(ctx context.Context) (listmanager.Confirmation, error) {
	req, err := s.form.ToRequest(s.d.Validator)
	if err != nil {
		s.d.Notify.Report(ctx, err)
		return listmanager.Confirmation{}, err
	}
	if err := s.list.RequestCreate(ctx, req); err != nil {
		return listmanager.Confirmation{}, err
	}
	c, err := s.list.Confirmation()
	if err != nil {
		return c, err
	}
	c.Names = []string{req.Name}
	return c, nil
}

// Confirm создаёт тариф; после успеха форма очищается
func (s *AddPlan) Confirm(ctx context.Context) (models.Plan, error) {
	res, err := s.list.Confirm(ctx)
	if err != nil {
		return models.Plan{}, err
	}
	s.form.Reset()
	s.d.Notify.Success(ctx, "Plan added successfully!")
	return res.Entity, nil
}

func (s *AddPlan) Cancel() error {
	return s.list.Cancel()
}

// Plans - локальный список с добавленными тарифами
func (s *AddPlan) Plans() []models.Plan { return s.list.Items() }

func (s *AddPlan) State() listmanager.State { return s.list.State() }

func (s *AddPlan) Close() {
	s.loads.close()
	s.list.Close()
}
