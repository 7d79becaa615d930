package screens

import (
	"context"

	"github.com/samber/lo"

	"subscription_console/internal/listmanager"
	"subscription_console/internal/models"
	"subscription_console/pkg/apperrors"
)

// Tab - вкладка каталога (тип тарифа)
type Tab struct {
	Name    string
	Active  bool
	Popular bool
	Count   int
}

// PlanCatalog - просмотр тарифов по вкладкам, без изменений
type PlanCatalog struct {
	list    *planList
	tabs    []string
	popular string
	active  string
}

func NewPlanCatalog(d Deps) *PlanCatalog {
	tabs := d.Config.UI.PlanTypes
	if len(tabs) == 0 {
		tabs = lo.Map(models.PlanTypes, func(t models.PlanType, _ int) string { return string(t) })
	}
	return &PlanCatalog{
		list:    newPlanList(d, "plans.catalog"),
		tabs:    tabs,
		popular: d.Config.UI.PopularType,
		active:  tabs[0],
	}
}

func (s *PlanCatalog) Name() string { return "plans.catalog" }

func (s *PlanCatalog) Load(ctx context.Context) error {
	return s.list.Load(ctx)
}

func (s *PlanCatalog) Tabs() []Tab {
	items := s.list.Items()
	return lo.Map(s.tabs, func(name string, _ int) Tab {
		return Tab{
			Name:    name,
			Active:  name == s.active,
			Popular: name == s.popular,
			Count:   lo.CountBy(items, func(p models.Plan) bool { return string(p.Type) == name }),
		}
	})
}

func (s *PlanCatalog) SelectTab(name string) error {
	if !lo.Contains(s.tabs, name) {
		return apperrors.NewValidationMessage("Unknown plan type: " + name)
	}
	s.active = name
	return nil
}

func (s *PlanCatalog) ActiveTab() string { return s.active }

// Visible - тарифы активной вкладки в порядке сервера
func (s *PlanCatalog) Visible() []models.Plan {
	return lo.Filter(s.list.Items(), func(p models.Plan, _ int) bool {
		return string(p.Type) == s.active
	})
}

// IsPopular - бейдж "Most Popular"
func (s *PlanCatalog) IsPopular(p models.Plan) bool {
	return s.popular != "" && string(p.Type) == s.popular
}

// Page - поиск по имени по всем вкладкам, с постраничным выводом
func (s *PlanCatalog) Page(term string, page int) listmanager.Page[models.Plan] {
	return s.list.Page(term, 0, page)
}

func (s *PlanCatalog) Get(id int64) (models.Plan, bool) { return s.list.Get(id) }

func (s *PlanCatalog) Close() { s.list.Close() }
