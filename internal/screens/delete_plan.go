package screens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"subscription_console/internal/listmanager"
	"subscription_console/internal/models"
)

// DeletePlan - поиск, страницы, выбор нескольких тарифов и пакетное удаление
type DeletePlan struct {
	d         Deps
	list      *planList
	debounce  time.Duration
	threshold int

	mu      sync.Mutex
	term    string // применённый поиск
	pending string // введённый, ещё не применённый
	timer   *time.Timer
	page    int
}

func NewDeletePlan(d Deps) *DeletePlan {
	return &DeletePlan{
		d:         d,
		list:      newPlanList(d, "plans.delete"),
		debounce:  d.Config.UI.Debounce,
		threshold: d.Config.UI.DebounceThreshold,
		page:      1,
	}
}

func (s *DeletePlan) Name() string { return "plans.delete" }

func (s *DeletePlan) Load(ctx context.Context) error {
	return s.list.Load(ctx)
}

// Search меняет строку поиска. На больших списках применение
// откладывается на debounce; на маленьких - сразу. Страница сбрасывается на 1.
func (s *DeletePlan) Search(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = term
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.debounce <= 0 || len(s.list.Items()) <= s.threshold {
		s.applyLocked()
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.applyLocked()
	})
}

// Flush применяет отложенный поиск немедленно
func (s *DeletePlan) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.applyLocked()
}

func (s *DeletePlan) applyLocked() {
	if s.term != s.pending {
		s.page = 1
	}
	s.term = s.pending
	s.timer = nil
}

func (s *DeletePlan) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Page - текущая страница отфильтрованного списка (номер уже зажат)
func (s *DeletePlan) Page() listmanager.Page[models.Plan] {
	s.mu.Lock()
	term, page := s.term, s.page
	s.mu.Unlock()

	p := s.list.Page(term, 0, page)

	s.mu.Lock()
	s.page = p.Number
	s.mu.Unlock()
	return p
}

func (s *DeletePlan) GoTo(page int) listmanager.Page[models.Plan] {
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	return s.Page()
}

func (s *DeletePlan) Toggle(id int64) (bool, error) {
	if _, ok := s.list.Get(id); !ok {
		return false, fmt.Errorf("plan %d is not listed", id)
	}
	return s.list.ToggleSelect(id), nil
}

func (s *DeletePlan) IsSelected(id int64) bool { return s.list.IsSelected(id) }

func (s *DeletePlan) Selected() []int64 { return s.list.Selected() }

// RequestDelete открывает окно подтверждения с именами выбранных тарифов
func (s *DeletePlan) RequestDelete(ctx context.Context) (listmanager.Confirmation, error) {
	if err := s.list.RequestDelete(ctx); err != nil {
		return listmanager.Confirmation{}, err
	}
	return s.list.Confirmation()
}

// Confirmation - перечитывает имена на текущий момент
func (s *DeletePlan) Confirmation() (listmanager.Confirmation, error) {
	return s.list.Confirmation()
}

// Confirm удаляет выбранное. Частичная неудача: удалённые исчезают,
// неудавшиеся остаются выбранными, ошибка содержит их id.
func (s *DeletePlan) Confirm(ctx context.Context) (listmanager.Result[models.Plan], error) {
	res, err := s.list.Confirm(ctx)
	if err == nil {
		s.d.Notify.Success(ctx, "Selected plans deleted successfully!")
	}
	s.Page()
	return res, err
}

func (s *DeletePlan) Cancel() error { return s.list.Cancel() }

func (s *DeletePlan) Plans() []models.Plan { return s.list.Items() }

func (s *DeletePlan) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.list.Close()
}
