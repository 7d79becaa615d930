package listmanager

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"subscription_console/internal/logger"
	"subscription_console/internal/notify"
	"subscription_console/pkg/apperrors"
)

// Options описывает, как менеджер видит элементы списка
type Options[T any] struct {
	// Name - для логов: "plans", "admin.users"
	Name string
	// Key и DisplayName обязательны
	Key         func(T) int64
	DisplayName func(T) string
	Match       func(T, string) bool
	// Reporter == nil: ошибки только возвращаются
	Reporter notify.Reporter
	PageSize int
	// MaxParallel - одновременных DELETE в пакете
	MaxParallel int
}

type write struct {
	seq     uint64
	deleted bool
}

// Manager связывает удалённый список с локальным представлением:
// загрузка, поиск, страницы, выбор и мутации с подтверждением.
//
// Порядок применения ответов:
//   - каждый запрос получает номер seq в момент отправки;
//   - ответ загрузки старше уже применённой загрузки отбрасывается;
//   - id, изменённые более поздней мутацией, сохраняют локальное состояние;
//   - Load ждёт, пока текущая мутация не применится.
type Manager[T, P any] struct {
	remote Remote[T, P]
	opts   Options[T]

	mu          sync.Mutex
	items       []T
	loaded      bool
	selected    []int64
	seq         uint64
	loadApplied uint64
	writes      map[int64]write

	state    State
	pending  *Action[P]
	inflight chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

func New[T, P any](remote Remote[T, P], opts Options[T]) *Manager[T, P] {
	if opts.Key == nil || opts.DisplayName == nil {
		panic("listmanager: Key and DisplayName are required")
	}
	if opts.Match == nil {
		name := opts.DisplayName
		opts.Match = func(item T, term string) bool {
			return ContainsFold(name(item), term)
		}
	}
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxParallel < 1 {
		opts.MaxParallel = 4
	}
	if opts.Name == "" {
		opts.Name = "list"
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager[T, P]{
		remote: remote,
		opts:   opts,
		writes: make(map[int64]write),
		state:  StateIdle,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ============================================
// Загрузка
// ============================================

// Load перечитывает коллекцию целиком. При ошибке прежние данные остаются.
func (m *Manager[T, P]) Load(ctx context.Context) error {
	seq, err := m.beginLoad(ctx)
	if err != nil {
		return err
	}

	rctx, stop := m.requestContext(ctx)
	defer stop()

	items, err := m.remote.Fetch(rctx)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return apperrors.ErrScreenClosed
	}
	if err != nil {
		m.mu.Unlock()
		m.report(ctx, err)
		return err
	}
	if seq < m.loadApplied {
		m.mu.Unlock()
		logger.CtxDebug(ctx, "stale load discarded", "list", m.opts.Name, "seq", seq, "applied", m.loadApplied)
		return nil
	}
	m.applyLoadLocked(items, seq)
	m.mu.Unlock()
	return nil
}

// beginLoad ждёт завершения мутации в полёте и выдаёт номер запроса
func (m *Manager[T, P]) beginLoad(ctx context.Context) (uint64, error) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return 0, apperrors.ErrScreenClosed
		}
		ch := m.inflight
		if ch == nil {
			m.seq++
			seq := m.seq
			m.mu.Unlock()
			return seq, nil
		}
		m.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-m.ctx.Done():
			return 0, apperrors.ErrScreenClosed
		}
	}
}

func (m *Manager[T, P]) applyLoadLocked(items []T, seq uint64) {
	local := lo.KeyBy(m.items, m.opts.Key)
	seen := make(map[int64]struct{}, len(items))

	next := make([]T, 0, len(items))
	for _, item := range items {
		id := m.opts.Key(item)
		seen[id] = struct{}{}
		if w, ok := m.writes[id]; ok && w.seq > seq {
			if w.deleted {
				continue
			}
			if cur, ok := local[id]; ok {
				next = append(next, cur)
				continue
			}
		}
		next = append(next, item)
	}
	// созданные после отправки загрузки
	for _, item := range m.items {
		id := m.opts.Key(item)
		if _, ok := seen[id]; ok {
			continue
		}
		if w, ok := m.writes[id]; ok && w.seq > seq && !w.deleted {
			next = append(next, item)
		}
	}

	m.items = next
	m.loaded = true
	m.loadApplied = seq
	for id, w := range m.writes {
		if w.seq <= seq {
			delete(m.writes, id)
		}
	}

	present := lo.KeyBy(next, m.opts.Key)
	m.selected = lo.Filter(m.selected, func(id int64, _ int) bool {
		_, ok := present[id]
		return ok
	})
}

// ============================================
// Представления
// ============================================

// Items - копия загруженной коллекции в порядке сервера
func (m *Manager[T, P]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Manager[T, P]) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Get ищет элемент по id
func (m *Manager[T, P]) Get(id int64) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Find(m.items, func(item T) bool { return m.opts.Key(item) == id })
}

// Filter - элементы, совпавшие с term. Коллекцию не меняет.
func (m *Manager[T, P]) Filter(term string) []T {
	return Filter(m.Items(), term, m.opts.Match)
}

// Page - фильтр и страница за один вызов; size < 1 - размер из настроек
func (m *Manager[T, P]) Page(term string, size, page int) Page[T] {
	if size < 1 {
		size = m.opts.PageSize
	}
	return Paginate(m.Filter(term), size, page)
}

func (m *Manager[T, P]) PageSize() int {
	return m.opts.PageSize
}

// ============================================
// Выбор
// ============================================

// ToggleSelect добавляет id в выбор или убирает его. Возвращает новое состояние.
func (m *Manager[T, P]) ToggleSelect(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lo.Contains(m.selected, id) {
		m.selected = lo.Without(m.selected, id)
		return false
	}
	m.selected = append(m.selected, id)
	return true
}

func (m *Manager[T, P]) IsSelected(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Contains(m.selected, id)
}

// Selected - выбранные id в порядке выбора
func (m *Manager[T, P]) Selected() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.selected))
	copy(out, m.selected)
	return out
}

func (m *Manager[T, P]) ClearSelection() {
	m.mu.Lock()
	m.selected = nil
	m.mu.Unlock()
}

// ============================================
// Мутации
// ============================================

func (m *Manager[T, P]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Pending - ожидающее подтверждения действие
func (m *Manager[T, P]) Pending() (Action[P], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil || m.state != StatePendingConfirmation {
		return Action[P]{}, false
	}
	return *m.pending, true
}

func (m *Manager[T, P]) RequestCreate(ctx context.Context, payload P) error {
	return m.request(ctx, Action[P]{Kind: KindCreate, Payload: payload})
}

func (m *Manager[T, P]) RequestUpdate(ctx context.Context, id int64, payload P) error {
	return m.request(ctx, Action[P]{Kind: KindUpdate, ID: id, Payload: payload})
}

// RequestDelete фиксирует текущий выбор как цель удаления
func (m *Manager[T, P]) RequestDelete(ctx context.Context) error {
	return m.request(ctx, Action[P]{Kind: KindDelete})
}

func (m *Manager[T, P]) request(ctx context.Context, action Action[P]) error {
	m.mu.Lock()
	err := m.requestLocked(&action)
	m.mu.Unlock()

	if err != nil {
		logger.ActionLog(m.opts.Name, string(action.Kind), "rejected", err)
		m.report(ctx, err)
		return err
	}
	logger.ActionLog(m.opts.Name, string(action.Kind), string(StatePendingConfirmation), nil)
	return nil
}

func (m *Manager[T, P]) requestLocked(action *Action[P]) error {
	if m.closed {
		return apperrors.ErrScreenClosed
	}
	if m.state != StateIdle {
		return apperrors.ErrActionInProgress
	}

	switch action.Kind {
	case KindUpdate:
		if !lo.ContainsBy(m.items, func(item T) bool { return m.opts.Key(item) == action.ID }) {
			return apperrors.NewValidationMessage("Please select a plan")
		}
	case KindDelete:
		if len(m.selected) == 0 {
			return apperrors.ErrEmptySelection
		}
		action.IDs = make([]int64, len(m.selected))
		copy(action.IDs, m.selected)
	}

	m.pending = action
	m.state = StatePendingConfirmation
	return nil
}

// Confirmation - содержимое окна подтверждения для ожидающего действия
func (m *Manager[T, P]) Confirmation() (Confirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil || m.state != StatePendingConfirmation {
		return Confirmation{}, apperrors.ErrNoPendingAction
	}

	c := Confirmation{Kind: m.pending.Kind}
	switch m.pending.Kind {
	case KindDelete:
		c.IDs = append(c.IDs, m.pending.IDs...)
	case KindUpdate:
		c.IDs = []int64{m.pending.ID}
	}

	index := lo.KeyBy(m.items, m.opts.Key)
	for _, id := range c.IDs {
		if item, ok := index[id]; ok {
			c.Names = append(c.Names, m.opts.DisplayName(item))
		} else {
			c.Names = append(c.Names, fmt.Sprintf("#%d (no longer listed)", id))
		}
	}
	return c, nil
}

// Cancel отменяет ожидающее действие. Отмена удаления сбрасывает выбор.
func (m *Manager[T, P]) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil || m.state != StatePendingConfirmation {
		return apperrors.ErrNoPendingAction
	}
	kind := m.pending.Kind
	m.state = StateCancelled
	logger.ActionLog(m.opts.Name, string(kind), string(StateCancelled), nil)
	if kind == KindDelete {
		m.selected = nil
	}
	m.pending = nil
	m.state = StateIdle
	return nil
}

// Confirm выполняет ожидающее действие и применяет ответ сервера.
// Пока запрос в полёте, повторные Request*/Confirm отклоняются, а Load ждёт.
func (m *Manager[T, P]) Confirm(ctx context.Context) (Result[T], error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Result[T]{}, apperrors.ErrScreenClosed
	}
	if m.state == StateInFlight || m.state == StateConfirmed {
		m.mu.Unlock()
		m.report(ctx, apperrors.ErrActionInProgress)
		return Result[T]{}, apperrors.ErrActionInProgress
	}
	if m.pending == nil || m.state != StatePendingConfirmation {
		m.mu.Unlock()
		m.report(ctx, apperrors.ErrNoPendingAction)
		return Result[T]{}, apperrors.ErrNoPendingAction
	}

	action := *m.pending
	m.state = StateConfirmed
	m.seq++
	seq := m.seq
	done := make(chan struct{})
	m.inflight = done
	m.state = StateInFlight
	m.mu.Unlock()

	logger.ActionLog(m.opts.Name, string(action.Kind), string(StateInFlight), nil)

	rctx, stop := m.requestContext(ctx)
	defer stop()

	var (
		entity T
		err    error
		failed map[int64]error
	)
	switch action.Kind {
	case KindCreate:
		entity, err = m.remote.Create(rctx, action.Payload)
	case KindUpdate:
		entity, err = m.remote.Update(rctx, action.ID, action.Payload)
	case KindDelete:
		failed = m.deleteAll(rctx, action.IDs)
	}

	m.mu.Lock()
	result, closed, err := m.applyLocked(action, entity, err, failed, seq)
	m.pending = nil
	m.inflight = nil
	m.state = StateIdle
	close(done)
	m.mu.Unlock()

	if closed {
		return Result[T]{}, apperrors.ErrScreenClosed
	}
	if err != nil {
		m.report(ctx, err)
	}
	return result, err
}

// applyLocked переносит ответ сервера в локальный список.
// closed=true: экран закрыт, ответ отброшен.
func (m *Manager[T, P]) applyLocked(action Action[P], entity T, err error, failed map[int64]error, seq uint64) (Result[T], bool, error) {
	if m.closed {
		return Result[T]{}, true, nil
	}

	result := Result[T]{Kind: action.Kind}
	switch action.Kind {
	case KindCreate, KindUpdate:
		if err != nil {
			m.state = StateFailed
			logger.ActionLog(m.opts.Name, string(action.Kind), string(StateFailed), err)
			return result, false, err
		}
		m.upsertLocked(entity, seq)
		result.Entity = entity

	case KindDelete:
		result.Deleted, result.Failed = m.removeLocked(action.IDs, failed, seq)
		if len(result.Failed) > 0 {
			err = apperrors.BatchPartialFailure(failed)
			m.state = StateFailed
			logger.ActionLog(m.opts.Name, string(action.Kind), string(StateFailed), err)
			return result, false, err
		}
	}

	m.state = StateSucceeded
	logger.ActionLog(m.opts.Name, string(action.Kind), string(StateSucceeded), nil)
	return result, false, nil
}

// deleteAll отправляет DELETE на каждый id параллельно (не больше MaxParallel)
// и собирает ошибки. Одна неудача не отменяет остальные запросы.
func (m *Manager[T, P]) deleteAll(ctx context.Context, ids []int64) map[int64]error {
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(m.opts.MaxParallel)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			err := m.remote.Delete(ctx, id)
			// уже удалён на сервере - для нас это подтверждение
			if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.CodeNotFound {
				err = nil
			}
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	failed := make(map[int64]error)
	for i, err := range errs {
		if err != nil {
			failed[ids[i]] = err
		}
	}
	return failed
}

// upsertLocked заменяет элемент с тем же id ответом сервера или добавляет его в конец
func (m *Manager[T, P]) upsertLocked(entity T, seq uint64) {
	id := m.opts.Key(entity)
	if w, ok := m.writes[id]; ok && w.seq > seq {
		return
	}
	m.writes[id] = write{seq: seq}

	_, idx, found := lo.FindIndexOf(m.items, func(item T) bool { return m.opts.Key(item) == id })
	if found {
		m.items[idx] = entity
		return
	}
	m.items = append(m.items, entity)
}

// removeLocked - одно атомарное обновление после всех DELETE
func (m *Manager[T, P]) removeLocked(ids []int64, failed map[int64]error, seq uint64) (deleted, kept []int64) {
	gone := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, bad := failed[id]; bad {
			kept = append(kept, id)
			continue
		}
		if w, ok := m.writes[id]; ok && w.seq > seq {
			continue
		}
		gone[id] = struct{}{}
		deleted = append(deleted, id)
		m.writes[id] = write{seq: seq, deleted: true}
	}

	m.items = lo.Filter(m.items, func(item T, _ int) bool {
		_, ok := gone[m.opts.Key(item)]
		return !ok
	})
	m.selected = lo.Filter(m.selected, func(id int64, _ int) bool {
		_, ok := gone[id]
		return !ok
	})
	return deleted, kept
}

// ============================================
// Жизненный цикл
// ============================================

// Close - экран закрыт: запросы в полёте отменяются,
// их ответы больше не меняют состояние.
func (m *Manager[T, P]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.pending = nil
	if m.state == StatePendingConfirmation {
		m.state = StateIdle
	}
	m.mu.Unlock()
	m.cancel()
	logger.Debug("list closed", "list", m.opts.Name)
}

func (m *Manager[T, P]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// requestContext отменяется и вызывающим, и Close.
// Логи запросов помечаются именем списка.
func (m *Manager[T, P]) requestContext(ctx context.Context) (context.Context, func()) {
	rctx, cancel := context.WithCancel(logger.WithScreen(ctx, m.opts.Name))
	stopAfter := context.AfterFunc(m.ctx, cancel)
	return rctx, func() {
		stopAfter()
		cancel()
	}
}

func (m *Manager[T, P]) report(ctx context.Context, err error) {
	if m.opts.Reporter == nil || err == nil {
		return
	}
	m.opts.Reporter.Report(ctx, err)
}
