package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"subscription_console/internal/logger"
)

// Loader - экран или список, который умеет перечитать данные
type Loader interface {
	Load(ctx context.Context) error
}

// RefreshWorker по расписанию перечитывает зарегистрированные списки
type RefreshWorker struct {
	cron     *cron.Cron
	schedule string

	mu      sync.Mutex
	loaders map[string]Loader
	ctx     context.Context
}

func NewRefreshWorker(schedule string) *RefreshWorker {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &RefreshWorker{
		cron:     cron.New(),
		schedule: schedule,
		loaders:  make(map[string]Loader),
		ctx:      context.Background(),
	}
}

func (w *RefreshWorker) Register(name string, l Loader) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loaders[name] = l
}

func (w *RefreshWorker) Unregister(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.loaders, name)
}

// Start добавляет задачу в cron. Остановка - по ctx или Stop.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	if _, err := w.cron.AddFunc(w.schedule, func() { w.RunOnce() }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", w.schedule, err)
	}
	w.cron.Start()
	logger.Info("Refresh worker started", "schedule", w.schedule)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// RunOnce перечитывает все зарегистрированные списки по очереди.
// Ошибки уже сообщены самими списками, здесь только лог.
func (w *RefreshWorker) RunOnce() {
	w.mu.Lock()
	ctx := w.ctx
	loaders := make(map[string]Loader, len(w.loaders))
	for name, l := range w.loaders {
		loaders[name] = l
	}
	w.mu.Unlock()

	for name, l := range loaders {
		if ctx.Err() != nil {
			return
		}
		logger.WorkerLog("refresh", name, l.Load(ctx))
	}
}

func (w *RefreshWorker) Stop() {
	<-w.cron.Stop().Done()
}

// LoaderFunc - функция как Loader
type LoaderFunc func(ctx context.Context) error

func (f LoaderFunc) Load(ctx context.Context) error { return f(ctx) }
