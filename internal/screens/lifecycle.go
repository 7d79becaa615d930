package screens

import (
	"context"
	"sync"

	"subscription_console/internal/logger"
	"subscription_console/pkg/apperrors"
)

// loads - учёт загрузок экрана вне listmanager.
// Запросы отменяются при close; ответ применяется, только если он не старше
// уже применённого.
type loads struct {
	name string

	mu      sync.Mutex
	base    context.Context
	cancel  context.CancelFunc
	closed  bool
	seq     uint64
	applied map[string]uint64
}

func newLoads(name string) *loads {
	base, cancel := context.WithCancel(context.Background())
	return &loads{
		name:    name,
		base:    base,
		cancel:  cancel,
		applied: make(map[string]uint64),
	}
}

// begin выдаёт номер запроса и контекст, который отменит и вызывающий, и close
func (l *loads) begin(ctx context.Context) (context.Context, uint64, func()) {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.mu.Unlock()

	rctx, cancel := context.WithCancel(logger.WithScreen(ctx, l.name))
	stop := context.AfterFunc(l.base, cancel)
	return rctx, seq, func() {
		stop()
		cancel()
	}
}

// commit применяет ответ под блокировкой. Ключ разделяет независимые
// части экрана. После close - ErrScreenClosed; устаревший ответ отбрасывается
// вместе с ошибкой (stale = true). apply == nil - ответ с ошибкой: порядок
// проверяется, но номер не запоминается.
func (l *loads) commit(ctx context.Context, key string, seq uint64, apply func()) (stale bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false, apperrors.ErrScreenClosed
	}
	if seq < l.applied[key] {
		logger.CtxDebug(ctx, "stale response discarded", "screen", l.name, "part", key, "seq", seq, "applied", l.applied[key])
		return true, nil
	}
	if apply != nil {
		l.applied[key] = seq
		apply()
	}
	return false, nil
}

func (l *loads) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *loads) close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cancel()
}
