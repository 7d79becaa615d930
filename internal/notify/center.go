package notify

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"subscription_console/internal/logger"
	"subscription_console/pkg/apperrors"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Notification - временное сообщение для пользователя
type Notification struct {
	ID        string
	Level     Level
	Kind      apperrors.Kind
	Code      apperrors.ErrorCode
	Message   string
	Details   interface{}
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Reporter - единственный путь, которым экраны сообщают об ошибках
type Reporter interface {
	Report(ctx context.Context, err error) (Notification, bool)
	Success(ctx context.Context, message string) Notification
}

// Center хранит активные уведомления и раздаёт их подписчикам.
// Ничего не фатально: Report только логирует и показывает.
type Center struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	items  []Notification
	subs   map[int]func(Notification)
	nextID int
}

func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Center{
		ttl:  ttl,
		now:  time.Now,
		subs: make(map[int]func(Notification)),
	}
}

// SetClock подменяет часы (тесты)
func (c *Center) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Report классифицирует ошибку, логирует и ставит уведомление.
// Отмена (закрытый экран) не показывается: второе значение false.
func (c *Center) Report(ctx context.Context, err error) (Notification, bool) {
	if err == nil {
		return Notification{}, false
	}
	if errors.Is(err, context.Canceled) || apperrors.Is(err, apperrors.ErrScreenClosed) {
		logger.CtxDebug(ctx, "request abandoned", "error", err.Error())
		return Notification{}, false
	}

	kind := apperrors.KindOf(err)
	n := Notification{
		Level:   LevelError,
		Kind:    kind,
		Code:    apperrors.CodeInternalError,
		Message: "Something went wrong. Please try again.",
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		n.Code = appErr.Code
		n.Message = appErr.Message
		n.Details = appErr.Details
	}
	if kind == apperrors.KindValidationFailure {
		n.Level = LevelWarning
	}

	switch kind {
	case apperrors.KindInternal, apperrors.KindServerError:
		logger.CtxWithError(ctx, "operation failed", err, "kind", string(kind))
	default:
		logger.CtxWarn(ctx, "operation failed", "kind", string(kind), "error", err.Error())
	}

	return c.push(n), true
}

// Success - подтверждение успешного действия ("Plan added successfully!")
func (c *Center) Success(ctx context.Context, message string) Notification {
	logger.CtxInfo(ctx, message)
	return c.push(Notification{Level: LevelSuccess, Message: message})
}

func (c *Center) push(n Notification) Notification {
	c.mu.Lock()
	now := c.now()
	n.ID = uuid.NewString()
	n.CreatedAt = now
	n.ExpiresAt = now.Add(c.ttl)
	c.pruneLocked(now)
	c.items = append(c.items, n)

	subs := make([]func(Notification), 0, len(c.subs))
	keys := make([]int, 0, len(c.subs))
	for k := range c.subs {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		subs = append(subs, c.subs[k])
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
	return n
}

// Active - неистёкшие уведомления, старые первыми
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(c.now())
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Dismiss убирает уведомление досрочно
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribe вызывает fn на каждое новое уведомление. Возвращает отписку.
func (c *Center) Subscribe(fn func(Notification)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Center) pruneLocked(now time.Time) {
	kept := c.items[:0]
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	c.items = kept
}
