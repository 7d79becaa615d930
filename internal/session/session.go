package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"subscription_console/internal/auth"
	"subscription_console/internal/dto"
	"subscription_console/internal/logger"
	"subscription_console/internal/models"
	"subscription_console/pkg/apperrors"
)

// Session - токен и пользователь, как их вернул сервер
type Session struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at,omitempty"`
}

// Expired - токен без exp считается бессрочным, пока сервер не ответит 401
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Authenticator - серверная проверка учётных данных
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error)
}

type Event string

const (
	EventLogin   Event = "login"
	EventLogout  Event = "logout"
	EventExpired Event = "expired"
)

// Listener получает событие и сессию на момент события (при выходе - прошлую)
type Listener func(ctx context.Context, event Event, s *Session)

// Manager - явный объект сессии. Передаётся зависимостям напрямую,
// глобального состояния нет.
type Manager struct {
	mu        sync.RWMutex
	store     Store
	auth      Authenticator
	current   *Session
	listeners map[int]Listener
	nextID    int
	now       func() time.Time
}

func NewManager(store Store, authenticator Authenticator) *Manager {
	return &Manager{
		store:     store,
		auth:      authenticator,
		listeners: make(map[int]Listener),
		now:       time.Now,
	}
}

// SetAuthenticator - клиент API создаётся после менеджера (ему нужен TokenSource)
func (m *Manager) SetAuthenticator(a Authenticator) {
	m.mu.Lock()
	m.auth = a
	m.mu.Unlock()
}

// SetClock подменяет часы (тесты)
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Restore поднимает сохранённую сессию при старте.
// Просроченная сессия стирается; это не ошибка.
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	s, err := m.store.Load()
	if err != nil {
		// Битый файл не должен блокировать вход
		logger.CtxWarn(ctx, "session restore failed, starting logged out", "error", err.Error())
		_ = m.store.Clear()
		return nil, nil
	}
	if s == nil {
		return nil, nil
	}

	if s.ExpiresAt.IsZero() {
		if exp, ok := auth.ExpiresAt(s.Token); ok {
			s.ExpiresAt = exp
		}
	}

	m.mu.Lock()
	now := m.now()
	if s.Expired(now) {
		m.mu.Unlock()
		logger.CtxInfo(ctx, "stored session expired", "user", s.User.Email)
		if err := m.store.Clear(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	m.current = s
	m.mu.Unlock()

	logger.CtxDebug(ctx, "session restored", "user", s.User.Email, "role", string(s.User.Role))
	return m.Current(), nil
}

// Login - только серверная проверка. Роль берётся из ответа сервера.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	m.mu.RLock()
	a := m.auth
	m.mu.RUnlock()

	resp, err := a.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, resp)
}

// Register - регистрация и сразу вход
func (m *Manager) Register(ctx context.Context, req dto.RegisterRequest) (*Session, error) {
	m.mu.RLock()
	a := m.auth
	m.mu.RUnlock()

	resp, err := a.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, resp)
}

func (m *Manager) establish(ctx context.Context, resp *dto.LoginResponse) (*Session, error) {
	if resp == nil || resp.AccessToken == "" {
		return nil, apperrors.DecodeFailed(nil, "login")
	}
	if !resp.User.Role.IsValid() {
		return nil, apperrors.DecodeFailed(nil, "login").WithDetails("user role missing in server response")
	}

	s := &Session{Token: resp.AccessToken, User: resp.User}
	if exp, ok := auth.ExpiresAt(resp.AccessToken); ok {
		s.ExpiresAt = exp
	}

	if err := m.store.Save(s); err != nil {
		return nil, apperrors.InternalError(err)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	logger.CtxInfo(ctx, "logged in", "user", s.User.Email, "role", string(s.User.Role))
	m.notify(ctx, EventLogin, s)
	return m.Current(), nil
}

// Logout очищает сессию по желанию пользователя
func (m *Manager) Logout(ctx context.Context) error {
	prev := m.clear()
	if err := m.store.Clear(); err != nil {
		return err
	}
	if prev != nil {
		logger.CtxInfo(ctx, "logged out", "user", prev.User.Email)
		m.notify(ctx, EventLogout, prev)
	}
	return nil
}

// Invalidate вызывается на 401 или по истечении токена.
// Сессия стирается, только если token всё ещё текущий: поздний 401
// по старому токену не трогает новый вход. Повторный вызов ничего не делает.
func (m *Manager) Invalidate(ctx context.Context, token string, reason error) {
	prev := m.clearIf(token)
	if prev == nil {
		logger.CtxDebug(ctx, "stale invalidation ignored")
		return
	}
	if err := m.store.Clear(); err != nil {
		logger.CtxWithError(ctx, "failed to clear session store", err)
	}
	args := []any{"user", prev.User.Email}
	if reason != nil {
		args = append(args, "reason", reason.Error())
	}
	logger.CtxWarn(ctx, "session invalidated", args...)
	m.notify(ctx, EventExpired, prev)
}

// CheckExpiry - для фонового воркера: true, если сессия только что истекла
func (m *Manager) CheckExpiry(ctx context.Context) bool {
	m.mu.RLock()
	s := m.current
	now := m.now()
	m.mu.RUnlock()

	if s == nil || !s.Expired(now) {
		return false
	}
	m.Invalidate(ctx, s.Token, apperrors.ErrSessionExpired)
	return true
}

func (m *Manager) clear() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.current
	m.current = nil
	return prev
}

func (m *Manager) clearIf(token string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || token == "" || m.current.Token != token {
		return nil
	}
	prev := m.current
	m.current = nil
	return prev
}

// Token - пустая строка, если сессии нет
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Current - копия текущей сессии или nil
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

func (m *Manager) User() *models.User {
	s := m.Current()
	if s == nil {
		return nil
	}
	return &s.User
}

func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && !m.current.Expired(m.now())
}

func (m *Manager) IsAdmin() bool {
	u := m.User()
	return u != nil && u.IsAdmin()
}

// RequireUser - ошибка NotAuthenticated, если входа нет
func (m *Manager) RequireUser() (*models.User, error) {
	if !m.Authenticated() {
		return nil, apperrors.ErrNotAuthenticated
	}
	return m.User(), nil
}

// Subscribe регистрирует слушателя событий. Возвращает отписку.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(ctx context.Context, event Event, s *Session) {
	m.mu.RLock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(ctx, event, s)
	}
}
