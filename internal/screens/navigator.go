package screens

import (
	"context"
	"fmt"
	"sync"

	"subscription_console/internal/auth"
	"subscription_console/internal/logger"
	"subscription_console/internal/session"
	"subscription_console/pkg/apperrors"
)

type Route string

const (
	RouteLogin    Route = "login"
	RouteAdmin    Route = "admin"
	RouteUser     Route = "user"
	RouteCatalog  Route = "plans"
	RouteAddPlan  Route = "plans.add"
	RouteEditPlan Route = "plans.edit"
	RouteDelete   Route = "plans.delete"
	RoutePricing  Route = "pricing"
)

type route struct {
	perm string // пусто - доступно без входа
	open func(Deps) Screen
}

var routes = map[Route]route{
	RouteLogin:    {open: func(Deps) Screen { return loginScreen{} }},
	RoutePricing:  {open: func(d Deps) Screen { return NewPricing(d) }},
	RouteCatalog:  {perm: auth.PermPlansRead, open: func(d Deps) Screen { return NewPlanCatalog(d) }},
	RouteUser:     {perm: auth.PermProfileRead, open: func(d Deps) Screen { return NewUserDashboard(d) }},
	RouteAdmin:    {perm: auth.PermAnalyticsRead, open: func(d Deps) Screen { return NewAdminDashboard(d) }},
	RouteAddPlan:  {perm: auth.PermPlansWrite, open: func(d Deps) Screen { return NewAddPlan(d) }},
	RouteEditPlan: {perm: auth.PermPlansWrite, open: func(d Deps) Screen { return NewEditPlan(d) }},
	RouteDelete:   {perm: auth.PermPlansWrite, open: func(d Deps) Screen { return NewDeletePlan(d) }},
}

type loginScreen struct{}

func (loginScreen) Name() string { return string(RouteLogin) }
func (loginScreen) Close()       {}

// Navigator держит один активный экран.
// Выход или истёкшая сессия закрывают его и возвращают на вход.
type Navigator struct {
	d Deps

	mu      sync.Mutex
	current Route
	active  Screen
	unsub   func()
}

func NewNavigator(d Deps) *Navigator {
	n := &Navigator{d: d, current: RouteLogin, active: loginScreen{}}
	n.unsub = d.Session.Subscribe(n.onSession)
	return n
}

func (n *Navigator) onSession(ctx context.Context, ev session.Event, _ *session.Session) {
	switch ev {
	case session.EventLogout, session.EventExpired:
		logger.CtxInfo(ctx, "Session ended, returning to login", "event", string(ev))
		n.switchTo(RouteLogin, loginScreen{})
	}
}

// Landing - экран по роли: админ - дашборд, пользователь - профиль, иначе вход
func (n *Navigator) Landing() Route {
	user := n.d.Session.User()
	switch {
	case user == nil:
		return RouteLogin
	case user.IsAdmin():
		return RouteAdmin
	default:
		return RouteUser
	}
}

// Go открывает экран, если у текущего пользователя есть право
func (n *Navigator) Go(r Route) (Screen, error) {
	def, ok := routes[r]
	if !ok {
		return nil, fmt.Errorf("unknown route %q", r)
	}
	if def.perm != "" {
		user, err := n.d.Session.RequireUser()
		if err != nil {
			return nil, err
		}
		if !auth.Can(user, def.perm) {
			return nil, apperrors.ErrAdminRequired
		}
	}
	screen := def.open(n.d)
	n.switchTo(r, screen)
	return screen, nil
}

func (n *Navigator) switchTo(r Route, screen Screen) {
	n.mu.Lock()
	prev := n.active
	n.current, n.active = r, screen
	n.mu.Unlock()

	if prev != nil && prev != screen {
		prev.Close()
	}
}

func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Navigator) Active() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

func (n *Navigator) Close() {
	n.mu.Lock()
	active := n.active
	n.active = nil
	n.mu.Unlock()

	if n.unsub != nil {
		n.unsub()
	}
	if active != nil {
		active.Close()
	}
}
