package app

import (
	"context"
	"fmt"

	"subscription_console/internal/client"
	"subscription_console/internal/config"
	"subscription_console/internal/logger"
	"subscription_console/internal/notify"
	"subscription_console/internal/screens"
	"subscription_console/internal/session"
	"subscription_console/internal/validator"
	"subscription_console/internal/workers"
)

// Console - собранные зависимости одного запуска консоли
type Console struct {
	Config    *config.Config
	Session   *session.Manager
	Client    *client.Client
	Notify    *notify.Center
	Validator *validator.Validator
	Navigator *screens.Navigator
}

// New собирает консоль: сессия -> клиент -> уведомления -> навигация.
// Сохранённая сессия поднимается сразу; просроченная стирается.
func New(ctx context.Context, cfg *config.Config) (*Console, error) {
	return NewWithStore(ctx, cfg, session.NewFileStore(cfg.Session.Path))
}

func NewWithStore(ctx context.Context, cfg *config.Config, store session.Store) (*Console, error) {
	sessions := session.NewManager(store, nil)

	apiClient, err := client.NewFromConfig(cfg, sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	sessions.SetAuthenticator(apiClient)

	if _, err := sessions.Restore(ctx); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	c := &Console{
		Config:    cfg,
		Session:   sessions,
		Client:    apiClient,
		Notify:    notify.NewCenter(cfg.UI.NotificationTTL),
		Validator: validator.New(),
	}
	c.Navigator = screens.NewNavigator(c.Deps())

	logger.Debug("Console initialized",
		"api", apiClient.BaseURL(),
		"authenticated", sessions.Authenticated(),
	)
	return c, nil
}

func (c *Console) Deps() screens.Deps {
	return screens.Deps{
		Config:    c.Config,
		Client:    c.Client,
		Session:   c.Session,
		Notify:    c.Notify,
		Validator: c.Validator,
	}
}

// StartWorkers запускает проверку истечения сессии; останавливается по ctx
func (c *Console) StartWorkers(ctx context.Context) {
	workers.NewSessionWorker(c.Session, c.Config.Workers.SessionCheckInterval).Start(ctx)
}

func (c *Console) Close() {
	if c.Navigator != nil {
		c.Navigator.Close()
	}
}
