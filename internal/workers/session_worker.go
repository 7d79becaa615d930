package workers

import (
	"context"
	"time"

	"subscription_console/internal/logger"
)

// ExpiryChecker - сессия, которую можно проверить на истечение
type ExpiryChecker interface {
	CheckExpiry(ctx context.Context) bool
}

type SessionWorker struct {
	session  ExpiryChecker
	interval time.Duration
}

func NewSessionWorker(session ExpiryChecker, interval time.Duration) *SessionWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionWorker{session: session, interval: interval}
}

// Start запускает проверку истечения сессии
func (w *SessionWorker) Start(ctx context.Context) {
	go w.checkExpiredSession(ctx)
}

// checkExpiredSession сбрасывает сессию, как только истёк срок токена
func (w *SessionWorker) checkExpiredSession(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Session worker stopped")
			return
		case <-ticker.C:
			if w.session.CheckExpiry(ctx) {
				logger.WorkerLog("session", "expire", nil)
			}
		}
	}
}
