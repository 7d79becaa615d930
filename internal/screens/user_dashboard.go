package screens

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"subscription_console/internal/dto"
	"subscription_console/internal/models"
	"subscription_console/pkg/apperrors"
)

// UserDashboard - профиль, подписка, использование и рекомендации
// текущего пользователя
type UserDashboard struct {
	d     Deps
	loads *loads

	mu              sync.Mutex
	days            int
	profile         *models.UserProfile
	usage           *dto.UsageResponse
	recommendations []models.Recommendation
}

func NewUserDashboard(d Deps) *UserDashboard {
	days := d.Config.UI.AnalyticsDays
	if days < 1 {
		days = 30
	}
	return &UserDashboard{d: d, loads: newLoads("user.dashboard"), days: days}
}

func (s *UserDashboard) Name() string { return "user.dashboard" }

func (s *UserDashboard) SetPeriod(days int) {
	if days <= 0 {
		return
	}
	s.mu.Lock()
	s.days = days
	s.mu.Unlock()
}

func (s *UserDashboard) period() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.days
}

// Load перечитывает профиль и использование. При ошибке прежние данные остаются.
func (s *UserDashboard) Load(ctx context.Context) error {
	if s.loads.isClosed() {
		return apperrors.ErrScreenClosed
	}
	userID := s.userID()

	var g errgroup.Group
	g.Go(func() error {
		rctx, seq, done := s.loads.begin(ctx)
		defer done()
		profile, err := s.d.Client.UserProfile(rctx)
		return s.finish(ctx, "profile", seq, err, func() { s.profile = profile })
	})
	g.Go(func() error {
		days := s.period()
		rctx, seq, done := s.loads.begin(ctx)
		defer done()
		usage, err := s.d.Client.UserUsage(rctx, userID, days)
		return s.finish(ctx, "usage", seq, err, func() { s.usage = usage })
	})
	return g.Wait()
}

// LoadRecommendations запрашивает свежие рекомендации.
// Сервер генерирует их на каждый запрос, поэтому не входит в Load.
func (s *UserDashboard) LoadRecommendations(ctx context.Context) error {
	if s.loads.isClosed() {
		return apperrors.ErrScreenClosed
	}
	rctx, seq, done := s.loads.begin(ctx)
	defer done()

	recs, err := s.d.Client.UserRecommendations(rctx, s.userID())
	return s.finish(ctx, "recommendations", seq, err, func() { s.recommendations = recs })
}

func (s *UserDashboard) userID() int64 {
	if u := s.d.Session.User(); u != nil {
		return u.ID
	}
	return 0
}

func (s *UserDashboard) finish(ctx context.Context, part string, seq uint64, err error, apply func()) error {
	if err != nil {
		stale, cerr := s.loads.commit(ctx, part, seq, nil)
		if cerr != nil {
			return cerr
		}
		if !stale {
			s.d.Notify.Report(ctx, err)
		}
		return err
	}
	_, cerr := s.loads.commit(ctx, part, seq, func() {
		s.mu.Lock()
		apply()
		s.mu.Unlock()
	})
	return cerr
}

func (s *UserDashboard) Profile() (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return models.UserProfile{}, false
	}
	return *s.profile, true
}

func (s *UserDashboard) DaysSubscribed(now time.Time) int {
	p, ok := s.Profile()
	if !ok {
		return 0
	}
	return p.DaysSubscribed(now)
}

// Usage - итоги и дневная история за период
func (s *UserDashboard) Usage() (dto.UsageResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usage == nil {
		return dto.UsageResponse{}, false
	}
	return *s.usage, true
}

func (s *UserDashboard) Recommendations() []models.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Recommendation, len(s.recommendations))
	copy(out, s.recommendations)
	return out
}

func (s *UserDashboard) Close() { s.loads.close() }
