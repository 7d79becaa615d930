package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"subscription_console/internal/logger"
	"subscription_console/internal/screens"
	"subscription_console/internal/session"
	"subscription_console/internal/workers"
	"subscription_console/pkg/apperrors"
)

// dashboard - экран, на который попадает пользователь после входа
type dashboard interface {
	screens.Screen
	Load(ctx context.Context) error
}

func openLanding(rt *runtime) (dashboard, error) {
	route := rt.console.Navigator.Landing()
	if route == screens.RouteLogin {
		return nil, apperrors.ErrNotAuthenticated
	}
	screen, err := rt.console.Navigator.Go(route)
	if err != nil {
		return nil, err
	}
	d, ok := screen.(dashboard)
	if !ok {
		return nil, fmt.Errorf("route %q has no dashboard", route)
	}
	return d, nil
}

func renderDashboard(w io.Writer, rt *runtime, d dashboard) error {
	switch s := d.(type) {
	case *screens.AdminDashboard:
		fmt.Fprintln(w, "== Admin dashboard ==")
		if err := printOverview(w, rt.cfg.UI.Currency, s); err != nil {
			return err
		}
		fmt.Fprintln(w)
		p := s.UsersPage("", 1)
		if err := printUsers(w, rt.cfg.UI.Currency, p.Items); err != nil {
			return err
		}
		printPageFooter(w, p)
	case *screens.UserDashboard:
		profile, ok := s.Profile()
		if !ok {
			fmt.Fprintln(w, "Profile unavailable")
			return nil
		}
		fmt.Fprintf(w, "== Welcome, %s ==\n", profile.DisplayName())
		tw := newTable(w)
		plan := profile.CurrentPlan
		if plan == "" {
			plan = "No active plan"
		}
		fmt.Fprintf(tw, "Current plan:\t%s\n", plan)
		fmt.Fprintf(tw, "Monthly spend:\t%s\n", formatPrice(rt.cfg.UI.Currency, profile.MonthlySpend))
		fmt.Fprintf(tw, "Days subscribed:\t%d\n", s.DaysSubscribed(time.Now()))
		if err := tw.Flush(); err != nil {
			return err
		}
		if usage, ok := s.Usage(); ok {
			fmt.Fprintln(w)
			return printUsageSummary(w, rt.cfg.UI.Currency, usage)
		}
	}
	return nil
}

func newDashboardCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the dashboard for the signed-in role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := openLanding(rt)
			if err != nil {
				return err
			}
			if err := d.Load(cmd.Context()); err != nil {
				return err
			}
			return renderDashboard(cmd.OutOrStdout(), rt, d)
		},
	}
}

// watch перерисовывает дашборд по расписанию, пока не прервут или не истечёт сессия
func newWatchCommand(rt *runtime) *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the dashboard on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			d, err := openLanding(rt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			// истечение сессии закрывает экран; watch на этом заканчивается
			unsub := rt.console.Session.Subscribe(func(_ context.Context, ev session.Event, _ *session.Session) {
				if ev != session.EventLogin {
					cancel()
				}
			})
			defer unsub()

			rt.console.StartWorkers(ctx)

			if schedule == "" {
				schedule = rt.cfg.Workers.RefreshSchedule
			}
			refresher := workers.NewRefreshWorker(schedule)
			refresher.Register(d.Name(), workers.LoaderFunc(func(ctx context.Context) error {
				if err := d.Load(ctx); err != nil {
					return err
				}
				fmt.Fprintf(out, "\n-- %s --\n", time.Now().Format("15:04:05"))
				return renderDashboard(out, rt, d)
			}))
			if err := refresher.Start(ctx); err != nil {
				return err
			}
			refresher.RunOnce()

			<-ctx.Done()
			logger.Debug("watch stopped")
			if !rt.console.Session.Authenticated() {
				return apperrors.ErrSessionExpired
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schedule, "every", "", "cron schedule, e.g. '@every 30s' (default from config)")
	return cmd
}
