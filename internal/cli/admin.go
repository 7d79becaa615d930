package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subscription_console/internal/dto"
	"subscription_console/internal/models"
	"subscription_console/internal/screens"
)

func newAdminCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin dashboard: users, analytics and renewals",
	}
	cmd.AddCommand(
		newAdminUsersCommand(rt),
		newAdminAnalyticsCommand(rt),
		newAdminRenewalsCommand(rt),
		newAdminUserCommand(rt),
	)
	return cmd
}

func newAdminUsersCommand(rt *runtime) *cobra.Command {
	var (
		search  string
		page    int
		csvPath string
	)
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users with their subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, err := open[*screens.AdminDashboard](rt, screens.RouteAdmin)
			if err != nil {
				return err
			}
			if err := dash.Load(cmd.Context()); err != nil {
				return err
			}

			if csvPath != "" {
				return exportUsers(cmd.OutOrStdout(), dash, csvPath, search)
			}

			p := dash.UsersPage(search, page)
			out := cmd.OutOrStdout()
			if err := printUsers(out, rt.cfg.UI.Currency, p.Items); err != nil {
				return err
			}
			printPageFooter(out, p)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by username, email or plan")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().StringVar(&csvPath, "csv", "", "export the filtered users to a CSV file ('-' for stdout)")
	return cmd
}

func exportUsers(out io.Writer, dash *screens.AdminDashboard, path, search string) error {
	if path == "-" {
		return dash.ExportCSV(out, search)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := dash.ExportCSV(f, search); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported %d user(s) to %s\n", len(dash.Users(search)), path)
	return nil
}

func printUsers(w io.Writer, currency string, users []models.AdminUser) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tPLAN\tMONTHLY\tSTATUS\tLAST LOGIN")
	for _, u := range users {
		status := "inactive"
		if u.IsActive {
			status = "active"
		}
		lastLogin := "-"
		if u.RecentUsage != nil && !u.RecentUsage.LastLogin.IsZero() {
			lastLogin = u.RecentUsage.LastLogin.Format("2006-01-02")
		}
		plan := u.CurrentPlan
		if plan == "" {
			plan = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.Email, u.Role, plan, formatPrice(currency, u.MonthlySpend), status, lastLogin)
	}
	return tw.Flush()
}

func newAdminAnalyticsCommand(rt *runtime) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show the analytics overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, err := open[*screens.AdminDashboard](rt, screens.RouteAdmin)
			if err != nil {
				return err
			}
			dash.SetPeriod(days)
			if err := dash.Load(cmd.Context()); err != nil {
				return err
			}
			return printOverview(cmd.OutOrStdout(), rt.cfg.UI.Currency, dash)
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "analytics period in days (default from config)")
	return cmd
}

func printOverview(w io.Writer, currency string, dash *screens.AdminDashboard) error {
	o, ok := dash.Overview()
	if !ok {
		fmt.Fprintln(w, "Analytics unavailable")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Total users:\t%d\n", o.TotalUsers)
	fmt.Fprintf(tw, "Active users:\t%d\n", o.ActiveUsers)
	fmt.Fprintf(tw, "Monthly revenue:\t%s\n", formatPrice(currency, o.TotalMonthlyRevenue))
	fmt.Fprintf(tw, "Revenue per user:\t%s\n", formatPrice(currency, o.AverageRevenuePerUser))
	fmt.Fprintf(tw, "API calls:\t%d\n", o.TotalAPICalls)
	fmt.Fprintf(tw, "Data processed:\t%.1f GB\n", o.TotalDataProcessedGB)
	return tw.Flush()
}

func newAdminRenewalsCommand(rt *runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "renewals",
		Short: "Predict which users will renew",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, err := open[*screens.AdminDashboard](rt, screens.RouteAdmin)
			if err != nil {
				return err
			}
			if err := dash.LoadRenewals(cmd.Context()); err != nil {
				return err
			}
			a, _ := dash.Renewals()
			return printRenewals(cmd.OutOrStdout(), a, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "users shown per risk group")
	return cmd
}

func printRenewals(w io.Writer, a models.RenewalAnalysis, limit int) error {
	m := a.OverallMetrics
	tw := newTable(w)
	fmt.Fprintf(tw, "Avg renewal rate:\t%.0f%%\n", m.AverageRenewalLikelihood*100)
	fmt.Fprintf(tw, "High risk users:\t%d\n", m.HighRiskUsers)
	fmt.Fprintf(tw, "Likely renewals:\t%d\n", m.LikelyRenewals)
	fmt.Fprintf(tw, "Total analyzed:\t%d\n", m.TotalAnalyzed)
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, insight := range a.Insights {
		fmt.Fprintf(w, "  * %s\n", insight)
	}

	groups := []struct {
		title string
		level models.RiskLevel
		empty string
	}{
		{"High risk", models.RiskHigh, "No high-risk users identified"},
		{"Likely renewals", models.RiskLow, "No likely renewals identified"},
	}
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s:\n", g.title)
		predictions := a.ByRisk(g.level, limit)
		if len(predictions) == 0 {
			fmt.Fprintf(w, "  %s\n", g.empty)
			continue
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "USER ID\tRENEWAL\tACTIONS")
		for _, p := range predictions {
			fmt.Fprintf(tw, "%d\t%.0f%%\t%s\n", p.UserID, p.RenewalLikelihood*100, strings.Join(p.RecommendedActions, ", "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func newAdminUserCommand(rt *runtime) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "user <id>",
		Short: "Show detailed usage for one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			dash, err := open[*screens.AdminDashboard](rt, screens.RouteAdmin)
			if err != nil {
				return err
			}
			dash.SetPeriod(days)
			if err := dash.LoadUserDetail(cmd.Context(), id); err != nil {
				return err
			}
			detail, _ := dash.UserDetail()
			return printUserDetail(cmd.OutOrStdout(), rt.cfg.UI.Currency, detail)
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "usage period in days (default from config)")
	return cmd
}

func printUserDetail(w io.Writer, currency string, d dto.UserDetailResponse) error {
	u := d.User
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%d\n", u.ID)
	fmt.Fprintf(tw, "Username:\t%s\n", u.Username)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	plan := u.CurrentPlan
	if plan == "" {
		plan = "-"
	}
	fmt.Fprintf(tw, "Plan:\t%s\n", plan)
	fmt.Fprintf(tw, "Monthly spend:\t%s\n", formatPrice(currency, u.MonthlySpend))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if err := printDailyUsage(w, d.UsageData); err != nil {
		return err
	}
	if len(d.RecentRecommendations) > 0 {
		fmt.Fprintln(w, "\nRecent recommendations:")
		recs := d.RecentRecommendations
		if len(recs) > 3 {
			recs = recs[:3]
		}
		return printRecommendations(w, currency, recs)
	}
	return nil
}
