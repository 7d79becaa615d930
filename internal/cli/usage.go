package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"subscription_console/internal/dto"
	"subscription_console/internal/models"
	"subscription_console/internal/screens"
)

func newUsageCommand(rt *runtime) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show your usage for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, err := open[*screens.UserDashboard](rt, screens.RouteUser)
			if err != nil {
				return err
			}
			dash.SetPeriod(days)
			if err := dash.Load(cmd.Context()); err != nil {
				return err
			}
			usage, _ := dash.Usage()
			out := cmd.OutOrStdout()
			if err := printUsageSummary(out, rt.cfg.UI.Currency, usage); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return printDailyUsage(out, usage.DailyUsage)
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "usage period in days (default from config)")
	return cmd
}

func newRecommendationsCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "recommendations",
		Short: "Get plan recommendations based on your usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, err := open[*screens.UserDashboard](rt, screens.RouteUser)
			if err != nil {
				return err
			}
			if err := dash.LoadRecommendations(cmd.Context()); err != nil {
				return err
			}
			recs := dash.Recommendations()
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No recommendations available at this time.")
				return nil
			}
			return printRecommendations(out, rt.cfg.UI.Currency, recs)
		},
	}
}

func printUsageSummary(w io.Writer, currency string, u dto.UsageResponse) error {
	s := u.Summary
	tw := newTable(w)
	fmt.Fprintf(tw, "Period:\t%d days\n", u.PeriodDays)
	fmt.Fprintf(tw, "API calls:\t%d\n", s.TotalAPICalls)
	fmt.Fprintf(tw, "Data processed:\t%.2f GB\n", s.TotalDataProcessedGB)
	fmt.Fprintf(tw, "Avg session:\t%.0f min\n", s.AverageSessionDurationMinutes)
	fmt.Fprintf(tw, "Support tickets:\t%d\n", s.TotalSupportTickets)
	features := "-"
	if len(s.FeaturesUsed) > 0 {
		features = strings.Join(s.FeaturesUsed, ", ")
	}
	fmt.Fprintf(tw, "Features used:\t%s\n", features)
	return tw.Flush()
}

func printDailyUsage(w io.Writer, days []models.DailyUsage) error {
	if len(days) == 0 {
		fmt.Fprintln(w, "No usage recorded in this period")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tAPI CALLS\tDATA GB\tSESSION MIN\tTICKETS")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.0f\t%d\n",
			d.Date.Format("2006-01-02"), d.APICalls, d.DataProcessedGB, d.SessionDurationMinutes, d.SupportTickets)
	}
	return tw.Flush()
}

func printRecommendations(w io.Writer, currency string, recs []models.Recommendation) error {
	for i, r := range recs {
		fmt.Fprintf(w, "%d. [%s] %s (confidence %.0f%%)\n", i+1, r.Type.Label(), r.Title, r.ConfidenceScore*100)
		if r.Description != "" {
			fmt.Fprintf(w, "   %s\n", r.Description)
		}
		if r.PotentialSavings.IsPositive() {
			fmt.Fprintf(w, "   Potential savings: %s/mo\n", formatPrice(currency, r.PotentialSavings))
		}
	}
	return nil
}
