package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subscription_console/internal/screens"
	"subscription_console/pkg/apperrors"
)

// open переходит на экран через навигатор (он же проверяет права)
func open[S screens.Screen](rt *runtime, route screens.Route) (S, error) {
	var zero S
	screen, err := rt.console.Navigator.Go(route)
	if err != nil {
		return zero, err
	}
	s, ok := screen.(S)
	if !ok {
		return zero, fmt.Errorf("route %q opened unexpected screen %s", route, screen.Name())
	}
	return s, nil
}

func newPlansCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Browse and manage subscription plans",
	}
	cmd.AddCommand(
		newPlansListCommand(rt),
		newPlansViewCommand(rt),
		newPlansOptionsCommand(rt),
		newPlansAddCommand(rt),
		newPlansEditCommand(rt),
		newPlansDeleteCommand(rt),
	)
	return cmd
}

func newPlansListCommand(rt *runtime) *cobra.Command {
	var (
		search string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans with search and pagination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := open[*screens.PlanCatalog](rt, screens.RouteCatalog)
			if err != nil {
				return err
			}
			if err := catalog.Load(cmd.Context()); err != nil {
				return err
			}
			p := catalog.Page(search, page)
			out := cmd.OutOrStdout()
			if p.TotalItems == 0 {
				fmt.Fprintln(out, "No plans found")
				return nil
			}
			if err := printPlans(out, rt.cfg.UI.Currency, p.Items); err != nil {
				return err
			}
			printPageFooter(out, p)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name filter")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number (clamped to the last page)")
	return cmd
}

func newPlansViewCommand(rt *runtime) *cobra.Command {
	var tab string
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show plans grouped by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := open[*screens.PlanCatalog](rt, screens.RouteCatalog)
			if err != nil {
				return err
			}
			if tab != "" {
				if err := catalog.SelectTab(tab); err != nil {
					return err
				}
			}
			if err := catalog.Load(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			names := make([]string, 0)
			for _, t := range catalog.Tabs() {
				label := fmt.Sprintf("%s (%d)", t.Name, t.Count)
				if t.Active {
					label = "[" + label + "]"
				}
				if t.Popular {
					label += " ★"
				}
				names = append(names, label)
			}
			fmt.Fprintln(out, strings.Join(names, "  "))
			fmt.Fprintln(out)

			for _, p := range catalog.Visible() {
				badge := ""
				if catalog.IsPopular(p) {
					badge = "  Most Popular"
				}
				fmt.Fprintf(out, "%s%s\n  %s / %s\n  %s\n\n", p.Name, badge,
					formatPrice(rt.cfg.UI.Currency, p.Price), p.Duration, p.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&tab, "type", "t", "", "plan type tab (Basic, Standard, Premium)")
	return cmd
}

func newPlansOptionsCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Show allowed plan types and durations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			add, err := open[*screens.AddPlan](rt, screens.RouteAddPlan)
			if err != nil {
				return err
			}
			if err := add.LoadOptions(cmd.Context()); err != nil {
				return err
			}
			opts := add.Options()
			fmt.Fprintf(cmd.OutOrStdout(), "Types:     %s\nDurations: %s\n",
				strings.Join(opts.Types, ", "), strings.Join(opts.Durations, ", "))
			return nil
		},
	}
}

var planFields = []string{"type", "name", "price", "duration", "description"}

func addPlanFlags(cmd *cobra.Command, values map[string]*string) {
	for _, f := range planFields {
		v := new(string)
		values[f] = v
		cmd.Flags().StringVar(v, f, "", "plan "+f)
	}
}

func newPlansAddCommand(rt *runtime) *cobra.Command {
	var yes bool
	values := map[string]*string{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			add, err := open[*screens.AddPlan](rt, screens.RouteAddPlan)
			if err != nil {
				return err
			}
			for _, f := range planFields {
				if err := add.Set(f, *values[f]); err != nil {
					return err
				}
			}

			c, err := add.Submit(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printConfirmation(out, c)
			if !confirm(cmd.InOrStdin(), out, "Add this plan?", yes) {
				return add.Cancel()
			}

			plan, err := add.Confirm(ctx)
			if err != nil {
				return err
			}
			return printPlan(out, rt.cfg.UI.Currency, plan)
		},
	}
	addPlanFlags(cmd, values)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newPlansEditCommand(rt *runtime) *cobra.Command {
	var yes bool
	values := map[string]*string{}

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a plan; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			edit, err := open[*screens.EditPlan](rt, screens.RouteEditPlan)
			if err != nil {
				return err
			}
			if err := edit.Load(ctx); err != nil {
				return err
			}
			if err := edit.Select(id); err != nil {
				return err
			}
			for _, f := range planFields {
				if cmd.Flags().Changed(f) {
					if err := edit.Set(f, *values[f]); err != nil {
						return err
					}
				}
			}

			c, err := edit.Submit(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printConfirmation(out, c)
			if !confirm(cmd.InOrStdin(), out, "Save changes?", yes) {
				return edit.Cancel()
			}

			plan, err := edit.Confirm(ctx)
			if err != nil {
				return err
			}
			return printPlan(out, rt.cfg.UI.Currency, plan)
		},
	}
	addPlanFlags(cmd, values)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newPlansDeleteCommand(rt *runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete one or more plans",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			del, err := open[*screens.DeletePlan](rt, screens.RouteDelete)
			if err != nil {
				return err
			}
			if err := del.Load(ctx); err != nil {
				return err
			}
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				if del.IsSelected(id) {
					continue
				}
				if _, err := del.Toggle(id); err != nil {
					return err
				}
			}

			c, err := del.RequestDelete(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printConfirmation(out, c)
			if !confirm(cmd.InOrStdin(), out, "Delete these plans?", yes) {
				return del.Cancel()
			}

			res, err := del.Confirm(ctx)
			if len(res.Deleted) > 0 {
				fmt.Fprintf(out, "Deleted: %s\n", joinIDs(res.Deleted))
			}
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.CodeBatchPartialFailure {
				fmt.Fprintf(out, "Still selected for retry: %s\n", joinIDs(del.Selected()))
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationMessage(fmt.Sprintf("Invalid plan id %q", s))
	}
	return id, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
