package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"subscription_console/internal/listmanager"
	"subscription_console/internal/models"
	"subscription_console/internal/notify"
	"subscription_console/pkg/apperrors"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatPrice(currency string, price decimal.Decimal) string {
	return currency + price.StringFixed(2)
}

func printPlans(w io.Writer, currency string, plans []models.Plan) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tPRICE\tDURATION\tDESCRIPTION")
	for _, p := range plans {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Type, p.Name, formatPrice(currency, p.Price), p.Duration, truncate(p.Description, 40))
	}
	return tw.Flush()
}

func printPageFooter[T any](w io.Writer, page listmanager.Page[T]) {
	fmt.Fprintf(w, "Page %d of %d (%d items)\n", page.Number, page.TotalPages, page.TotalItems)
}

func printPlan(w io.Writer, currency string, p models.Plan) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%d\n", p.ID)
	fmt.Fprintf(tw, "Type:\t%s\n", p.Type)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Price:\t%s\n", formatPrice(currency, p.Price))
	fmt.Fprintf(tw, "Duration:\t%s\n", p.Duration)
	fmt.Fprintf(tw, "Description:\t%s\n", p.Description)
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printNotification(w io.Writer, n notify.Notification) {
	mark := "✔"
	switch n.Level {
	case notify.LevelError:
		mark = "✖"
	case notify.LevelWarning:
		mark = "!"
	}
	fmt.Fprintf(w, "%s %s\n", mark, n.Message)
	for _, line := range detailLines(n.Details) {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

func printError(w io.Writer, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		fmt.Fprintf(w, "✖ %v\n", err)
		return
	}
	fmt.Fprintf(w, "✖ %s\n", appErr.Message)
	for _, line := range detailLines(appErr.Details) {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// detailLines разворачивает детали ошибки (поля формы, id пакетного удаления)
func detailLines(details interface{}) []string {
	switch d := details.(type) {
	case nil:
		return nil
	case string:
		if d == "" {
			return nil
		}
		return []string{d}
	case map[string]string:
		lines := make([]string, 0, len(d))
		for k, v := range d {
			lines = append(lines, k+": "+v)
		}
		sort.Strings(lines)
		return lines
	default:
		return []string{fmt.Sprint(d)}
	}
}

// confirm спрашивает y/N; --yes пропускает вопрос
func confirm(in io.Reader, out io.Writer, question string, yes bool) bool {
	if yes {
		return true
	}
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func readLine(in io.Reader, out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line)
}

func printConfirmation(w io.Writer, c listmanager.Confirmation) {
	switch c.Kind {
	case listmanager.KindDelete:
		fmt.Fprintf(w, "The following %d plan(s) will be deleted:\n", len(c.Names))
		for _, name := range c.Names {
			fmt.Fprintf(w, "  - %s\n", name)
		}
	case listmanager.KindUpdate:
		fmt.Fprintf(w, "Plan %s will be updated.\n", strings.Join(c.Names, ", "))
	default:
		fmt.Fprintf(w, "Plan %s will be added.\n", strings.Join(c.Names, ", "))
	}
}
