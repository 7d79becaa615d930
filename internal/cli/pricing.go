package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"subscription_console/internal/screens"
)

func newPricingCommand(rt *runtime) *cobra.Command {
	var cycle string

	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Show the pricing tiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := screens.ParseCycle(cycle)
			if err != nil {
				return err
			}
			page := screens.NewPricing(screens.Deps{Config: rt.cfg})
			page.SetCycle(c)

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "PLAN\tPRICE\tSAVE\tDESCRIPTION")
			for _, card := range page.Cards() {
				name := card.Name
				if card.Featured {
					name += " ★"
				}
				save := ""
				if card.SavingsPercent > 0 {
					save = fmt.Sprintf("%d%%", card.SavingsPercent)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, card.PriceLabel(), save, card.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&cycle, "cycle", "monthly", "billing cycle: monthly or yearly")
	return standalone(cmd)
}
