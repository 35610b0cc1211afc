package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"elite-gym/internal/catalog"

	"github.com/spf13/cobra"
)

func plansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "Validate and list the plan catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			featured := plans.Featured().ID

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE\tBADGE\tFEATURES")
			for _, p := range plans.All() {
				id := p.ID
				if id == featured {
					id += "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", id, p.Name, p.PriceLabel(), p.Badge, strings.Join(p.Features, "; "))
			}
			return w.Flush()
		},
	}
}
