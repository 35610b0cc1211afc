package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"elite-gym/internal/database"
	"elite-gym/internal/leads"

	"github.com/spf13/cobra"
)

func dispatchesCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "dispatches",
		Short: "List recent hand-off audit rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			rows, err := leads.NewGormRecorder(db).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tKIND\tCHANNEL\tSTATUS\tSESSION\tERROR")
			for _, d := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					d.CreatedAt.Format(time.RFC3339), d.Kind, d.Channel, d.Status, d.SessionID, d.Error)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "rows to show")
	return cmd
}
