package commands

import (
	"fmt"
	"time"

	"elite-gym/internal/catalog"
	"elite-gym/internal/funnel"
	"elite-gym/internal/registration"
	"elite-gym/internal/whatsapp"

	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the hand-off text and deep link without sending anything",
	}
	cmd.AddCommand(previewLeadCmd(), previewRegistrationCmd())
	return cmd
}

func printHandoff(cmd *cobra.Command, text string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, text)
	fmt.Fprintln(out)
	fmt.Fprintln(out, whatsapp.DeepLink(cfg.Destination, text))
}

func previewLeadCmd() *cobra.Command {
	var lead funnel.Lead
	cmd := &cobra.Command{
		Use:   "lead",
		Short: "Preview a chat funnel lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			printHandoff(cmd, lead.Text())
			return nil
		},
	}
	cmd.Flags().StringVar(&lead.Name, "name", "Ana María", "visitor name")
	cmd.Flags().StringVar(&lead.Phone, "phone", "311 624 8414", "visitor phone")
	cmd.Flags().StringVar(&lead.Interest, "interest", funnel.InterestMemberships, "selected interest")
	return cmd
}

func previewRegistrationCmd() *cobra.Command {
	var (
		form   registration.Form
		planID string
	)
	cmd := &cobra.Command{
		Use:   "registration",
		Short: "Preview a membership registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			plan := plans.Featured()
			if planID != "" {
				if plan, err = plans.Find(planID); err != nil {
					return err
				}
			}
			if err := form.Validate(); err != nil {
				logger.Warn("preview form is incomplete", "error", err)
			}
			printHandoff(cmd, form.Text(plan, time.Now()))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&planID, "plan", "", "plan id (default: featured plan)")
	f.StringVar(&form.FirstName, "first-name", "", "first name")
	f.StringVar(&form.LastName, "last-name", "", "last name")
	f.StringVar(&form.Email, "email", "", "email")
	f.StringVar(&form.Phone, "phone", "", "phone")
	f.StringVar(&form.BirthDate, "birth-date", "", "birth date, YYYY-MM-DD")
	f.StringVar(&form.NationalID, "national-id", "", "national id (cédula)")
	return cmd
}
