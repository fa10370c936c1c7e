package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ClaimCmd creates the claim command
func ClaimCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim <gift_id>",
		Short: "Claim a gift (name defaults to the last one used on this device)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			giftID := args[0]
			name, _ := cmd.Flags().GetString("name")

			wf, err := app.Workflow()
			if err != nil {
				return err
			}

			if err := wf.Load(app.Ctx); err != nil {
				return err
			}

			if err := wf.Begin(giftID); err != nil {
				return err
			}
			if name == "" {
				name = wf.View().Draft
			}
			if err := wf.SetName(name); err != nil {
				return err
			}

			app.Logger.Debug("claim command", zap.String("gift_id", giftID))

			gift, err := wf.Submit(app.Ctx)
			if err != nil {
				// Leave the workflow idle for the next command
				wf.Cancel()
				wf.Dismiss()
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\n✓ Thank you for claiming this gift!")
			printConfirmation(out, gift)
			fmt.Fprintf(out, "Run 'export %s --ics' or 'export %s --copy' to save the details.\n\n", gift.ID, gift.ID)
			wf.Dismiss()
			return nil
		},
	}

	cmd.Flags().String("name", "", "Your name as it should appear on the registry")

	return cmd
}
