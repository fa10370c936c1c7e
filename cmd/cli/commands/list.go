package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListCmd creates the list command
func ListCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List gifts still available to claim",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := app.Workflow()
			if err != nil {
				return err
			}

			if err := wf.Load(app.Ctx); err != nil {
				return err
			}

			printGifts(cmd.OutOrStdout(), wf.View())
			return nil
		},
	}
}

// ClaimedCmd creates the claimed command
func ClaimedCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "claimed",
		Short: "List gifts claimed from this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := app.Workflow()
			if err != nil {
				return err
			}

			if err := wf.Load(app.Ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			claims := wf.View().MyClaims
			if len(claims) == 0 {
				fmt.Fprintln(out, "You haven't claimed any gifts on this device.")
				return nil
			}

			fmt.Fprintf(out, "\nYour Claimed Gifts (%d):\n", len(claims))
			for _, g := range claims {
				fmt.Fprintf(out, "  ✓ %s\n", giftLine(g))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}
