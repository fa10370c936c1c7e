package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/gift-registry/pkg/core/export"
	"github.com/jakechorley/gift-registry/pkg/core/model"
)

const icsUIDDomain = "subforsanta"

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [gift_id]",
		Short: "Save a claimed gift as a calendar file, to the clipboard, or by email",
		Long: `Export the details of a gift claimed from this device.

Without a gift id the gift currently shown in an interactive session is used.
With no output flags the summary is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			writeICS, _ := cmd.Flags().GetBool("ics")
			outDir, _ := cmd.Flags().GetString("out")
			copyText, _ := cmd.Flags().GetBool("copy")
			emailTo, _ := cmd.Flags().GetString("email")

			gift, err := resolveClaimedGift(app, args)
			if err != nil {
				return err
			}

			now := app.Now()
			deadline, err := export.DeliveryDeadline(app.Cfg.Export.DeliverByRule, now)
			if err != nil {
				return err
			}

			name := app.Cfg.Export.EventName
			summary := export.NamedSummary(name, gift, deadline)
			out := cmd.OutOrStdout()

			if writeICS {
				data := export.Calendar(gift, export.Event{
					UID:      uuid.NewString() + "@" + icsUIDDomain,
					Stamp:    now,
					Deadline: deadline,
					Name:     name,
				})
				path := filepath.Join(outDir, export.CalendarFileName(gift))
				if err := os.WriteFile(path, data, 0644); err != nil {
					return fmt.Errorf("failed to write calendar file: %w", err)
				}
				app.Logger.Info("Calendar file written", zap.String("path", path))
				fmt.Fprintf(out, "✓ Calendar event saved to %s\n", path)
			}

			if copyText {
				if err := app.Clipboard(summary); err != nil {
					app.Logger.Warn("Failed to copy to clipboard", zap.Error(err))
					return fmt.Errorf("failed to copy details, try the calendar export instead: %w", err)
				}
				fmt.Fprintln(out, "✓ Gift details copied to clipboard!")
			}

			if emailTo != "" {
				mailer, err := app.Mailer()
				if err != nil {
					return err
				}
				subject := fmt.Sprintf("Gift Details - %s: %s", name, gift.Item)
				if err := mailer.SendEmail(app.Ctx, emailTo, subject, summary); err != nil {
					return fmt.Errorf("failed to email gift details: %w", err)
				}
				fmt.Fprintf(out, "✓ Gift details sent to %s\n", emailTo)
			}

			if !writeICS && !copyText && emailTo == "" {
				fmt.Fprintf(out, "\n%s\n\n", summary)
			}

			return nil
		},
	}

	cmd.Flags().Bool("ics", false, "Write a calendar (.ics) file")
	cmd.Flags().String("out", ".", "Directory for the calendar file")
	cmd.Flags().Bool("copy", false, "Copy the details to the clipboard")
	cmd.Flags().String("email", "", "Email the details to this address")

	return cmd
}

// resolveClaimedGift finds the gift to export among this device's claims
func resolveClaimedGift(app *AppContext, args []string) (model.Gift, error) {
	wf, err := app.Workflow()
	if err != nil {
		return model.Gift{}, err
	}

	if len(args) == 0 {
		if confirmed := wf.View().Confirmed; confirmed != nil {
			return *confirmed, nil
		}
		return model.Gift{}, fmt.Errorf("no gift selected, pass a gift id")
	}

	if err := wf.Load(app.Ctx); err != nil {
		return model.Gift{}, err
	}

	gift, err := wf.Show(args[0])
	if err != nil {
		return model.Gift{}, err
	}
	wf.Dismiss()
	return gift, nil
}
