package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/gift-registry/internal/config"
	"github.com/jakechorley/gift-registry/pkg/core/model"
	"github.com/jakechorley/gift-registry/pkg/db"
)

// giftInserter adds gifts to a store that supports seeding
type giftInserter interface {
	InsertGift(ctx context.Context, gift model.Gift) (bool, error)
}

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending postgres migrations, optionally importing the registry sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			importSheet, _ := cmd.Flags().GetBool("import-sheet")

			if app.Cfg.Backend != config.BackendPostgres {
				return fmt.Errorf("migrate requires the postgres backend, configured backend is %q", app.Cfg.Backend)
			}

			pg, err := app.Postgres()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			applied, err := pg.RunMigrations(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			if len(applied) == 0 {
				fmt.Fprintln(out, "✓ Database is up to date")
			}
			for _, name := range applied {
				fmt.Fprintf(out, "✓ Applied %s\n", name)
			}

			if !importSheet {
				return nil
			}

			sheet, err := app.SheetsStore()
			if err != nil {
				return err
			}
			return importGifts(app.Ctx, sheet, pg, out, app.Logger)
		},
	}

	cmd.Flags().Bool("import-sheet", false, "Copy gifts from the registry sheet into the database")

	return cmd
}

// importGifts copies every gift from src into dst, skipping ids dst already has
func importGifts(ctx context.Context, src db.GiftLister, dst giftInserter, out io.Writer, logger *zap.Logger) error {
	gifts, err := src.ListGifts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read registry sheet: %w", err)
	}

	inserted := 0
	for _, g := range gifts {
		ok, err := dst.InsertGift(ctx, g)
		if err != nil {
			return fmt.Errorf("failed to import gift %s: %w", g.ID, err)
		}
		if ok {
			inserted++
		} else {
			logger.Debug("Gift already imported", zap.String("id", g.ID))
		}
	}

	logger.Info("Imported registry sheet", zap.Int("read", len(gifts)), zap.Int("inserted", inserted))
	fmt.Fprintf(out, "✓ Imported %d of %d gifts (%d already present)\n", inserted, len(gifts), len(gifts)-inserted)
	return nil
}
