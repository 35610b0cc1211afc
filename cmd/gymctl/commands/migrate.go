package commands

import (
	"fmt"

	"elite-gym/internal/database"
	"elite-gym/internal/models"

	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const copyBatchSize = 500

func migrateCmd() *cobra.Command {
	var fromSQLite string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the audit tables, optionally copying rows from a SQLite file",
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := database.Open(cfg)
			if err != nil {
				return fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
			}
			if err := database.Migrate(dest); err != nil {
				return fmt.Errorf("auto-migrate: %w", err)
			}
			logger.Info("schema up to date", "driver", cfg.DBDriver)

			if fromSQLite == "" {
				return nil
			}
			src, err := gorm.Open(sqlite.Open(fromSQLite), &gorm.Config{})
			if err != nil {
				return fmt.Errorf("open source %s: %w", fromSQLite, err)
			}
			n, err := copyDispatches(src, dest)
			if err != nil {
				return err
			}
			logger.Info("audit rows copied", "source", fromSQLite, "rows", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&fromSQLite, "from-sqlite", "", "copy dispatch audit rows from this SQLite file")
	return cmd
}

// copyDispatches moves every audit row from src to dst in batches. Rows
// already present in dst, by primary key, are skipped.
func copyDispatches(src, dst *gorm.DB) (int, error) {
	total := 0
	var batch []models.Dispatch
	err := src.Model(&models.Dispatch{}).FindInBatches(&batch, copyBatchSize, func(tx *gorm.DB, _ int) error {
		if err := dst.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch).Error; err != nil {
			return fmt.Errorf("write dispatches: %w", err)
		}
		total += len(batch)
		return nil
	}).Error
	return total, err
}
