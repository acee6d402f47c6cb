package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/studentorg/events-api/internal/db"
	"github.com/studentorg/events-api/internal/repository/dao"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|version]",
	Short: "Apply or roll back the database schema",
	Args:  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),

	ValidArgs: []string{"up", "down", "version"},
	RunE:      func(_ *cobra.Command, args []string) error {
		conf, err := bootstrap()
		if err != nil {
			return err
		}

		postgresDB, err := openDB(conf)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(postgresDB) }()

		switch args[0] {
		case "up":
			err = dao.InitTables(postgresDB)
		case "down":
			err = dao.DropTables(postgresDB)
		}
		if err != nil {
			return fmt.Errorf("migrate %s -> %w", args[0], err)
		}

		version, dirty, err := dao.SchemaVersion(postgresDB)
		if err != nil {
			return fmt.Errorf("dao.SchemaVersion -> %w", err)
		}
		zap.L().Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))

		return nil
	},
}
