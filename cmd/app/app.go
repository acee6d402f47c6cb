package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/studentorg/events-api/internal/config"
	"github.com/studentorg/events-api/internal/db"
	"github.com/studentorg/events-api/internal/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "events-api",
	Short:        "Event registration service with capacity limits and waiting lists",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "./cmd/app/config.yml", "config file")

	rootCmd.AddCommand(serveCmd, migrateCmd, limitCmd, tokenCmd)
}

func Start() error {
	return rootCmd.Execute()
}

// bootstrap loads the config and initializes the global logger.
func bootstrap() (*config.AppConfig, error) {
	conf, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return nil, fmt.Errorf("failed to initialize logger -> %w", err)
	}

	if conf.Logger.Level != "" {
		if err = logger.SetLevel(conf.Logger.Level); err != nil {
			return nil, fmt.Errorf("failed to set log level -> %w", err)
		}
	}

	return conf, nil
}

func openDB(conf *config.AppConfig) (*gorm.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")

	var (
		postgresDB *gorm.DB
		err        error
	)
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database -> %w", err)
	}

	return postgresDB, nil
}
