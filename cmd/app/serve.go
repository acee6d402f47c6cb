package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/studentorg/events-api/internal/api"
	"github.com/studentorg/events-api/internal/config"
	"github.com/studentorg/events-api/internal/db"
	"github.com/studentorg/events-api/internal/logger"
	"github.com/studentorg/events-api/internal/notify"
	"github.com/studentorg/events-api/internal/repository/dao"
	"github.com/studentorg/events-api/internal/service"
	"github.com/studentorg/events-api/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	conf, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = config.Watch(cfgFile, func(updated *config.AppConfig) {
		if err := logger.SetLevel(updated.Logger.Level); err != nil {
			zap.L().Warn("invalid log level in config", zap.String("level", updated.Logger.Level), zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to watch config -> %w", err)
	}

	postgresDB, err := openDB(conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(postgresDB) }()

	if conf.Postgres.MigrateOnStart {
		if err = dao.InitTables(postgresDB); err != nil {
			return fmt.Errorf("failed to migrate database -> %w", err)
		}
	}

	provider, err := tracing.NewProvider(ctx, conf.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing -> %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			zap.L().Warn("failed to flush traces", zap.Error(err))
		}
	}()

	notifier, closeNotifier, err := newNotifier(ctx, conf.Redis)
	if err != nil {
		return err
	}
	defer closeNotifier()

	s := api.NewServer(conf, postgresDB, notifier)

	return s.Run(ctx)
}

func newNotifier(ctx context.Context, conf *config.RedisConfig) (service.Notifier, func(), error) {
	logPublisher := notify.NewLog(logger.Named("notify"))
	if conf == nil || !conf.Enabled {
		return logPublisher, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis -> %w", err)
	}

	closeFn := func() { _ = client.Close() }

	return notify.Multi{logPublisher, notify.NewRedis(client, conf.Stream)}, closeFn, nil
}
