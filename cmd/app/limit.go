package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/studentorg/events-api/internal/db"
	"github.com/studentorg/events-api/internal/repository"
	"github.com/studentorg/events-api/internal/repository/dao"
	"github.com/studentorg/events-api/internal/service"
)

var (
	limitEventID uint
	limitValue   int
	limitDemote  bool
)

var limitCmd = &cobra.Command{
	Use:   "limit",
	Short: "Change the registration limit of an event",
	Long: `Change the registration limit of an event and rebalance its registrations.

A higher limit promotes waiting registrations. A lower limit is refused while more users
are confirmed than the new limit allows, unless --demote is given, in which case the most
recently confirmed registrations without priority are moved to the waiting list first.

Examples:
  events-api limit --event 12 --limit 80
  events-api limit --event 12 --limit 40 --demote`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf, err := bootstrap()
		if err != nil {
			return err
		}

		postgresDB, err := openDB(conf)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(postgresDB) }()

		notifier, closeNotifier, err := newNotifier(cmd.Context(), conf.Redis)
		if err != nil {
			return err
		}
		defer closeNotifier()

		repo := repository.NewEventRepository(dao.NewStore(postgresDB))
		svc := service.NewEventService(repo, notifier)

		event, err := svc.ChangeLimit(cmd.Context(), limitEventID, limitValue, limitDemote)
		if err != nil {
			return fmt.Errorf("svc.ChangeLimit -> %w", err)
		}

		zap.L().Info("limit changed", zap.Uint("event_id", event.ID), zap.Int("limit", event.Limit))

		return nil
	},
}

func init() {
	limitCmd.Flags().UintVar(&limitEventID, "event", 0, "event id")
	limitCmd.Flags().IntVar(&limitValue, "limit", 0, "new limit, 0 removes the limit")
	limitCmd.Flags().BoolVar(&limitDemote, "demote", false, "move surplus attendees to the waiting list")
	_ = limitCmd.MarkFlagRequired("event")
	_ = limitCmd.MarkFlagRequired("limit")
}
