package main

import (
	"fmt"

	"github.com/akeren/event-registration/config"
	"github.com/akeren/event-registration/domain/options"
	"github.com/akeren/event-registration/domain/registration"
	"github.com/spf13/cobra"
)

var seedOptionsCmd = &cobra.Command{
	Use:   "seed-options",
	Short: "Write the default college and course lists if none are stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		store, err := connectStore(ctx)
		if err != nil {
			return err
		}
		defer config.CloseStore(store, logger)

		service := options.NewOptionsService(logger, options.NewOptionsRepository(store), nil, nil)

		seeded, err := service.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed options: %w", err)
		}

		if seeded {
			logger.Info("Default form options written")
		} else {
			logger.Info("Form options already present, nothing written")
		}
		return nil
	},
}

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the registration uniqueness and ordering indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		store, err := connectStore(ctx)
		if err != nil {
			return err
		}
		defer config.CloseStore(store, logger)

		db, err := store.Database(ctx)
		if err != nil {
			return err
		}

		if err := registration.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}

		logger.Info("Registration indexes ensured")
		return nil
	},
}
