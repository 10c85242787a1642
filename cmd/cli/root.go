package main

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/event-registration/config"
	"github.com/akeren/event-registration/internal/docstore"
	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/pkg/retry"
	"github.com/spf13/cobra"
)

var (
	logger = log.NewLoggerWithJSONOutput()

	connectAttempts int
	commandTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "cli",
	Short:         "Operator tasks for the event registration store",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.InitializeEnvFile(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&connectAttempts, "connect-attempts", 5,
		"store connection attempts before giving up")
	rootCmd.PersistentFlags().DurationVar(&commandTimeout, "timeout", 5*time.Minute,
		"overall time limit for the command")

	rootCmd.AddCommand(seedOptionsCmd, ensureIndexesCmd, exportCmd)
}

// connectStore dials the store with exponential backoff and returns the
// ready provider. Callers must close it.
func connectStore(ctx context.Context, initializers ...docstore.Initializer) (*docstore.Provider, error) {
	store := config.NewStore(logger, config.NewStoreConfig(), initializers...)

	policy := retry.NewExponentialBackoff(&retry.Config{
		MaxAttempts: connectAttempts,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Multiplier:  2.0,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Warn("Document store not reachable yet", "attempt", attempt, "retry_in", delay.String(), "error", err)
		},
	})

	err := policy.Execute(ctx, store.Ping)
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}

	return store, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), commandTimeout)
}
