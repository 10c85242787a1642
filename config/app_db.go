package config

import (
	"context"
	"time"

	"github.com/akeren/event-registration/internal/docstore"
	"github.com/akeren/event-registration/internal/log"
)

const (
	DefaultMongoURI      = "mongodb://localhost:27017"
	DefaultMongoDatabase = "krishna_event"
)

func NewStoreConfig() docstore.Config {
	cfg := docstore.Config{
		URI:            sanitizeEnv(GetValueFromEnvironmentVariable("MONGO_URI", DefaultMongoURI)),
		DatabaseName:   sanitizeEnv(GetValueFromEnvironmentVariable("MONGO_DB_NAME", DefaultMongoDatabase)),
		ConnectTimeout: docstore.DefaultConnectTimeout,
	}

	if cfg.URI == "" {
		cfg.URI = DefaultMongoURI
	}
	if cfg.DatabaseName == "" {
		cfg.DatabaseName = DefaultMongoDatabase
	}

	if raw := sanitizeEnv(GetValueFromEnvironmentVariable("MONGO_CONNECT_TIMEOUT", "")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			cfg.ConnectTimeout = parsed
		}
	}

	return cfg
}

// NewStore builds the lazy document store provider. No connection is made
// here, so the server starts even while the store is down.
func NewStore(logger *log.Logger, cfg docstore.Config, initializers ...docstore.Initializer) *docstore.Provider {
	logger.Info("Document store configured",
		"database", cfg.DatabaseName,
		"connect_timeout", cfg.ConnectTimeout.String(),
	)

	return docstore.NewProvider(cfg, logger, initializers...)
}

func CloseStore(store *docstore.Provider, logger *log.Logger) {
	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Close(ctx); err != nil {
		logger.Error("Failed to close document store", "error", err)
	} else {
		logger.Info("Document store closed successfully")
	}
}
