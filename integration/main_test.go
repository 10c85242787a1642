//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/akeren/event-registration/config"
	"github.com/akeren/event-registration/config/router"
	"github.com/akeren/event-registration/domain"
	"github.com/akeren/event-registration/internal/docstore"
	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/pkg/memcache"
	"github.com/akeren/event-registration/pkg/report"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const (
	testAdminUsername = "admin"
	testAdminPassword = "integration-password"
)

// mongoContainer starts a disposable MongoDB and returns its connection string.
func mongoContainer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get mongo connection string: %v", err)
	}

	return uri
}

// newApplication wires the full domain against the store at uri.
func newApplication(t *testing.T, uri, database string) *config.ApplicationConfig {
	t.Helper()

	logger := log.NewLoggerWithJSONOutput()

	storeConfig := docstore.Config{URI: uri, DatabaseName: database, ConnectTimeout: 5 * time.Second}
	store := docstore.NewProvider(storeConfig, logger, domain.StoreInitializers(logger)...)

	appConfig := &config.ApplicationConfig{
		Store:  store,
		Logger: logger,
		Cache:  memcache.New(),
		Config: &config.AppConfig{
			RateLimitRequests: 1000,
			RateLimitWindow:   time.Minute,
			RequestTimeout:    30 * time.Second,
			Store:             storeConfig,
			Admin:             config.AdminConfig{Username: testAdminUsername, Password: testAdminPassword},
			Session:           config.SessionConfig{Secret: "integration-secret", TTL: time.Hour},
			DisplayLocation:   report.DefaultLocation(),
			ReportTitle:       report.DefaultTitle,
		},
	}

	appConfig.RouterService = router.CreateRouterService(logger, appConfig.Cache, &router.RouterConfig{
		RateLimitRequests: appConfig.Config.RateLimitRequests,
		RateLimitWindow:   appConfig.Config.RateLimitWindow,
		RequestTimeout:    appConfig.Config.RequestTimeout,
	})

	if err := domain.SetupCoreDomain(appConfig); err != nil {
		t.Fatalf("failed to set up domain: %v", err)
	}

	t.Cleanup(func() {
		config.CloseStore(store, logger)
	})

	return appConfig
}
