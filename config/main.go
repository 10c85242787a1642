package config

import (
	"context"
	"strings"
	"time"

	"github.com/akeren/event-registration/config/router"
	"github.com/akeren/event-registration/internal/docstore"
	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/pkg/constants"
	"github.com/akeren/event-registration/pkg/report"
	"github.com/akeren/event-registration/pkg/session"
	"github.com/akeren/event-registration/pkg/utils"
)

const (
	DefaultAdminUsername   = "bbhcadmin"
	DefaultAdminPassword   = "bbhc@2005"
	DefaultSessionSecret   = "change-this-in-production"
	DefaultDisplayTimezone = "Asia/Kolkata"
)

type ApplicationConfig struct {
	Store           *docstore.Provider
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	TracingShutdown func(context.Context) error
}

type AdminConfig struct {
	Username string
	Password string
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieSecure bool
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration

	Store           docstore.Config
	Admin           AdminConfig
	Session         SessionConfig
	DisplayLocation *time.Location
	ReportTitle     string
}

func NewAppConfig() *AppConfig {
	config := &AppConfig{
		RateLimitRequests: utils.GetEnvPositiveIntOrDefault("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:   utils.GetEnvDurationOrDefault("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow()),
		RequestTimeout:    utils.GetEnvDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),

		Store: NewStoreConfig(),
		Admin: AdminConfig{
			Username: sanitizeEnv(utils.GetEnvTrimmedOrDefault("ADMIN_USERNAME", DefaultAdminUsername)),
			Password: sanitizeEnv(utils.GetEnvTrimmedOrDefault("ADMIN_PASSWORD", DefaultAdminPassword)),
		},
		Session: SessionConfig{
			Secret:       sanitizeEnv(utils.GetEnvTrimmedOrDefault("SESSION_SECRET", DefaultSessionSecret)),
			TTL:          utils.GetEnvDurationOrDefault("SESSION_TTL", session.DefaultTTL),
			CookieSecure: utils.GetEnvBoolOrDefault("SESSION_COOKIE_SECURE", IsProduction(GetAppEnv())),
		},
		ReportTitle: utils.GetEnvTrimmedOrDefault("REPORT_TITLE", report.DefaultTitle),
	}

	config.DisplayLocation = loadDisplayLocation(GetValueFromEnvironmentVariable("DISPLAY_TIMEZONE", DefaultDisplayTimezone))

	return config
}

func loadDisplayLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultDisplayTimezone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return report.DefaultLocation()
	}

	return loc
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.Store != nil {
		CloseStore(ac.Store, ac.Logger)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

// LoadApplicationConfiguration wires configuration, tracing, cache, the lazy
// document store and the router. initializers run on every fresh store
// connection.
func LoadApplicationConfiguration(logger *log.Logger, initializers ...docstore.Initializer) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	appConfig := NewAppConfig()
	appEnv := GetAppEnv()

	if err := ValidateProductionSafety(appEnv, appConfig); err != nil {
		return nil, err
	}
	if unsafe := UnsafeDefaults(appConfig); len(unsafe) > 0 {
		logger.Warn("Running with default secrets; override them before deploying", "variables", unsafe)
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	store := NewStore(logger, appConfig.Store, initializers...)
	cache := NewCacheConfig().NewCacheOrFallback(logger)

	routerService := router.CreateRouterService(logger, cache, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully")

	return &ApplicationConfig{
		Store:           store,
		RouterService:   routerService,
		Logger:          logger,
		Cache:           cache,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}
