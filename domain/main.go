package domain

import (
	"fmt"

	"github.com/akeren/event-registration/config"
	"github.com/akeren/event-registration/domain/admin"
	"github.com/akeren/event-registration/domain/monitoring"
	"github.com/akeren/event-registration/domain/options"
	"github.com/akeren/event-registration/domain/registration"
	"github.com/akeren/event-registration/internal/docstore"
	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/pkg/session"
)

// StoreInitializers run on every fresh document store connection.
func StoreInitializers(logger *log.Logger) []docstore.Initializer {
	return []docstore.Initializer{registration.IndexInitializer(logger)}
}

func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	rs := appConfig.RouterService
	cfg := appConfig.Config

	sessions, err := session.NewManager(session.Config{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
	}, appConfig.Cache)
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}

	authenticator, err := session.NewAuthenticator(cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("admin credentials: %w", err)
	}

	gate := admin.RequireSession(sessions)

	optionsService := options.NewOptionsService(
		appConfig.Logger,
		options.NewOptionsRepository(appConfig.Store),
		appConfig.Cache,
		rs.Registerer(),
	)

	registrations := registration.NewRegistrationService(
		appConfig.Logger,
		registration.NewRegistrationRepository(appConfig.Store),
		registration.ServiceOptions{
			Location:    cfg.DisplayLocation,
			ReportTitle: cfg.ReportTitle,
			Registerer:  rs.Registerer(),
		},
	)

	registrationConfig := registration.ControllerConfig{
		Service:     registrations,
		Store:       appConfig.Store,
		Logger:      appConfig.Logger,
		Cache:       appConfig.Cache,
		Options:     optionsService,
		Gate:        gate,
		Location:    cfg.DisplayLocation,
		ReportTitle: cfg.ReportTitle,
	}

	rs.MountController(monitoring.NewMonitoringControllerFactory(appConfig.Store, appConfig.Logger, appConfig.Cache).CreateController())
	rs.MountController(admin.NewAdminController(admin.ControllerConfig{
		Logger:        appConfig.Logger,
		Cache:         appConfig.Cache,
		Sessions:      sessions,
		Authenticator: authenticator,
		Registrations: registrations,
		Options:       optionsService,
		SecureCookie:  cfg.Session.CookieSecure,
	}))
	rs.MountController(options.NewOptionsController(optionsService, gate))
	rs.MountController(registration.NewRegistrationController(registrationConfig))
	rs.MountController(registration.NewAdminRegistrationController(registrationConfig))

	return nil
}
