package monitoring

import (
	"github.com/akeren/event-registration/config/router"
	"github.com/akeren/event-registration/internal/log"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	store  Pinger
	logger *log.Logger
	cache  Pinger
}

func NewMonitoringControllerFactory(store Pinger, logger *log.Logger, cache Pinger) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{
		store:  store,
		logger: logger,
		cache:  cache,
	}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	return NewMonitoringController(f.store, f.logger, f.cache)
}
