package monitoring

import (
	"context"
	"time"

	"github.com/akeren/event-registration/config/router"
	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/pkg/constants"
	"github.com/akeren/event-registration/pkg/factory"
	"github.com/akeren/event-registration/pkg/ratelimit"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is anything whose connectivity can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Store  int `json:"store"`  // 1 = reachable, 0 = unreachable
	Cache  int `json:"cache"`  // 1 = reachable, 0 = unreachable/not configured
	Uptime int `json:"uptime"` // seconds
}

type MonitoringController struct {
	store     Pinger
	logger    *log.Logger
	cache     Pinger
	startTime time.Time
}

func NewMonitoringController(store Pinger, logger *log.Logger, cache Pinger) *router.RESTController {
	ctrl := &MonitoringController{
		store:     store,
		logger:    logger,
		cache:     cache,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {

			monitoringRateLimiter := createMonitoringRateLimiter()

			routerService.AddGetHandler(controller, monitoringRateLimiter, "", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.monitor(c)
			})

			routerService.AddGetHandler(controller, monitoringRateLimiter, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(routerService, c)
			})
		},
	)
}

// Probes are limited per process; load balancers hit every replica anyway.
func createMonitoringRateLimiter() ratelimit.RateLimiter {
	return factory.NewLimiterFactory(nil, nil).Limiter(constants.MonitoringRequestsPerMinute, time.Minute)
}

func (ctrl *MonitoringController) healthCheck(
	routerService *router.RouterService,
	c *router.RequestContext,
) *router.ServiceResult {
	logger := routerService.GetLogger(c)
	logger.Info("Health check endpoint called")
	healthStatus := ctrl.performHealthChecks(c.Request.Context(), logger)

	return &router.ServiceResult{
		StatusCode: 200,
		Data:       healthStatus,
		Message:    "event-registration health check completed",
	}
}

func (ctrl *MonitoringController) monitor(
	c *router.RequestContext,
) *router.ServiceResult {
	return &router.ServiceResult{
		StatusCode: 200,
		Data:       "Event registration service is operational.",
		Message:    "Monitoring successful",
	}
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		Uptime: int(time.Since(ctrl.startTime).Seconds()),
	}

	status.Store = probe(ctx, ctrl.store, "Store", logger)
	status.Cache = probe(ctx, ctrl.cache, "Cache", logger)

	return status
}

// probe returns 1 when target answers a ping within the health check timeout.
func probe(ctx context.Context, target Pinger, name string, logger *log.Logger) int {
	if target == nil {
		logger.Info(name + " not configured, health check skipped")
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := target.Ping(ctx); err != nil {
		logger.Error(name+" health check failed", "error", err)
		return 0
	}

	logger.Info(name + " health check passed")
	return 1
}
