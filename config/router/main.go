package router

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/pkg/factory"
	"github.com/akeren/event-registration/pkg/ratelimit"
	"github.com/akeren/event-registration/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// DefaultTimeoutDuration applies when RouterConfig.RequestTimeout is unset.
const DefaultTimeoutDuration = 30 * time.Second

// Cache is the slice of the application cache the router needs. A Redis
// backed cache makes the rate limits shared between instances.
type Cache interface {
	Ping(ctx context.Context) error
}

type RouterService struct {
	engine         *gin.Engine
	server         *http.Server
	logger         *log.Logger
	requestTimeout time.Duration

	rateLimiter       ratelimit.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
	limiterRejections *prometheus.CounterVec
	registry          *prometheus.Registry

	// Keyed by "METHOD-/full/path".
	handlerToControllerMap map[string]*RESTController
	// Keyed by handler key or controller mount point.
	rateLimitOverrides map[string]ratelimit.RateLimiter
}

type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

func CreateRouterService(logger *log.Logger, cache Cache, routerConfig *RouterConfig) *RouterService {
	if mode := utils.GetEnvTrimmed("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	timeout := routerConfig.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeoutDuration
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.HandleMethodNotAllowed = true
	engine.RedirectTrailingSlash = true

	if utils.IsTracingEnabled() {
		engine.Use(otelgin.Middleware(utils.OTelServiceName()))
	}

	configureTrustedProxies(engine, logger)

	rs := &RouterService{
		engine:                 engine,
		logger:                 logger,
		requestTimeout:         timeout,
		rateLimitRequests:      routerConfig.RateLimitRequests,
		rateLimitWindow:        routerConfig.RateLimitWindow,
		registry:               prometheus.NewRegistry(),
		handlerToControllerMap: make(map[string]*RESTController),
		rateLimitOverrides:     make(map[string]ratelimit.RateLimiter),
	}

	rs.limiterRejections = newRateLimitMetrics(rs.registry)
	rs.initRateLimiting(cache)

	// /metrics is registered before the middleware below so scrapes skip
	// rate limiting and the controller lookup.
	rs.mountMetrics()

	engine.Use(
		rs.securityHeadersMiddleware(),
		rs.maxBodySizeMiddleware(),
		rs.corsMiddleware(),
		rs.rateLimitMiddleware(),
		rs.timeoutMiddleware(),
		rs.correlationIDMiddleware(),
		rs.loggerInjectionMiddleware(),
		rs.requestLoggingMiddleware(),
	)

	engine.NoRoute(rs.fallbackHandler(http.StatusNotFound, "Route not found"))
	engine.NoMethod(rs.fallbackHandler(http.StatusMethodNotAllowed, "Method not allowed"))

	// Gin's Context is not goroutine-safe, so in-flight deadlines are enforced
	// by the server rather than by running handlers in another goroutine.
	rs.server = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Router service initialized", "request_timeout", timeout.String())
	return rs
}

// configureTrustedProxies makes ClientIP() use RemoteAddr unless
// TRUSTED_PROXIES lists the proxies allowed to set X-Forwarded-For.
// "*" trusts everyone and is meant for local development only.
func configureTrustedProxies(engine *gin.Engine, logger *log.Logger) {
	proxies := parseTrustedProxiesEnv(os.Getenv("TRUSTED_PROXIES"))
	if err := engine.SetTrustedProxies(proxies); err != nil {
		logger.Error("Invalid TRUSTED_PROXIES; trusting no proxies", "error", err)
		_ = engine.SetTrustedProxies(nil)
		return
	}
	if proxies == nil {
		logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}
}

func parseTrustedProxiesEnv(v string) []string {
	v = strings.TrimSpace(v)
	if v == "*" {
		return []string{"0.0.0.0/0", "::/0"}
	}

	proxies := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	if len(proxies) == 0 {
		return nil
	}
	return proxies
}

func (routerService *RouterService) fallbackHandler(status int, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		routerService.logger.WithCorrelationID(c.Request.Context()).Warn(message,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.JSON(status, ErrorResult(status, message, nil).ToJSON())
	}
}

func (routerService *RouterService) initRateLimiting(cache Cache) {
	limiters := factory.NewLimiterFactory(cache, routerService.logger)
	routerService.rateLimiter = limiters.Limiter(routerService.rateLimitRequests, routerService.rateLimitWindow)

	routerService.logger.Info("Rate limiting initialized",
		"requests", routerService.rateLimitRequests,
		"window", routerService.rateLimitWindow.String(),
		"shared", limiters.Shared(),
	)
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

func (routerService *RouterService) GetLogger(c *RequestContext) *log.Logger {
	return routerService.logger.WithCorrelationID(c.Request.Context())
}

func (routerService *RouterService) Cleanup() {
	if routerService.rateLimiter != nil {
		if err := routerService.rateLimiter.Close(); err != nil {
			routerService.logger.Error("Failed to close rate limiter", "error", err)
		}
	}
	routerService.logger.Info("Router service cleanup completed")
}

func (routerService *RouterService) MountController(controller *RESTController) {
	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"path", controller.mountPoint,
		"handlers", controller.handlerCount,
	)
}

// RunHTTPServer blocks until the server stops. It returns nil after Shutdown.
func (routerService *RouterService) RunHTTPServer() error {
	routerService.server.Addr = ":" + utils.GetEnvTrimmedOrDefault("APP_PORT", "8080")
	routerService.logger.Info("Starting HTTP server", "addr", routerService.server.Addr)

	if err := routerService.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server")
	return routerService.server.Shutdown(ctx)
}
