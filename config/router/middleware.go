package router

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/event-registration/internal/log"
	apperrors "github.com/akeren/event-registration/pkg/errors"
	"github.com/akeren/event-registration/pkg/ratelimit"
	"github.com/akeren/event-registration/pkg/utils"
	"github.com/gin-gonic/gin"
)

const correlationHeader = "X-Correlation-ID"

func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(correlationHeader))
		if id == "" {
			id = log.GenerateCorrelationID()
		}

		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), log.CorrelatedIDKey, id))
		c.Header(correlationHeader, id)
		c.Next()
	}
}

func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := routerService.logger.WithCorrelationID(c.Request.Context())
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), log.LoggerKeyForContext, logger))
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		GetLogger(c).Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		)
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		// Admin pages carry registrant contact details.
		if strings.HasPrefix(c.Request.URL.Path, "/admin") {
			h.Set("Cache-Control", "no-store")
		}

		if servedOverHTTPS(c) && hstsEnabled() {
			h.Set("Strict-Transport-Security", hstsValue())
		}
		c.Next()
	}
}

// servedOverHTTPS also trusts X-Forwarded-Proto for TLS terminated at a proxy.
func servedOverHTTPS(c *gin.Context) bool {
	return c.Request.TLS != nil || strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

// hstsEnabled defaults to on in production; HSTS_ENABLED overrides.
func hstsEnabled() bool {
	env := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))
	return utils.GetEnvBoolOrDefault("HSTS_ENABLED", env == "production" || env == "prod")
}

func hstsValue() string {
	value := fmt.Sprintf("max-age=%d", utils.GetEnvPositiveIntOrDefault("HSTS_MAX_AGE", 31536000))
	if utils.GetEnvBoolOrDefault("HSTS_INCLUDE_SUBDOMAINS", true) {
		value += "; includeSubDomains"
	}
	return value
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	// Registration and option forms are tiny; 1 MiB unless MAX_REQUEST_BODY_BYTES says otherwise.
	maxBytes := int64(utils.GetEnvPositiveIntOrDefault("MAX_REQUEST_BODY_BYTES", 1<<20))

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				ErrorResult(http.StatusRequestEntityTooLarge, "Request payload too large", nil).ToJSON())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	allowedOrigins := parseAllowedOrigins(utils.GetEnvTrimmed("CORS_ALLOWED_ORIGIN"))
	if len(allowedOrigins) == 0 {
		routerService.logger.Info("CORS_ALLOWED_ORIGIN not set, cross-origin requests are denied")
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		if !originAllowed(allowedOrigins, origin) {
			routerService.logger.Warn("CORS origin not allowed", "origin", origin)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, "+correlationHeader)
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		// Export downloads are named through Content-Disposition.
		h.Set("Access-Control-Expose-Headers", "Content-Disposition, "+correlationHeader)
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(apperrors.StatusNoContent)
			return
		}
		c.Next()
	}
}

func parseAllowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func originAllowed(allowed []string, origin string) bool {
	for _, candidate := range allowed {
		if candidate == "*" || candidate == origin {
			return true
		}
	}
	return false
}

// timeoutMiddleware puts a deadline on the request context. Handlers that
// overrun without writing anything get a 408; mid-flight enforcement is the
// http.Server's job.
func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), routerService.requestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			routerService.logger.WithCorrelationID(ctx).Warn("Request timed out", "route", c.FullPath())
			c.AbortWithStatusJSON(http.StatusRequestTimeout,
				ErrorResult(apperrors.StatusRequestTimeout, "Request timeout", nil).ToJSON())
		}
	}
}

// resolveLimiter picks the handler override, then the controller override,
// then the global limiter. Overrides count in their own key space so a shared
// Redis does not mix them with the global budget.
func (routerService *RouterService) resolveLimiter(handlerKey string, controller *RESTController, clientIP string) (ratelimit.RateLimiter, string) {
	if limiter, ok := routerService.rateLimitOverrides[handlerKey]; ok {
		return limiter, fmt.Sprintf("ratelimit:%s:%s", handlerKey, clientIP)
	}
	if limiter, ok := routerService.rateLimitOverrides[controller.mountPoint]; ok {
		return limiter, fmt.Sprintf("ratelimit:%s:%s", controller.mountPoint, clientIP)
	}
	return routerService.rateLimiter, "ratelimit:" + clientIP
}

func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		handlerKey := routerService.keyForPathAndMethod(c.FullPath(), c.Request.Method)
		controller, ok := routerService.handlerToControllerMap[handlerKey]
		if !ok || controller == nil {
			// Unknown routes and handlers registered outside a controller.
			routerService.logger.Warn("No controller mapped for request", "method", c.Request.Method, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusNotFound,
				NotFoundResult(fmt.Sprintf("There is no handler configured to handle any resource at the path %s", c.Request.URL.Path)).ToJSON())
			return
		}

		clientIP := c.ClientIP()
		limiter, key := routerService.resolveLimiter(handlerKey, controller, clientIP)
		if limiter == nil {
			c.Next()
			return
		}

		limit, window := limiter.GetLimitDetails()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Window", window.String())

		limited, err := limiter.IsLimited(key)
		if err != nil {
			// Admit the request; an unreachable limiter store must not take
			// registration offline.
			routerService.logger.Error("Rate limiter error", "error", err, "client_ip", clientIP)
			c.Next()
			return
		}
		if !limited {
			c.Next()
			return
		}

		routerService.logger.Warn("Rate limit exceeded", "client_ip", clientIP, "route", c.FullPath())
		routerService.limiterRejections.WithLabelValues(c.FullPath()).Inc()

		retryAfter := strconv.Itoa(max(1, int(math.Ceil(window.Seconds()))))
		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyRequestsResult(RateLimitResponse{
			Limit:      limit,
			Window:     window.String(),
			RetryAfter: retryAfter,
		}).ToJSON())
	}
}
