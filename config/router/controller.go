package router

import (
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/akeren/event-registration/pkg/ratelimit"
)

// routePath joins the mount point and relative path into a clean absolute
// route without a trailing slash.
func routePath(controller *RESTController, relativePath string) string {
	return path.Join("/", controller.mountPoint, relativePath)
}

func (routerService *RouterService) keyForPathAndMethod(fullPath, method string) string {
	return method + "-" + fullPath
}

// Route ownership and overrides are fixed at startup, so conflicts panic.
func (routerService *RouterService) claimRoute(controller *RESTController, fullPath, method string) {
	key := routerService.keyForPathAndMethod(fullPath, method)
	if owner, taken := routerService.handlerToControllerMap[key]; taken {
		panic(fmt.Sprintf("%s %s is already registered by controller %q", method, fullPath, owner.name))
	}
	routerService.handlerToControllerMap[key] = controller
}

func (routerService *RouterService) bindOverrideRateLimiter(scope string, limiter ratelimit.RateLimiter) {
	if limiter == nil {
		return
	}
	if _, taken := routerService.rateLimitOverrides[scope]; taken {
		panic(fmt.Sprintf("a rate limiter is already registered for %q", scope))
	}
	routerService.rateLimitOverrides[scope] = limiter
}

func createHandler(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)

		if result == nil {
			GetLogger(c).Error("Handler returned no result", "route", c.FullPath())
			c.JSON(http.StatusInternalServerError, InternalServerErrorResult("An unexpected error occurred").ToJSON())
			return
		}

		if result.Attachment != nil {
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Attachment.Filename))
			c.Data(result.StatusCode, result.Attachment.ContentType, result.Attachment.Body)
			return
		}

		c.JSON(result.StatusCode, result.ToJSON())
	}
}

func NewRESTController(name, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	return &RESTController{
		name:       name,
		mountPoint: path.Join("/", mountPoint),
		prepare:    prepare,
	}
}

// Use attaches middlewares that run before every handler the controller registers.
func (controller *RESTController) Use(middlewares ...MiddlewareFunc) *RESTController {
	controller.middlewares = append(controller.middlewares, middlewares...)
	return controller
}

func (controller *RESTController) chain(handler HandlerFunction, middlewares []MiddlewareFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(controller.middlewares)+len(middlewares)+1)
	chain = append(chain, controller.middlewares...)
	chain = append(chain, middlewares...)
	return append(chain, createHandler(handler))
}

// RateLimitWith replaces the global rate limit for every route under the
// controller's mount point. Handler limiters still take precedence.
func (controller *RESTController) RateLimitWith(routerService *RouterService, limiter ratelimit.RateLimiter) *RESTController {
	routerService.bindOverrideRateLimiter(controller.mountPoint, limiter)
	return controller
}

// AddPostHandler registers a POST route. A non-nil limiter replaces the
// global rate limit for this route only.
func (routerService *RouterService) AddPostHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	relativePath string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.addHandler(http.MethodPost, controller, limiter, relativePath, handler, middlewares)
}

func (routerService *RouterService) AddGetHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	relativePath string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.addHandler(http.MethodGet, controller, limiter, relativePath, handler, middlewares)
}

func (routerService *RouterService) addHandler(
	method string,
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	relativePath string,
	handler HandlerFunction,
	middlewares []MiddlewareFunc,
) {
	fullPath := routePath(controller, relativePath)
	routerService.claimRoute(controller, fullPath, method)
	routerService.bindOverrideRateLimiter(routerService.keyForPathAndMethod(fullPath, method), limiter)
	controller.handlerCount++

	routerService.engine.Handle(method, fullPath, controller.chain(handler, middlewares)...)
	routerService.logger.Debug("Handler registered", "method", method, "path", fullPath, "controller", controller.name)
}
