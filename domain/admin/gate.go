package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/akeren/event-registration/config/router"
	"github.com/akeren/event-registration/pkg/session"
)

const (
	LoginPath = "/admin/login"

	claimsContextKey = "admin_claims"
)

// RequireSession aborts requests that do not carry a valid admin session
// cookie. Browsers are redirected to the login page; API clients get 401.
func RequireSession(manager *session.Manager) router.MiddlewareFunc {
	return func(c *router.RequestContext) {
		claims, err := sessionFromRequest(c, manager)
		if err == nil {
			c.Set(claimsContextKey, claims)
			c.Next()
			return
		}

		if !isSessionRejection(err) {
			router.GetLogger(c).Error("Admin session check failed", "error", err)
			result := router.ServiceUnavailableResult("Unable to verify the admin session right now. Please try again shortly.")
			c.AbortWithStatusJSON(result.StatusCode, result.ToJSON())
			return
		}

		if acceptsHTML(c) {
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}

		result := router.UnauthorizedResult("Admin login required.")
		c.AbortWithStatusJSON(result.StatusCode, result.ToJSON())
	}
}

// ClaimsFromContext returns the claims the gate attached to the request.
func ClaimsFromContext(c *router.RequestContext) (*session.Claims, bool) {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*session.Claims)
	return claims, ok
}

func sessionFromRequest(c *router.RequestContext, manager *session.Manager) (*session.Claims, error) {
	token, err := c.Cookie(session.DefaultCookieName)
	if err != nil {
		return nil, session.ErrInvalidSession
	}
	return manager.Validate(c.Request.Context(), token)
}

func isSessionRejection(err error) bool {
	return errors.Is(err, session.ErrInvalidSession) || errors.Is(err, session.ErrRevoked)
}

func acceptsHTML(c *router.RequestContext) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
