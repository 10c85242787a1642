package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/akeren/event-registration/config/router"
	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/internal/models"
	"github.com/akeren/event-registration/pkg/constants"
	apperrors "github.com/akeren/event-registration/pkg/errors"
	"github.com/akeren/event-registration/pkg/factory"
	"github.com/akeren/event-registration/pkg/ratelimit"
	"github.com/akeren/event-registration/pkg/session"
	"github.com/gin-gonic/gin/binding"
)

// RegistrationCounter reports how many registrants are stored.
type RegistrationCounter interface {
	Count(ctx context.Context) (int64, error)
}

// OptionsProvider supplies the current college and course lists.
type OptionsProvider interface {
	Get(ctx context.Context) models.FormOptions
}

type ControllerConfig struct {
	Logger        *log.Logger
	Cache         factory.Cache
	Sessions      *session.Manager
	Authenticator *session.Authenticator
	Registrations RegistrationCounter
	Options       OptionsProvider
	SecureCookie  bool
}

type AdminController struct {
	cfg ControllerConfig
}

// NewAdminController serves login, logout and the dashboard shell.
func NewAdminController(cfg ControllerConfig) *router.RESTController {
	ctrl := &AdminController{cfg: cfg}

	return router.NewRESTController(
		"AdminController",
		"/admin",
		func(rs *router.RouterService, c *router.RESTController) {
			gate := RequireSession(cfg.Sessions)

			rs.AddGetHandler(c, nil, "login", ctrl.sessionStatus)
			rs.AddPostHandler(c, createLoginRateLimiter(cfg), "login", ctrl.login)
			rs.AddGetHandler(c, nil, "logout", ctrl.logout)
			rs.AddGetHandler(c, nil, "", ctrl.dashboard, gate)
		},
	)
}

func createLoginRateLimiter(cfg ControllerConfig) ratelimit.RateLimiter {
	var logger ratelimit.Logger
	if cfg.Logger != nil {
		logger = cfg.Logger
	}
	return factory.NewLimiterFactory(cfg.Cache, logger).Limiter(constants.LoginAttemptsPerMinute, time.Minute)
}

func (ctrl *AdminController) sessionStatus(c *router.RequestContext) *router.ServiceResult {
	claims, err := sessionFromRequest(c, ctrl.cfg.Sessions)
	if err != nil {
		return router.OKResult(SessionStatusResponse{Authenticated: false}, "No active admin session")
	}

	return router.OKResult(SessionStatusResponse{
		Authenticated: true,
		Username:      claims.Subject,
	}, "Admin session active")
}

func (ctrl *AdminController) login(c *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(c)

	var req LoginRequest

	var err error
	if c.ContentType() == binding.MIMEJSON {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindWith(&req, binding.Form)
	}
	if err != nil {
		return router.BadRequestResult("Username and password are required.", nil)
	}

	if !ctrl.cfg.Authenticator.Verify(req.Username, req.Password) {
		logger.Warn("Admin login rejected", "client_ip", c.ClientIP())
		return router.AppErrorResult(apperrors.NewUnauthorizedError("Invalid username or password.", nil))
	}

	token, expiresAt, err := ctrl.cfg.Sessions.Issue(req.Username)
	if err != nil {
		logger.Error("Failed to issue admin session", "error", err)
		return router.InternalServerErrorResult("Unable to start an admin session.")
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.DefaultCookieName, token, int(ctrl.cfg.Sessions.TTL().Seconds()), "/", "", ctrl.cfg.SecureCookie, true)

	logger.Info("Admin logged in")

	return router.OKResult(LoginResponse{Username: req.Username, ExpiresAt: expiresAt}, "Welcome back.")
}

func (ctrl *AdminController) logout(c *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(c)

	if claims, err := sessionFromRequest(c, ctrl.cfg.Sessions); err == nil {
		if err := ctrl.cfg.Sessions.Revoke(c.Request.Context(), claims); err != nil {
			logger.Warn("Failed to revoke admin session", "error", err)
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.DefaultCookieName, "", -1, "/", "", ctrl.cfg.SecureCookie, true)

	return router.OKResult(nil, "Logged out.")
}

func (ctrl *AdminController) dashboard(c *router.RequestContext) *router.ServiceResult {
	ctx := c.Request.Context()

	current := models.DefaultFormOptions()
	if ctrl.cfg.Options != nil {
		current = ctrl.cfg.Options.Get(ctx)
	}

	response := DashboardResponse{
		Colleges:       current.Colleges,
		Courses:        current.Courses,
		StoreConnected: true,
	}

	if ctrl.cfg.Registrations != nil {
		total, err := ctrl.cfg.Registrations.Count(ctx)
		if err != nil {
			router.GetLogger(c).Warn("Dashboard count unavailable", "error", err)
			response.StoreConnected = false
		}
		response.TotalRegistrations = total
	}

	return router.OKResult(response, "Dashboard retrieved successfully")
}
