package registration

import (
	"context"
	"net/http"
	"time"

	"github.com/akeren/event-registration/config/router"
	"github.com/akeren/event-registration/internal/docstore"
	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/internal/models"
	"github.com/akeren/event-registration/pkg/constants"
	apperrors "github.com/akeren/event-registration/pkg/errors"
	"github.com/akeren/event-registration/pkg/factory"
	"github.com/akeren/event-registration/pkg/ratelimit"
	"github.com/gin-gonic/gin/binding"
)

// OptionsProvider supplies the current college and course lists.
type OptionsProvider interface {
	Get(ctx context.Context) models.FormOptions
}

type ControllerConfig struct {
	// Service, when set, is shared instead of building one per controller.
	Service     RegistrationService
	Store       docstore.Database
	Logger      *log.Logger
	Cache       factory.Cache
	Options     OptionsProvider
	Gate        router.MiddlewareFunc
	Location    *time.Location
	ReportTitle string
}

func newService(rs *router.RouterService, cfg ControllerConfig) RegistrationService {
	if cfg.Service != nil {
		return cfg.Service
	}
	repository := NewRegistrationRepository(cfg.Store)
	return NewRegistrationService(cfg.Logger, repository, ServiceOptions{
		Location:    cfg.Location,
		ReportTitle: cfg.ReportTitle,
		Registerer:  rs.Registerer(),
	})
}

// NewRegistrationController serves the public registration form.
func NewRegistrationController(cfg ControllerConfig) *router.RESTController {
	return router.NewRESTController(
		"RegistrationController",
		"/register",
		func(rs *router.RouterService, c *router.RESTController) {
			service := newService(rs, cfg)

			submissionLimiter := createRegistrationRateLimiter(cfg)

			rs.AddGetHandler(c, nil, "", registrationFormHandler(cfg.Options))
			rs.AddPostHandler(c, submissionLimiter, "", registerHandler(service))
		},
	)
}

// NewAdminRegistrationController serves the session-gated admin listing,
// deletion and export endpoints.
func NewAdminRegistrationController(cfg ControllerConfig) *router.RESTController {
	return router.NewRESTController(
		"AdminRegistrationController",
		"/admin",
		func(rs *router.RouterService, c *router.RESTController) {
			service := newService(rs, cfg)

			if cfg.Gate != nil {
				c.Use(cfg.Gate)
			}

			rs.AddGetHandler(c, nil, "api/registrations", listRegistrationsHandler(service))
			rs.AddPostHandler(c, nil, "registrations/:id/delete", deleteRegistrationHandler(service))
			rs.AddGetHandler(c, nil, "export/excel", exportHandler(service, ExportFormatExcel))
			rs.AddGetHandler(c, nil, "export/pdf", exportHandler(service, ExportFormatPDF))
		},
	)
}

func createRegistrationRateLimiter(cfg ControllerConfig) ratelimit.RateLimiter {
	var logger ratelimit.Logger
	if cfg.Logger != nil {
		logger = cfg.Logger
	}
	return factory.NewLimiterFactory(cfg.Cache, logger).Limiter(constants.RegistrationSubmissionsPerMinute, time.Minute)
}

func registrationFormHandler(options OptionsProvider) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		current := models.DefaultFormOptions()
		if options != nil {
			current = options.Get(ctx.Request.Context())
		}

		return router.OKResult(RegistrationFormResponse{
			Colleges: current.Colleges,
			Courses:  current.Courses,
			Roles:    toRoleNames(),
		}, "Registration form retrieved successfully")
	}
}

func registerHandler(service RegistrationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req RegisterRequest

		if err := bindRequest(ctx, &req); err != nil {
			logger.Error("Failed to bind request", "error", err)
			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.Register(ctx.Request.Context(), &req)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return &router.ServiceResult{
			StatusCode: http.StatusCreated,
			Data:       response,
			Message:    "Jai Sri Krishna! Your registration is confirmed.",
		}
	}
}

func listRegistrationsHandler(service RegistrationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var query ListRegistrationsQuery
		if err := ctx.ShouldBindQuery(&query); err != nil {
			validationErrors := apperrors.FormatValidationErrors(err, &query)
			return router.BadRequestResult("Invalid query parameters", validationErrors)
		}

		response, err := service.List(ctx.Request.Context(), &query)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Registrations retrieved successfully")
	}
}

func deleteRegistrationHandler(service RegistrationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.Delete(ctx.Request.Context(), ctx.Param("id"))
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Registration deleted successfully")
	}
}

func exportHandler(service RegistrationService, format ExportFormat) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var query ExportQuery
		if err := ctx.ShouldBindQuery(&query); err != nil {
			return router.BadRequestResult("Invalid query parameters", nil)
		}

		doc, err := service.Export(ctx.Request.Context(), format, &query)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.FileResult(doc.Filename, doc.ContentType, doc.Body)
	}
}

// bindRequest accepts JSON bodies and form posts alike.
func bindRequest(ctx *router.RequestContext, req *RegisterRequest) error {
	if ctx.ContentType() == binding.MIMEJSON {
		return ctx.ShouldBindJSON(req)
	}
	return ctx.ShouldBindWith(req, binding.Form)
}
