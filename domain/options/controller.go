package options

import (
	"github.com/akeren/event-registration/config/router"
	apperrors "github.com/akeren/event-registration/pkg/errors"
	"github.com/gin-gonic/gin/binding"
)

// NewOptionsController serves the session-gated option list editing endpoints.
func NewOptionsController(service OptionsService, gate router.MiddlewareFunc) *router.RESTController {
	return router.NewRESTController(
		"OptionsController",
		"/admin/options",
		func(rs *router.RouterService, c *router.RESTController) {
			if gate != nil {
				c.Use(gate)
			}

			rs.AddGetHandler(c, nil, "", getOptionsHandler(service))
			rs.AddPostHandler(c, nil, "", updateOptionHandler(service))
			rs.AddPostHandler(c, nil, "reorder", reorderOptionsHandler(service))
		},
	)
}

func getOptionsHandler(service OptionsService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		return router.OKResult(ToOptionsResponse(service.Get(ctx.Request.Context())), "Options retrieved successfully")
	}
}

func updateOptionHandler(service OptionsService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req UpdateOptionRequest

		var err error
		if ctx.ContentType() == binding.MIMEJSON {
			err = ctx.ShouldBindJSON(&req)
		} else {
			err = ctx.ShouldBindWith(&req, binding.Form)
		}
		if err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Please provide a valid value.", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.Update(ctx.Request.Context(), &req)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Options updated successfully.")
	}
}

func reorderOptionsHandler(service OptionsService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req ReorderOptionsRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.Reorder(ctx.Request.Context(), &req)
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.OKResult(response, "Options reordered successfully.")
	}
}
