package options

import "github.com/akeren/event-registration/internal/models"

const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

type UpdateOptionRequest struct {
	OptionType string `form:"option_type" json:"option_type" binding:"required,oneof=college course"`
	Action     string `form:"action" json:"action" binding:"omitempty,oneof=add remove"`
	Value      string `form:"value" json:"value" binding:"required,max=255"`
}

type ReorderOptionsRequest struct {
	OptionType string   `json:"option_type" binding:"required,oneof=college course"`
	Order      []string `json:"order"`
}

type OptionsResponse struct {
	Colleges []string `json:"colleges"`
	Courses  []string `json:"courses"`
}

func ToOptionsResponse(opts models.FormOptions) OptionsResponse {
	return OptionsResponse{Colleges: opts.Colleges, Courses: opts.Courses}
}
