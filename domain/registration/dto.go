package registration

import (
	"strings"
	"time"

	"github.com/akeren/event-registration/internal/models"
	"github.com/akeren/event-registration/pkg/constants"
)

// RegisterRequest is bound from a form post or a JSON body. Validation
// happens in the service so every reason is reported at once.
type RegisterRequest struct {
	Name    string `form:"name" json:"name" validate:"required"`
	College string `form:"college" json:"college" validate:"required"`
	Course  string `form:"course" json:"course" validate:"required"`
	Role    string `form:"role" json:"role" validate:"oneof=Student Faculty Volunteer"`
	Phone   string `form:"phone" json:"phone" validate:"mobile"`
	Email   string `form:"email" json:"email" validate:"omitempty,contains=@"`
}

func (r *RegisterRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.College = strings.TrimSpace(r.College)
	r.Course = strings.TrimSpace(r.Course)
	r.Role = strings.TrimSpace(r.Role)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type ListRegistrationsQuery struct {
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
	Search  string `form:"search"`
	College string `form:"college"`
}

type ExportQuery struct {
	Search  string `form:"search"`
	College string `form:"college"`
}

type RegistrantResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	College      string `json:"college"`
	Course       string `json:"course"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	CreatedAt    string `json:"created_at"`
	RegisteredOn string `json:"registered_on"`
}

type RegistrationPageResponse struct {
	Registrations []RegistrantResponse `json:"registrations"`
	Page          int                  `json:"page"`
	Limit         int                  `json:"limit"`
	Total         int64                `json:"total"`
	HasMore       bool                 `json:"has_more"`
}

type RegistrationFormResponse struct {
	Colleges []string `json:"colleges"`
	Courses  []string `json:"courses"`
	Roles    []string `json:"roles"`
}

type DeleteRegistrationResponse struct {
	ID      string `json:"id"`
	Deleted int64  `json:"deleted"`
}

// ========================================
// Mappers
// ========================================

func ToRegistrantModel(req *RegisterRequest, canonicalPhone string, createdAt time.Time) *models.Registrant {
	if req == nil {
		return nil
	}
	return &models.Registrant{
		Name:      req.Name,
		College:   req.College,
		Course:    req.Course,
		Role:      models.Role(req.Role),
		Phone:     canonicalPhone,
		Email:     req.Email,
		CreatedAt: createdAt.UTC(),
	}
}

func ToRegistrantResponse(r *models.Registrant, displayFormat func(time.Time) string) RegistrantResponse {
	return RegistrantResponse{
		ID:           r.ID.Hex(),
		Name:         r.Name,
		College:      r.College,
		Course:       r.Course,
		Role:         string(r.Role),
		Phone:        r.Phone,
		Email:        r.Email,
		CreatedAt:    r.CreatedAt.UTC().Format(constants.RFC3339DateTimeFormat),
		RegisteredOn: displayFormat(r.CreatedAt),
	}
}

func toRoleNames() []string {
	names := make([]string, 0, len(models.Roles))
	for _, role := range models.Roles {
		names = append(names, string(role))
	}
	return names
}
