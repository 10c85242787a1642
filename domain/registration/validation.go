package registration

import (
	"errors"

	"github.com/akeren/event-registration/pkg/phone"
	"github.com/go-playground/validator/v10"
)

// reasonsByField holds the user-facing message for each failing field.
var reasonsByField = map[string]string{
	"Name":    "Please enter your full name.",
	"College": "Please select your college.",
	"Course":  "Please select your course.",
	"Role":    "Please select a valid role (Student, Faculty or Volunteer).",
	"Phone":   "Please provide a valid 10-digit mobile number.",
	"Email":   "Please provide a valid email address.",
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return phone.IsValid(fl.Field().String())
	})
	return v
}

// validationReasons returns every failing rule, in field declaration order.
func validationReasons(v *validator.Validate, req *RegisterRequest) []string {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{"The registration could not be validated."}
	}

	reasons := make([]string, 0, len(fieldErrors))
	seen := make(map[string]bool, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := fe.StructField()
		if seen[field] {
			continue
		}
		seen[field] = true

		if reason, ok := reasonsByField[field]; ok {
			reasons = append(reasons, reason)
		}
	}

	return reasons
}
