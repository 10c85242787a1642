package errors

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewValidationError("invalid", []string{"name"}), StatusBadRequest},
		{NewMalformedIdentifierError("bad id", nil), StatusBadRequest},
		{NewDuplicateError("dup", []string{"phone"}, nil), StatusConflict},
		{NewServiceUnavailableError("down", nil), StatusServiceUnavailable},
		{NewNotFoundError("missing", nil), StatusNotFound},
		{NewUnauthorizedError("bad credentials", nil), StatusUnauthorized},
		{NewNothingToExportError("empty"), StatusNotFound},
		{NewDatabaseError("boom", nil), StatusInternalServerError},
		{errors.New("plain"), StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(GetErrorType(tc.err), func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatusCode(tc.err))
		})
	}
}

func TestGetDetails_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewDuplicateError("dup", []string{"phone", "email"}, nil))

	assert.Equal(t, []string{"phone", "email"}, GetDetails(err))
	assert.True(t, IsType(err, ErrorTypeDuplicate))
	assert.Nil(t, GetDetails(errors.New("plain")))
}

func TestGetHumanReadableMessage_HidesInternalErrors(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetHumanReadableMessage(errors.New("socket closed")))
	assert.Equal(t, "store down", GetHumanReadableMessage(NewServiceUnavailableError("store down", errors.New("socket closed"))))
	assert.Equal(t, "An unexpected error occurred", GetHumanReadableMessage(NewDatabaseError("failed to insert registrant", nil)))
}

type formatterProbe struct {
	OptionType string `json:"option_type" binding:"required,oneof=college course"`
	Value      string `form:"value" validate:"required,max=5"`
	Plain      string `validate:"required"`
}

func TestFormatValidationErrors_UsesExternalNames(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")

	err := v.Struct(&formatterProbe{OptionType: "campus"})
	got := FormatValidationErrors(err, &formatterProbe{})
	assert.Equal(t, []ValidationErrorResponse{
		{Field: "option_type", Message: "Must be one of: college course"},
	}, got)

	v = validator.New()
	err = v.Struct(&formatterProbe{Value: "too long"})
	got = FormatValidationErrors(err, &formatterProbe{})
	assert.Equal(t, []ValidationErrorResponse{
		{Field: "value", Message: "Must not exceed 5 characters"},
		{Field: "Plain", Message: "This field is required"},
	}, got)
}

func TestFormatValidationErrors_NonFieldErrors(t *testing.T) {
	assert.Nil(t, FormatValidationErrors(nil, nil))
	assert.Nil(t, FormatValidationErrors(errors.New("EOF"), nil))

	_, numErr := strconv.Atoi("two")
	got := FormatValidationErrors(fmt.Errorf("bind: %w", numErr), nil)
	assert.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "two")
}
