package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/utilitrack/backend/internal/interfaces/http/dto"
)

// SetupValidator makes validation errors report JSON (or form) field names
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			name, _, _ = strings.Cut(fld.Tag.Get("form"), ",")
		}
		return name
	})
}

// fixed messages; tags with a parameter are handled in validationMessage
var tagMessages = map[string]string{
	"required":      "This field is required",
	"required_if":   "This field is required",
	"required_with": "This field is required",
	"email":         "Invalid email format",
	"uuid":          "Invalid UUID format",
	"e164":          "Invalid phone number format",
	"numeric":       "Must be numeric",
	"alphanum":      "Must be alphanumeric",
}

func validationMessage(e validator.FieldError) string {
	if msg, ok := tagMessages[e.Tag()]; ok {
		return msg
	}
	unit := ""
	if e.Kind() == reflect.String {
		unit = " characters"
	}
	switch e.Tag() {
	case "min":
		return "Must be at least " + e.Param() + unit
	case "max":
		return "Must be at most " + e.Param() + unit
	case "len":
		return "Must be exactly " + e.Param() + unit
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lt":
		return "Must be less than " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "datetime":
		return "Must be a date in " + e.Param() + " format"
	}
	return "Invalid value"
}

// validationCode classifies a failed tag into one of the ERR_VALIDATION_* codes
func validationCode(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if", "required_with":
		return dto.ErrCodeValidationRequired
	case "min", "max", "len":
		if e.Kind() == reflect.String {
			return dto.ErrCodeValidationLength
		}
		return dto.ErrCodeValidationRange
	case "gt", "gte", "lt", "lte", "oneof":
		return dto.ErrCodeValidationRange
	}
	return dto.ErrCodeValidationFormat
}

// FormatValidationErrors turns binding errors into the ERR_VALIDATION envelope
// with one detail per failed field.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details = make([]dto.ValidationDetail, 0, len(fieldErrs))
		for _, e := range fieldErrs {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: validationMessage(e),
				Code:    validationCode(e),
			})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 validation response
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader(HeaderRequestID)
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
}
