package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/logistics/console/internal/interfaces/http/dto"
)

// SetupValidator makes validation errors name fields the way clients send
// them: the json tag for API bodies, the form tag for page posts. It also
// registers notblank, which rejects whitespace-only strings.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			switch name {
			case "-":
				return ""
			case "":
				continue
			default:
				return name
			}
		}
		return ""
	})
}

// ValidationDetails converts binding errors into field-level details.
// It returns nil when err is not a validation error.
func ValidationDetails(err error) []dto.ValidationDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, len(fieldErrs))
	for i, fe := range fieldErrs {
		details[i] = dto.ValidationDetail{Field: fe.Field(), Message: validationMessage(fe)}
	}
	return details
}

// bound messages by tag, %s is the tag parameter
var boundMessages = map[string]string{
	"gt":  "Must be greater than %s",
	"gte": "Must be greater than or equal to %s",
	"min": "Must be at least %s",
	"max": "Must be at most %s",
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "notblank":
		return "This field cannot be blank"
	}
	format, ok := boundMessages[fe.Tag()]
	if !ok {
		return "Invalid value"
	}
	msg := fmt.Sprintf(format, fe.Param())
	if fe.Tag() == "min" || fe.Tag() == "max" {
		switch fe.Kind() {
		case reflect.String:
			msg += " characters"
		case reflect.Slice:
			msg += " entries"
		}
	}
	return msg
}
