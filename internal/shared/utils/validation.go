package utils

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/orris-inc/poolkeeper/internal/shared/errors"
)

// validatorInstance reports fields by their JSON names so request and fixture
// errors read the same as the payload the caller sent.
var validatorInstance = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
})

// Messages keyed by validator tag. %[1]s is the field, %[2]s the tag parameter.
var fieldMessages = map[string]string{
	"required": "%[1]s is required",
	"gt":       "%[1]s must be greater than %[2]s",
	"gte":      "%[1]s must be greater than or equal to %[2]s",
	"lt":       "%[1]s must be less than %[2]s",
	"lte":      "%[1]s must be less than or equal to %[2]s",
	"oneof":    "%[1]s must be one of [%[2]s]",
	"uuid":     "%[1]s must be a valid UUID",
	"gtfield":  "%[1]s must be after %[2]s",
	"len":      "%[1]s must be exactly %[2]s characters long",
}

// ValidateStruct runs the struct's validate tags and folds every failure into
// a single invalid_argument error.
func ValidateStruct(s any) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.NewInvalidArgumentError("Validation failed", err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.NewInvalidArgumentError("Validation failed", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s %s characters long", fe.Field(), bound, fe.Param())
		}
		return fmt.Sprintf("%s must be %s %s", fe.Field(), bound, fe.Param())
	}
	if tmpl, ok := fieldMessages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed validation for '%s'", fe.Field(), fe.Tag())
}
