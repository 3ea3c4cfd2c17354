// Package validation wraps go-playground/validator for service inputs.
package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"barberbook/backend/internal/domain"
)

type Error struct {
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

func Errorf(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("name"); name != "" {
			return name
		}
		return f.Name
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseClock(fl.Field().String())
		return err == nil
	})
	return v
}

// Check runs struct validation and reports the first failure as a *Error.
func Check(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return Errorf("%s is required", fe.Field())
	case "date":
		return Errorf("%s must be a YYYY-MM-DD date", fe.Field())
	case "clock":
		return Errorf("%s must be an HH:MM time", fe.Field())
	case "oneof":
		return Errorf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return Errorf("%s is invalid", fe.Field())
	}
}
