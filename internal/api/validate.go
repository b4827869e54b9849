package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"robot-factory-backend/internal/serial"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("serial", func(fl validator.FieldLevel) bool {
		return serial.Valid(fl.Field().String())
	})
	return v
}

// fieldErrors converts validator output into a field -> messages mapping.
// ok is false when err is not a validation failure.
func fieldErrors(err error) (errs map[string][]string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	errs = make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		errs[fe.Field()] = append(errs[fe.Field()], fieldMessage(fe))
	}
	return errs, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Обязательное поле."
	case "max":
		return fmt.Sprintf("Убедитесь, что это значение содержит не более %s символов (сейчас %d).", fe.Param(), len([]rune(fmt.Sprint(fe.Value()))))
	case "len":
		return fmt.Sprintf("Убедитесь, что это значение содержит ровно %s символов.", fe.Param())
	case "serial":
		return fmt.Sprintf("Серийный номер должен состоять ровно из %d цифр.", serial.Length)
	default:
		return fmt.Sprintf("Некорректное значение (%s).", fe.Tag())
	}
}
