package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Ошибки по полям называем по json тегам.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages — сообщения для тегов валидации.
var fieldMessages = map[string]string{
	"required":           "the field '%s' is required",
	"required_without":   "the field '%s' is required when '%s' is empty",
	"bcp47_language_tag": "the field '%s' must be a language code",
	"min":                "the field '%s' must contain at least %s items",
	"max":                "the field '%s' must be no longer than %s",
}

// validateStruct проверяет структуру и возвращает ошибки по полям
// (ключ — json имя поля). nil, если ошибок нет.
func validateStruct(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"": err.Error()}
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[e.Field()] = fieldMessage(e)
	}
	return fields
}

func fieldMessage(e validator.FieldError) string {
	msg, ok := fieldMessages[e.Tag()]
	if !ok {
		return fmt.Sprintf("the field '%s' is invalid: %s", e.Field(), e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), strings.ToLower(e.Param()))
	}
	return fmt.Sprintf(msg, e.Field())
}

// decodeAndValidate читает JSON тело в dst и валидирует его.
// Возвращает false, если ответ с ошибкой уже отправлен.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid request body")
		return false
	}
	if fields := validateStruct(dst); fields != nil {
		ValidationFailed(w, fields)
		return false
	}
	return true
}
