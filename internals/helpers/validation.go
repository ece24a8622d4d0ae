package helper

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	esTranslations "github.com/go-playground/validator/v10/translations/es"
	"github.com/gofiber/fiber/v2"
)

var (
	validatorOnce sync.Once
	sharedValid   *validator.Validate
	sharedTrans   ut.Translator
)

// Validator returns the shared validator: json tag names + Spanish messages.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return IsHHMM(fl.Field().String())
		})

		locale := es.New()
		uni := ut.New(locale, locale)
		trans, _ := uni.GetTranslator("es")
		_ = esTranslations.RegisterDefaultTranslations(v, trans)
		_ = v.RegisterTranslation("hhmm", trans,
			func(t ut.Translator) error { return t.Add("hhmm", "{0} debe tener formato HH:mm", true) },
			func(t ut.Translator, fe validator.FieldError) string {
				s, _ := t.T("hhmm", fe.Field())
				return s
			})

		sharedValid = v
		sharedTrans = trans
	})
	return sharedValid
}

// FieldErrors flattens validator errors to {field: [messages]}.
// Nested fields keep their path without the root struct name (newStudent.firstName).
func FieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = []string{err.Error()}
		return out
	}
	Validator()
	for _, fe := range ve {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		out[key] = append(out[key], fe.Translate(sharedTrans))
	}
	return out
}

// ValidateStruct runs the shared validator.
func ValidateStruct(dst any) map[string][]string {
	if err := Validator().Struct(dst); err != nil {
		return FieldErrors(err)
	}
	return nil
}

// BindAndValidate parses the body into dst and validates it.
// On failure it has already written the error response; callers return the error as is.
func BindAndValidate[T any](c *fiber.Ctx, dst *T) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, JsonError(c, fiber.StatusBadRequest, "payload inválido: "+err.Error())
	}
	if fe := ValidateStruct(dst); fe != nil {
		return false, JsonValidationError(c, fe)
	}
	return true, nil
}

// IsHHMM checks zero-padded 24h "HH:mm".
func IsHHMM(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h < 24 && m < 60
}
