// Package validation holds the custom binding rules shared by request DTOs.
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// PasswordMinLength is the shortest password accepted at registration.
const PasswordMinLength = 8

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// StrongPassword reports whether s is long enough and mixes letters and digits.
func StrongPassword(s string) bool {
	if len(s) < PasswordMinLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		hasLetter = hasLetter || unicode.IsLetter(r)
		hasDigit = hasDigit || unicode.IsDigit(r)
	}
	return hasLetter && hasDigit
}

// CurrencyCode reports whether s looks like an ISO 4217 code.
func CurrencyCode(s string) bool {
	return currencyPattern.MatchString(s)
}

// NotBlank reports whether s has any non-space content.
func NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

func stringRule(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		return fn(fl.Field().String())
	}
}

// Register adds the "password", "currency" and "notblank" tags to v and makes
// field errors report JSON names.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	rules := map[string]func(string) bool{
		"password": StrongPassword,
		"currency": CurrencyCode,
		"notblank": NotBlank,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, stringRule(fn)); err != nil {
			return err
		}
	}
	return nil
}

// RegisterWithGin installs the rules on gin's default binding validator.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return Register(v)
}
