package middleware

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// SanitizeString strips control characters (keeping newlines and tabs) and
// trims surrounding whitespace. Applied to free-text request fields before
// they reach the store.
func SanitizeString(input string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(input, ""))
}

// ValidatePayload runs struct-tag validation on a decoded request payload.
func ValidatePayload(v any) error {
	return validate.Struct(v)
}
