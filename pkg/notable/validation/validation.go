// Package validation maps binding failures to the API's per-field error
// shape: {"errors": {"title": [{"code": "required", "message": "..."}]}}.
// All violations in a payload are reported together, not just the first.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Error codes surfaced to clients
const (
	CodeRequired  = "required"
	CodeMinLength = "min_length"
	CodeMaxLength = "max_length"
	CodeUnique    = "unique"
)

// FieldError describes one violation on one field
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors maps a field name to a non-empty list of violations
type Errors map[string][]FieldError

func init() {
	// Report fields under their JSON names rather than Go struct names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

// Add appends a violation for the given field
func (e Errors) Add(field, code, message string) {
	e[field] = append(e[field], FieldError{Code: code, Message: message})
}

// HasErrors reports whether any violation has been recorded
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// Map converts a gin binding error into per-field errors. The second return
// is false when err is not a validator error (e.g. malformed JSON), in which
// case the caller should fall back to a plain error response.
func Map(err error) (Errors, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	out := Errors{}
	for _, fe := range verrs {
		out.Add(fe.Field(), codeFor(fe), messageFor(fe))
	}
	return out, true
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func codeFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return CodeRequired
	case "min":
		return CodeMinLength
	case "max":
		return CodeMaxLength
	default:
		return fe.Tag()
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("Failed %s validation", fe.Tag())
	}
}
