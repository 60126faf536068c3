// Package validation registers domain rules on gin's validator and turns
// binding failures into field-level messages.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Engine returns the validator gin uses for request binding.
func Engine() (*validator.Validate, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v, nil
}

var enumTags sync.Map

// RegisterEnum adds a tag that accepts only the given string values.
// Empty values pass so the tag composes with omitempty and required.
func RegisterEnum(tag string, allowed ...string) error {
	v, err := Engine()
	if err != nil {
		return err
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	enumTags.Store(tag, struct{}{})
	return v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, ok := set[s]
		return ok
	})
}

// Details maps validation failures to field -> message. Other errors are
// returned as their message.
func Details(err error) interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[toSnake(fe.Field())] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	if _, ok := enumTags.Load(fe.Tag()); ok {
		return fmt.Sprintf("%q is not a valid value", fe.Value())
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gtefield":
		return "must be greater than or equal to " + toSnake(fe.Param())
	case "url":
		return "must be a valid URL"
	case "datetime":
		return "must match " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// toSnake converts a Go field name to snake case, keeping acronyms together
// so EventID becomes event_id.
func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if isUpper(r) {
			if i > 0 && (!isUpper(runes[i-1]) || (i+1 < len(runes) && !isUpper(runes[i+1]))) {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
