package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their serialized name (json, then yaml) so
// messages match what callers actually wrote.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// FieldError describes one failed constraint.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", f.Field, f.Rule, f.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", f.Field, f.Rule))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// ValidateEdge checks the struct-level invariants of an edge before it is
// written: required IDs, no self-reference, quantity >= 1, sort order >= 0.
func ValidateEdge(e ComponentEdge) error {
	return translate(validate.Struct(e))
}

// ValidatePatch checks an EdgePatch.
func ValidatePatch(p EdgePatch) error {
	return translate(validate.Struct(p))
}

// ValidateStruct validates any struct carrying `validate` tags.
// Used by packages that share this validator instance (config, manifest).
func ValidateStruct(v any) error {
	return translate(validate.Struct(v))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}
