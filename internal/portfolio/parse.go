package portfolio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMalformed reports a payload that is not a single well-formed JSON
// object with only known fields.
var ErrMalformed = errors.New("malformed portfolio document")

// Problem is one shape mismatch found at the boundary.
type Problem struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (p Problem) String() string {
	return p.Field + ": " + p.Rule
}

// ValidationError lists every shape mismatch in a document.
type ValidationError struct {
	Problems []Problem `json:"problems"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "invalid portfolio document: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the problems.
func (e *ValidationError) Has(field string) bool {
	for _, p := range e.Problems {
		if p.Field == field {
			return true
		}
	}
	return false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse decodes and validates a Portfolio Document. It returns either a
// typed document or an error: ErrMalformed for syntax problems and unknown
// fields, *ValidationError listing every absent, null or mistyped field.
// Empty strings and empty arrays are valid.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var (
		wire     wireDocument
		problems []Problem
	)
	if err := dec.Decode(&wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		// The decoder keeps only its first type error and drops slice
		// indices from the path, so walk the document for all of them.
		problems, err = mistyped(data)
		if err != nil {
			return nil, err
		}
		if len(problems) == 0 {
			problems = []Problem{{Field: typeErr.Field, Rule: "type " + typeErr.Value}}
		}
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}

	if err := validate.Struct(&wire); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validate portfolio document: %w", err)
		}
		typed := len(problems)
	next:
		for _, fe := range fieldErrs {
			field := fieldPath(fe.Namespace())
			for _, p := range problems[:typed] {
				if covers(p.Field, field) {
					continue next
				}
			}
			problems = append(problems, Problem{Field: field, Rule: fe.Tag()})
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return wire.document(), nil
}

func mistyped(data []byte) ([]Problem, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return typeProblems("", reflect.TypeOf(wireDocument{}), v), nil
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}
