// Package schema is the single validation contract for notification requests.
// The server handler and the client form both evaluate the same rule table, so
// the two trust boundaries cannot drift apart.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"notify-gateway/internal/domain"
)

// NamePattern is the pattern names must match, as reported in messages.
const NamePattern = "/^[A-Za-z]+$/"

// ValidationError describes the first rule a request failed.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Rule binds a JSON field path to a validator tag. Value extracts the field
// from a request; ok is false when the rule does not apply (a nested field of
// an absent object).
type Rule struct {
	Field string
	Tag   string
	Value func(req domain.NotificationRequest) (v any, ok bool)
}

// Rules is evaluated top to bottom; only the first failure is reported.
var Rules = []Rule{
	{Field: "firstName", Tag: "required,alpha", Value: func(r domain.NotificationRequest) (any, bool) { return r.FirstName, true }},
	{Field: "lastName", Tag: "required,alpha", Value: func(r domain.NotificationRequest) (any, bool) { return r.LastName, true }},
	{Field: "email", Tag: "omitempty,email", Value: func(r domain.NotificationRequest) (any, bool) { return r.Email, true }},
	// phoneNumber is free-form and may be empty, so it has no rule.
	{Field: "supervisor", Tag: "required", Value: func(r domain.NotificationRequest) (any, bool) { return r.Supervisor, true }},
	{Field: "supervisor.id", Tag: "required", Value: supervisorField(func(s *domain.Supervisor) string { return s.ID })},
	{Field: "supervisor.name", Tag: "required", Value: supervisorField(func(s *domain.Supervisor) string { return s.Name })},
	{Field: "supervisor.phone", Tag: "required", Value: supervisorField(func(s *domain.Supervisor) string { return s.Phone })},
	{Field: "supervisor.identificationNumber", Tag: "required", Value: supervisorField(func(s *domain.Supervisor) string { return s.IdentificationNumber })},
}

func supervisorField(get func(*domain.Supervisor) string) func(domain.NotificationRequest) (any, bool) {
	return func(r domain.NotificationRequest) (any, bool) {
		if r.Supervisor == nil {
			return nil, false
		}
		return get(r.Supervisor), true
	}
}

var validate = validator.New()

// Validate checks req against Rules and returns a *ValidationError for the
// first violation.
func Validate(req domain.NotificationRequest) error {
	for _, rule := range Rules {
		v, ok := rule.Value(req)
		if !ok {
			continue
		}
		err := validate.Var(v, rule.Tag)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return fmt.Errorf("validate %s: %w", rule.Field, err)
		}
		return newValidationError(rule.Field, fieldErrs[0].Tag(), v)
	}
	return nil
}

func newValidationError(field, tag string, value any) *ValidationError {
	var msg string
	switch tag {
	case "required":
		msg = fmt.Sprintf("%q is required", field)
	case "alpha":
		msg = fmt.Sprintf("%q with value %q fails to match the required pattern: %s", field, value, NamePattern)
	case "email":
		msg = fmt.Sprintf("%q must be a valid email", field)
	default:
		msg = fmt.Sprintf("%q failed %s validation", field, tag)
	}
	return &ValidationError{Field: field, Rule: tag, Message: msg}
}

// Decode reads a JSON request body. Shape problems (wrong types, unknown keys,
// non-object bodies) are reported as validation errors so that callers see one
// message regardless of where the payload went wrong.
func Decode(r io.Reader) (domain.NotificationRequest, error) {
	var req domain.NotificationRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return domain.NotificationRequest{}, decodeError(err)
	}
	// The body must hold exactly one JSON value.
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return domain.NotificationRequest{}, decodeError(err)
	}
	return req, nil
}

var errTrailingData = errors.New("trailing data after JSON value")

// DecodeAndValidate runs Decode then Validate.
func DecodeAndValidate(r io.Reader) (domain.NotificationRequest, error) {
	req, err := Decode(r)
	if err != nil {
		return domain.NotificationRequest{}, err
	}
	if err := Validate(req); err != nil {
		return domain.NotificationRequest{}, err
	}
	return req, nil
}

func decodeError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return &ValidationError{Field: "value", Rule: "size", Message: "request body is too large"}
	case errors.Is(err, io.EOF):
		return &ValidationError{Field: "value", Rule: "required", Message: `"value" is required`}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "value"
		}
		if isObject(typeErr.Type) {
			return &ValidationError{Field: field, Rule: "object", Message: fmt.Sprintf("%q must be of type object", field)}
		}
		return &ValidationError{Field: field, Rule: "string", Message: fmt.Sprintf("%q must be a string", field)}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &ValidationError{Field: "value", Rule: "json", Message: "request body must be valid JSON"}
	}
	if field, ok := unknownField(err); ok {
		return &ValidationError{Field: field, Rule: "unknown", Message: fmt.Sprintf("%q is not allowed", field)}
	}
	return &ValidationError{Field: "value", Rule: "json", Message: "request body must be valid JSON"}
}

func isObject(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Map
}

// unknownField parses the `json: unknown field "x"` error produced by
// DisallowUnknownFields, which has no typed counterpart.
func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	field, uerr := strconv.Unquote(strings.TrimPrefix(msg, prefix))
	if uerr != nil {
		return "", false
	}
	return field, true
}
