// Package validation checks user input before it is sent to the backend.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// gstinPattern is the 15 character Indian GST identification number.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)

// Error maps form fields to the first message that applies to them.
type Error struct {
	Fields map[string]string `json:"errors"`
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message for a field, or "" when the field is valid.
func (e *Error) Field(name string) string {
	return e.Fields[name]
}

// messageFunc resolves the message for a failed rule. The form is passed so
// that messages can depend on other fields, such as the role.
type messageFunc func(fe validator.FieldError, form any) string

// Validator wraps the go-playground validator with the marketplace rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with custom rules and JSON field names.
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	_ = validate.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || gstinPattern.MatchString(value)
	})

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: validate}
}

// IsValidGSTIN reports whether value is a well-formed GST number.
func IsValidGSTIN(value string) bool {
	return gstinPattern.MatchString(value)
}

func (v *Validator) check(form any, messages messageFunc) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		msg := messages(fe, form)
		if msg == "" {
			msg = defaultMessage(fe)
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// IsEmail reports whether value is a well-formed e-mail address.
func (v *Validator) IsEmail(value string) bool {
	return v.validate.Var(value, "required,email") == nil
}
