// Package validate collects client-side form errors into one AppError so a
// form can be rejected before any request is sent.
package validate

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/apperror"
)

// FieldNames is the AppError field listing every failing form field.
const FieldNames = "fields"

// Errors accumulates failures for one form.
type Errors struct {
	form    string
	missing []string
	invalid []string
	reasons []string
}

// New starts a check for the named form.
func New(form string) *Errors {
	return &Errors{form: form}
}

// Required records field as missing when present is false.
func (e *Errors) Required(field string, present bool) *Errors {
	if !present {
		e.missing = append(e.missing, field)
	}
	return e
}

// NotBlank records field as missing when value is empty after trimming.
func (e *Errors) NotBlank(field, value string) *Errors {
	return e.Required(field, strings.TrimSpace(value) != "")
}

// Positive requires value > 0.
func (e *Errors) Positive(field string, value decimal.Decimal) *Errors {
	if !value.IsPositive() {
		e.fail(field, "must be greater than zero")
	}
	return e
}

// OneOf requires value to be one of allowed. Empty values are not checked.
func (e *Errors) OneOf(field, value string, allowed ...string) *Errors {
	if value == "" {
		return e
	}
	for _, a := range allowed {
		if value == a {
			return e
		}
	}
	e.fail(field, "must be one of "+strings.Join(allowed, ", "))
	return e
}

// Check records reason against field when ok is false.
func (e *Errors) Check(field string, ok bool, reason string) *Errors {
	if !ok {
		e.fail(field, reason)
	}
	return e
}

func (e *Errors) fail(field, reason string) {
	e.invalid = append(e.invalid, field)
	e.reasons = append(e.reasons, field+" "+reason)
}

// Err returns nil when nothing failed. Missing fields win over invalid ones.
func (e *Errors) Err() error {
	switch {
	case len(e.missing) > 0:
		return apperror.New(apperror.CodeRequiredField,
			apperror.WithMessage(strings.Join(e.missing, ", ")+" required"),
			apperror.WithContext(e.form),
			apperror.WithField(FieldNames, strings.Join(append(e.missing, e.invalid...), ",")),
		)
	case len(e.invalid) > 0:
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithMessage(strings.Join(e.reasons, "; ")),
			apperror.WithContext(e.form),
			apperror.WithField(FieldNames, strings.Join(e.invalid, ",")),
		)
	}
	return nil
}
