// Package apperror holds the typed failures shared by every catalog domain.
// Handlers translate them to HTTP statuses in one place (response.HandleError).
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	CodeUnique   = "unique"
	CodeNotFound = "does_not_exist"
	CodeInvalid  = "invalid"
	CodeRequired = "required"
	CodeGuard    = "guard"
)

// MsgInvalidChoice rejects a list filter that names no existing record.
const MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."

// FieldError is a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// NotFoundError: the addressed entity does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
}

func NotFound(resource string, id int64) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError carries every field that failed. Guard violations and
// conflicts detected at commit are reported the same way.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func Invalid(field, code, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message, Code: code}}}
}

// InvalidChoice rejects value of a multi-valued list filter.
func InvalidChoice(field string, value int64) error {
	return Invalid(field, CodeInvalid,
		fmt.Sprintf("Select a valid choice. %d is not one of the available choices.", value))
}

// RenameField reports the failures of err on field from under field to.
// err is returned as is when it carries no failure on from.
func RenameField(err error, from, to string) error {
	var ve *ValidationError
	if !errors.As(err, &ve) || !ve.Has(from) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, len(ve.Fields))}
	copy(out.Fields, ve.Fields)
	for i := range out.Fields {
		if out.Fields[i].Field == from {
			out.Fields[i].Field = to
		}
	}
	return out
}

// Guard rejects a delete that would orphan related records.
func Guard(message string) error {
	return Invalid("detail", CodeGuard, message)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FromValidation converts ozzo-validation errors into a ValidationError.
// Internal validator failures and unrelated errors are returned unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}

	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &ValidationError{}
	for _, k := range keys {
		fe := errs[k]
		if fe == nil {
			continue
		}
		code := CodeInvalid
		message := fe.Error()
		var vErr validation.Error
		if errors.As(fe, &vErr) {
			code = vErr.Code()
			message = vErr.Message()
		}
		out.Fields = append(out.Fields, FieldError{Field: k, Message: message, Code: code})
	}
	if len(out.Fields) == 0 {
		return nil
	}
	return out
}
