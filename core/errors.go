package core

import "github.com/pkg/errors"

// Validation error kinds. Every FieldError carries one of them.
var (
	ErrEmptyField        = errors.New("empty field")
	ErrBadEmailFormat    = errors.New("bad email format")
	ErrBadEmailDomain    = errors.New("bad email domain")
	ErrBadPasswordLength = errors.New("bad password length")
	ErrBadRole           = errors.New("bad role")
	ErrBadGender         = errors.New("bad gender")
	ErrBadPictureCount   = errors.New("bad picture count")
	ErrBadPictureToken   = errors.New("bad picture token")
	ErrInvalidField      = errors.New("invalid field")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
	Err   error
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	}
	return ""
}

func (err ValidationError) Unwrap() error { return err.Err }

// Is reports whether target is the error of the ValidationError or of any of its fields.
func (err ValidationError) Is(target error) bool {
	if err.Err != nil && err.Err == target {
		return true
	}
	for _, fld := range err.Fields {
		if fld.Err == target {
			return true
		}
	}
	return false
}

// FieldMap returns field errors keyed by field name; the first error of a field wins.
func (err ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, fld := range err.Fields {
		if _, ok := m[fld.Field]; !ok {
			m[fld.Field] = fld.Error
		}
	}
	return m
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
