package core

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/pkg/errors"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "este campo es obligatorio"

	emailTag  = "correo"
	emailText = "el correo debe estar en minúsculas, sin espacios y con la forma usuario@dominio.ext"

	requiredTag = "required"

	tagErrorsMu sync.RWMutex
	tagErrors   = map[string]error{
		requiredTag: ErrEmptyField,
		notBlankTag: ErrEmptyField,
		emailTag:    ErrBadEmailFormat,
	}
)

// NewTranslator returns the Spanish translator used for validation messages.
func NewTranslator() ut.Translator {
	_es := es.New()
	uni := ut.New(_es, _es)
	translator, _ := uni.GetTranslator("es")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = es_translations.RegisterDefaultTranslations(validate, translator)

	// Use form tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, validators.NotBlank)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(emailTag, emailValidation)
	RegisterCustomTranslation(validate, translator, emailTag, emailText)

	RegisterCustomTranslation(validate, translator, requiredTag, notBlankText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// RegisterTagError associates a validation tag with the error kind reported in FieldError.Err.
func RegisterTagError(tag string, err error) {
	tagErrorsMu.Lock()
	defer tagErrorsMu.Unlock()
	tagErrors[tag] = err
}

func tagError(tag string) error {
	tagErrorsMu.RLock()
	defer tagErrorsMu.RUnlock()
	if err, ok := tagErrors[tag]; ok {
		return err
	}
	return ErrInvalidField
}

// ValidateStruct validates s and converts validator errors into a *ValidationError.
// fieldSuffix, when given, is appended to every reported field name (e.g. "_2").
func ValidateStruct(validate *validator.Validate, translator ut.Translator, s interface{}, fieldSuffix ...string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return errors.Wrap(err, "validating struct")
	}
	return NewValidationError(nil, FieldErrors(vErrs, translator, fieldSuffix...)...)
}

// FieldErrors translates validator errors into FieldErrors.
func FieldErrors(vErrs validator.ValidationErrors, translator ut.Translator, fieldSuffix ...string) []FieldError {
	var suffix string
	if len(fieldSuffix) > 0 {
		suffix = fieldSuffix[0]
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		msg := vErr.Error()
		if translator != nil {
			msg = vErr.Translate(translator)
		}
		flds = append(flds, FieldError{
			Field: vErr.Field() + suffix,
			Error: msg,
			Err:   tagError(vErr.Tag()),
		})
	}
	return flds
}

// Custom Global Validators

// emailValidation accepts lowercase addresses with no whitespace, a single "@" and a "." in the domain part.
func emailValidation(fl validator.FieldLevel) bool {
	return IsEmail(fl.Field().String())
}

func IsEmail(s string) bool {
	if s == "" || s != strings.ToLower(s) || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") {
		return false
	}
	domain := s[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// EmailDomain returns the part of email after "@".
func EmailDomain(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return email[at+1:]
	}
	return ""
}
