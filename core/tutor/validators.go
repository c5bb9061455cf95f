package tutor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ajolotes/ajolotes/core"
)

var (
	roleTag  = "rol"
	roleText = "el rol debe ser Padre, Tutor o Maestro"

	domainTag  = "dominio"
	domainText = "el dominio del correo no está permitido"

	pwdLenTag  = "pwdlen"
	pwdLenText = fmt.Sprintf("la contraseña debe tener exactamente %d caracteres", PasswordLength)
)

// InitValidators registers the tutor validation tags.
// conf.Auth.EmailDomains, when not empty, restricts the accepted email domains.
func InitValidators(validate *validator.Validate, translator ut.Translator, conf *core.Config) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)
	core.RegisterTagError(roleTag, core.ErrBadRole)

	_ = validate.RegisterValidation(domainTag, newDomainValidation(conf.Auth.EmailDomains))
	core.RegisterCustomTranslation(validate, translator, domainTag, domainText)
	core.RegisterTagError(domainTag, core.ErrBadEmailDomain)

	_ = validate.RegisterValidation(pwdLenTag, pwdLenValidation)
	core.RegisterCustomTranslation(validate, translator, pwdLenTag, pwdLenText)
	core.RegisterTagError(pwdLenTag, core.ErrBadPasswordLength)
}

// Custom Validators

func roleValidation(fl validator.FieldLevel) bool {
	return IsRole(fl.Field().String())
}

func pwdLenValidation(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) == PasswordLength
}

func newDomainValidation(domains []string) validator.Func {
	allowed := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if d = core.CleanString(d, true /* lower */); d != "" {
			allowed[strings.TrimPrefix(d, "@")] = struct{}{}
		}
	}
	return func(fl validator.FieldLevel) bool {
		if len(allowed) == 0 {
			return true
		}
		_, ok := allowed[core.EmailDomain(fl.Field().String())]
		return ok
	}
}
