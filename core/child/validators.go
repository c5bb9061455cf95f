package child

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ajolotes/ajolotes/core"
)

var (
	genderTag  = "genero"
	genderText = fmt.Sprintf("el tipo de usuario debe ser %s o %s", GenderBoy, GenderGirl)

	pictureCountTag  = "figuras_num"
	pictureCountText = fmt.Sprintf("la contraseña debe tener exactamente %d animales", PictureLength)

	pictureTokensTag  = "figuras_validas"
	pictureTokensText = "la contraseña solo puede usar ajolote, borrego, oso y perro"
)

// InitValidators registers the child validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(genderTag, genderValidation)
	core.RegisterCustomTranslation(validate, translator, genderTag, genderText)
	core.RegisterTagError(genderTag, core.ErrBadGender)

	_ = validate.RegisterValidation(pictureCountTag, pictureCountValidation)
	core.RegisterCustomTranslation(validate, translator, pictureCountTag, pictureCountText)
	core.RegisterTagError(pictureCountTag, core.ErrBadPictureCount)

	_ = validate.RegisterValidation(pictureTokensTag, pictureTokensValidation)
	core.RegisterCustomTranslation(validate, translator, pictureTokensTag, pictureTokensText)
	core.RegisterTagError(pictureTokensTag, core.ErrBadPictureToken)
}

// Custom Validators

func genderValidation(fl validator.FieldLevel) bool {
	return IsGender(fl.Field().String())
}

func pictureCountValidation(fl validator.FieldLevel) bool {
	return len(ParsePicturePassword(fl.Field().String())) == PictureLength
}

func pictureTokensValidation(fl validator.FieldLevel) bool {
	for _, token := range ParsePicturePassword(fl.Field().String()) {
		if !IsAnimal(token) {
			return false
		}
	}
	return true
}
