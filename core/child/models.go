package child

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/ajolotes/ajolotes/core"
)

// Genders
const (
	GenderBoy  = "Ajolotito"
	GenderGirl = "Ajolotita"
)

// Picture tokens
const (
	AnimalAxolotl = "ajolote"
	AnimalSheep   = "borrego"
	AnimalBear    = "oso"
	AnimalDog     = "perro"
)

const (
	// PictureLength is the exact number of tokens of a picture-password.
	PictureLength = 4

	// MaxBatchSize is the maximum number of children registered at once.
	MaxBatchSize = 10
)

var (
	AllGenders = []string{GenderBoy, GenderGirl}
	AllAnimals = []string{AnimalAxolotl, AnimalSheep, AnimalBear, AnimalDog}
)

func IsGender(g string) bool {
	return g == GenderBoy || g == GenderGirl
}

func IsAnimal(a string) bool {
	for _, animal := range AllAnimals {
		if a == animal {
			return true
		}
	}
	return false
}

// ParsePicturePassword splits a comma separated picture-password, trimming tokens and dropping empty ones.
func ParsePicturePassword(s string) []string {
	parts := strings.Split(s, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// CanonicalPicturePassword rejoins the parsed tokens of s.
func CanonicalPicturePassword(s string) string {
	return strings.Join(ParsePicturePassword(s), ",")
}

type Child struct {
	ID          int64  `db:"id_nino" json:"id"`
	TutorID     int64  `db:"id_tutor" json:"id_tutor"`
	Gender      string `db:"genero" json:"genero"`
	Names       string `db:"nombres" json:"nombres"`
	Surnames    string `db:"apellidos" json:"apellidos"`
	PictureHash []byte `db:"password_figuras" json:"-"`
}

// SetPicturePassword hashes the canonical form of pwd.
func (c *Child) SetPicturePassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(CanonicalPicturePassword(pwd)), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PictureHash = hash
	return nil
}

func (c *Child) CheckPicturePassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(c.PictureHash, []byte(CanonicalPicturePassword(pwd)))
}

func (c Child) FullName() string {
	return strings.TrimSpace(c.Names + " " + c.Surnames)
}

// NewChild contains information needed to register a new Child.
type NewChild struct {
	Names           string `form:"nombre" validate:"notblank"`
	Surnames        string `form:"apellidos" validate:"notblank"`
	Gender          string `form:"tipo_usuario" validate:"notblank,genero"`
	PicturePassword string `form:"contraseña" validate:"notblank,figuras_num,figuras_validas"`

	// Index is the position of the entry in the submitted form (nombre_<Index>, ...).
	Index int `form:"-"`
}

func (nc *NewChild) clean() {
	nc.Names = core.CleanString(nc.Names)
	nc.Surnames = core.CleanString(nc.Surnames)
	nc.Gender = core.CleanString(nc.Gender)
	nc.PicturePassword = CanonicalPicturePassword(nc.PicturePassword)
}

// Validate checks nc. fieldSuffix, when given, is appended to the reported field names.
func (nc *NewChild) Validate(validate *validator.Validate, translator ut.Translator, fieldSuffix ...string) error {
	nc.clean()
	return core.ValidateStruct(validate, translator, nc, fieldSuffix...)
}

// Credentials is what a child submits to log in.
type Credentials struct {
	Names           string `form:"nombre" validate:"notblank"`
	Surnames        string `form:"primer_apellido-y-segundo-apellido" validate:"notblank"`
	PicturePassword string `form:"password_animales" validate:"notblank,figuras_num,figuras_validas"`
}

func (cr *Credentials) Validate(validate *validator.Validate, translator ut.Translator) error {
	cr.Names = core.CleanString(cr.Names)
	cr.Surnames = core.CleanString(cr.Surnames)
	cr.PicturePassword = CanonicalPicturePassword(cr.PicturePassword)
	return core.ValidateStruct(validate, translator, cr)
}
