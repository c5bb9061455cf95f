package tutor

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/ajolotes/ajolotes/core"
)

// Roles
const (
	RoleParent  = "Padre"
	RoleTutor   = "Tutor"
	RoleTeacher = "Maestro"
)

// PasswordLength is the exact number of characters of a tutor password.
const PasswordLength = 6

var (
	AllRoles = []string{RoleParent, RoleTutor, RoleTeacher}

	Roles = []Role{
		{Name: "Padre/Madre", Value: RoleParent},
		{Name: "Tutor", Value: RoleTutor},
		{Name: "Maestro", Value: RoleTeacher},
	}

	roleAliases = map[string]string{
		"padre":       RoleParent,
		"madre":       RoleParent,
		"padre/madre": RoleParent,
		"parent":      RoleParent,
		"tutor":       RoleTutor,
		"maestro":     RoleTeacher,
		"maestra":     RoleTeacher,
		"teacher":     RoleTeacher,
	}
)

// NormalizeRole maps a submitted role (case-insensitive, including aliases) to its canonical value.
func NormalizeRole(role string) (string, bool) {
	r, ok := roleAliases[core.CleanString(role, true /* lower */)]
	return r, ok
}

func IsRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Tutor struct {
	ID           int64  `db:"id_tutor" json:"id"`
	Role         string `db:"rol" json:"rol"`
	Names        string `db:"nombres" json:"nombres"`
	Surnames     string `db:"apellidos" json:"apellidos"`
	Email        string `db:"correo" json:"correo"`
	PasswordHash []byte `db:"password" json:"-"`
}

func (t *Tutor) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Tutor) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

func (t Tutor) FullName() string {
	return strings.TrimSpace(t.Names + " " + t.Surnames)
}

// NewTutor contains information needed to register a new Tutor.
type NewTutor struct {
	Names    string `form:"nombres" validate:"notblank"`
	Surnames string `form:"apellidos" validate:"notblank"`
	Email    string `form:"correo" validate:"notblank,correo,dominio"`
	Password string `form:"password" validate:"notblank,pwdlen"`
	Role     string `form:"rol" validate:"notblank,rol"`
}

func (nt *NewTutor) Validate(validate *validator.Validate, translator ut.Translator) error {
	nt.Names = core.CleanString(nt.Names)
	nt.Surnames = core.CleanString(nt.Surnames)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Password = core.CleanString(nt.Password)
	if role, ok := NormalizeRole(nt.Role); ok {
		nt.Role = role
	}
	return core.ValidateStruct(validate, translator, nt)
}

// UpdateTutor defines what information may be provided to modify an existing Tutor.
// Blank fields keep their current value.
type UpdateTutor struct {
	Names    string `form:"nombres"`
	Surnames string `form:"apellidos"`
	Email    string `form:"correo" validate:"omitempty,correo,dominio"`
	Password string `form:"password" validate:"omitempty,pwdlen"`
	Role     string `form:"rol" validate:"omitempty,rol"`
}

func (uu *UpdateTutor) Validate(orig Tutor, validate *validator.Validate, translator ut.Translator) error {
	uu.Names = orDefault(core.CleanString(uu.Names), orig.Names)
	uu.Surnames = orDefault(core.CleanString(uu.Surnames), orig.Surnames)
	uu.Email = orDefault(core.CleanString(uu.Email, true /* lower */), orig.Email)
	uu.Password = core.CleanString(uu.Password)
	uu.Role = orDefault(core.CleanString(uu.Role), orig.Role)
	if role, ok := NormalizeRole(uu.Role); ok {
		uu.Role = role
	}
	return core.ValidateStruct(validate, translator, uu)
}

func orDefault(val, def string) string {
	if val != "" {
		return val
	}
	return def
}

type GetFilter struct {
	ID    int64
	Email string
}
