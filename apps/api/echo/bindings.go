package echoapi

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
)

// child registration form fields, suffixed with _<N> per child
const (
	fieldChildNames    = "nombre"
	fieldChildSurnames = "apellidos"
	fieldChildGender   = "tipo_usuario"
	fieldChildPicture  = "contraseña"
)

// bindChildren reads the children of a registration form.
// Fields are indexed (nombre_1, apellidos_1, ...) or, failing that, repeated (nombre, nombre, ...).
func bindChildren(form url.Values) []child.NewChild {
	var indices []int
	for k := range form {
		if idx, ok := childIndex(k); ok {
			indices = append(indices, idx)
		}
	}

	if len(indices) > 0 {
		sort.Ints(indices)
		batch := make([]child.NewChild, 0, len(indices))
		for _, idx := range indices {
			sfx := "_" + strconv.Itoa(idx)
			batch = append(batch, child.NewChild{
				Names:           form.Get(fieldChildNames + sfx),
				Surnames:        form.Get(fieldChildSurnames + sfx),
				Gender:          form.Get(fieldChildGender + sfx),
				PicturePassword: form.Get(fieldChildPicture + sfx),
				Index:           idx,
			})
		}
		return batch
	}

	names := form[fieldChildNames]
	batch := make([]child.NewChild, 0, len(names))
	for i := range names {
		batch = append(batch, child.NewChild{
			Names:           names[i],
			Surnames:        nth(form[fieldChildSurnames], i),
			Gender:          nth(form[fieldChildGender], i),
			PicturePassword: nth(form[fieldChildPicture], i),
			Index:           i + 1,
		})
	}
	return batch
}

// childIndex parses the N of a nombre_N key. N must be written canonically and be at least 1,
// so each child is bound once (nombre_01 is not nombre_1).
func childIndex(key string) (int, bool) {
	sfx := strings.TrimPrefix(key, fieldChildNames+"_")
	if sfx == key {
		return 0, false
	}
	idx, err := strconv.Atoi(sfx)
	if err != nil || idx < 1 || strconv.Itoa(idx) != sfx {
		return 0, false
	}
	return idx, true
}

func nth(vals []string, i int) string {
	if i < len(vals) {
		return vals[i]
	}
	return ""
}

// formValues flattens a submitted form, leaving out secrets, to refill it.
func formValues(form url.Values, secret ...string) map[string]string {
	vals := make(map[string]string, len(form))
	for k, v := range form {
		if len(v) > 0 {
			vals[k] = v[0]
		}
	}
	for _, k := range secret {
		delete(vals, k)
	}
	return vals
}

// AdminLoginRequest is what a tutor submits to see their profile.
type AdminLoginRequest struct {
	Email    string `form:"correo" validate:"notblank,correo"`
	Password string `form:"contraseña" validate:"notblank"`
}

func (lr *AdminLoginRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	lr.Password = core.CleanString(lr.Password)
	return core.ValidateStruct(validate, translator, lr)
}
