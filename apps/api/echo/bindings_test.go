package echoapi

import (
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
)

func TestBindChildren(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want []child.NewChild
	}{
		{
			name: "indexed, sorted by index",
			form: url.Values{
				"nombre_2": {"Ana"}, "apellidos_2": {"López"}, "tipo_usuario_2": {"Ajolotita"}, "contraseña_2": {"oso,oso,oso,oso"},
				"nombre_1": {"Lucas"}, "apellidos_1": {"López"}, "tipo_usuario_1": {"Ajolotito"},
				"nombre_x": {"ignorado"},
			},
			want: []child.NewChild{
				{Names: "Lucas", Surnames: "López", Gender: "Ajolotito", Index: 1},
				{Names: "Ana", Surnames: "López", Gender: "Ajolotita", PicturePassword: "oso,oso,oso,oso", Index: 2},
			},
		},
		{
			name: "non canonical and zero indices are ignored",
			form: url.Values{
				"nombre_1":     {"Lucas"},
				"apellidos_1":  {"López"},
				"nombre_01":    {"Lucas"},
				"apellidos_01": {"López"},
				"nombre_+1":    {"Lucas"},
				"nombre_0":     {"Cero"},
				"nombre_-2":    {"Menos"},
			},
			want: []child.NewChild{
				{Names: "Lucas", Surnames: "López", Index: 1},
			},
		},
		{
			name: "repeated",
			form: url.Values{
				"nombre":       {"Lucas", "Ana"},
				"apellidos":    {"López", "Ruiz"},
				"tipo_usuario": {"Ajolotito"},
			},
			want: []child.NewChild{
				{Names: "Lucas", Surnames: "López", Gender: "Ajolotito", Index: 1},
				{Names: "Ana", Surnames: "Ruiz", Index: 2},
			},
		},
		{
			name: "empty",
			form: url.Values{"apellidos": {"López"}},
			want: []child.NewChild{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bindChildren(tt.form))
		})
	}
}

func TestChildIndex(t *testing.T) {
	tests := []struct {
		key    string
		want   int
		wantOk bool
	}{
		{"nombre_1", 1, true},
		{"nombre_12", 12, true},
		{"nombre_0", 0, false},
		{"nombre_01", 0, false},
		{"nombre_+3", 0, false},
		{"nombre_x", 0, false},
		{"nombre", 0, false},
		{"apellidos_1", 0, false},
	}
	for _, tt := range tests {
		idx, ok := childIndex(tt.key)
		assert.Equal(t, tt.wantOk, ok, tt.key)
		assert.Equal(t, tt.want, idx, tt.key)
	}
}

func TestFormValues(t *testing.T) {
	form := url.Values{
		"correo":   {"rosa@mail.com", "otro@mail.com"},
		"password": {"secreto123"},
		"vacío":    {},
	}
	assert.Equal(t, map[string]string{"correo": "rosa@mail.com"}, formValues(form, "password"))
	assert.Equal(t, map[string]string{"correo": "rosa@mail.com", "password": "secreto123"}, formValues(form))
}

func TestCredentialsErrCode(t *testing.T) {
	fieldErr := func(errs ...error) error {
		flds := make([]core.FieldError, 0, len(errs))
		for _, err := range errs {
			flds = append(flds, core.FieldError{Field: "x", Error: err.Error(), Err: err})
		}
		return core.NewValidationError(nil, flds...)
	}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty", fieldErr(core.ErrEmptyField), loginErrFields},
		{"empty wins", fieldErr(core.ErrBadPictureToken, core.ErrEmptyField), loginErrFields},
		{"count", fieldErr(core.ErrBadPictureCount), loginErrCount},
		{"count before animals", fieldErr(core.ErrBadPictureToken, core.ErrBadPictureCount), loginErrCount},
		{"animals", fieldErr(core.ErrBadPictureToken), loginErrAnimals},
		{"anything else", errors.New("otro"), loginErrFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, credentialsErrCode(tt.err))
		})
	}
}

func TestStaticContentType(t *testing.T) {
	tests := map[string]string{
		"css/estilos.css":  "text/css",
		"js/app.js":        "application/javascript",
		"img/Ajolote.PNG":  "image/png",
		"img/foto.jpeg":    "image/jpeg",
		"audio/saludo.mp3": "audio/mpeg",
		"docs/manual.pdf":  defaultContentType,
		"sin_extension":    defaultContentType,
	}
	for name, want := range tests {
		assert.Equal(t, want, staticContentType(name), name)
	}
}

func TestValidationMessage(t *testing.T) {
	verr := &core.ValidationError{Err: core.ErrEmptyField}
	assert.Equal(t, core.ErrEmptyField.Error(), validationMessage(verr))
	assert.Equal(t, msgCheckFields, validationMessage(&core.ValidationError{}))
}
