package echoapi

import (
	"html/template"
	"io"
	iofs "io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	appfs "github.com/ajolotes/ajolotes/fs"
)

const pagesDir = "templates/pages"

// page is the data every page template receives.
type page struct {
	Title       string
	ChildActive bool
	Child       string // full name of the logged in child
	Error       string
	Errors      map[string]string
	Form        map[string]string // submitted values, to refill the form
	Data        interface{}
}

// pageRenderer renders the embedded pages. Each page is parsed together with the _base layout.
type pageRenderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*pageRenderer)(nil)

func newPageRenderer() (*pageRenderer, error) {
	return parsePages(appfs.FS, pagesDir)
}

func parsePages(fsys iofs.FS, dir string) (*pageRenderer, error) {
	fps, err := iofs.Glob(fsys, path.Join(dir, "*.gohtml"))
	if err != nil {
		return nil, err
	}

	r := &pageRenderer{templates: make(map[string]*template.Template, len(fps))}
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		tmpl, err := template.ParseFS(fsys, path.Join(dir, "_base.gohtml"), fp)
		if err != nil {
			return nil, errors.Wrap(err, fname)
		}
		r.templates[strings.TrimSuffix(fname, ".gohtml")] = tmpl
	}
	return r, nil
}

func (r *pageRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("page %q not found", name)
	}
	return tmpl.Execute(w, data)
}
