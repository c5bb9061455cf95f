package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// staticPages maps parameterless pages to their titles.
var staticPages = map[string]string{
	"saludo_admin":         "Bienvenido",
	"saludo_chiquillo":     "¡Hola!",
	"presentacion_lucas":   "Lucas el ajolote",
	"presentacion_pagina":  "Presentación",
	"lecciones":            "Lecciones",
	"quienes_somos":        "Quiénes somos",
	"introduccion":         "Introducción",
	"leccion_coordinacion": "Lección de coordinación",
	"leccion_completada":   "¡Lección completada!",
}

func registerPages(g *echo.Group) {
	g.GET("/", index)
	for name, title := range staticPages {
		g.GET("/"+name, renderPage(name, title))
	}
}

// index shows the landing page, with a logout button while a child is logged in.
func index(ctx echo.Context) error {
	return renderPage("index", "Ajolotes")(ctx)
}

func renderPage(name, title string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := getSession(ctx)
		if err != nil {
			return errors.Wrap(err, "getting session")
		}
		p := page{Title: title}
		setPrincipal(&p, sess)
		return ctx.Render(http.StatusOK, name, p)
	}
}
