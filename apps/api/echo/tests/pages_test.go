package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPages(t *testing.T) {
	e := setup(t)
	c := e.newClient(t)

	tests := []httpTest{
		{name: "index", method: http.MethodGet, path: "/", wantCode: http.StatusOK, wantBody: []string{"¡Bienvenido a Ajolotes!"}},
		{name: "trailing slash", method: http.MethodGet, path: "/quienes_somos/", wantCode: http.StatusOK},
		{name: "saludo admin", method: http.MethodGet, path: "/saludo_admin", wantCode: http.StatusOK},
		{name: "saludo chiquillo", method: http.MethodGet, path: "/saludo_chiquillo", wantCode: http.StatusOK},
		{name: "presentacion lucas", method: http.MethodGet, path: "/presentacion_lucas", wantCode: http.StatusOK},
		{name: "presentacion pagina", method: http.MethodGet, path: "/presentacion_pagina", wantCode: http.StatusOK},
		{name: "lecciones", method: http.MethodGet, path: "/lecciones", wantCode: http.StatusOK},
		{name: "introduccion", method: http.MethodGet, path: "/introduccion", wantCode: http.StatusOK},
		{name: "leccion coordinacion", method: http.MethodGet, path: "/leccion_coordinacion", wantCode: http.StatusOK},
		{name: "leccion completada", method: http.MethodGet, path: "/leccion_completada", wantCode: http.StatusOK},
		{name: "registrar tutor", method: http.MethodGet, path: "/registrar_tutor", wantCode: http.StatusOK, wantBody: []string{`name="correo"`}},
		{name: "iniciar sesion", method: http.MethodGet, path: "/iniciar_sesion", wantCode: http.StatusOK, wantBody: []string{`name="password_animales"`}},
		{name: "inicio administrador", method: http.MethodGet, path: "/inicio_administrador", wantCode: http.StatusOK},
		{name: "unknown page", method: http.MethodGet, path: "/no_existe", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(tt.method, tt.path, nil)
			checkResponse(t, tt, rec)
		})
	}

	t.Run("pages do not create sessions", func(t *testing.T) {
		assert.Equal(t, 0, e.store.Len())
		assert.Empty(t, c.sessionID())
	})
}

func TestStatic(t *testing.T) {
	e := setup(t)
	c := e.newClient(t)

	tests := []struct {
		name            string
		path            string
		wantCode        int
		wantContentType string
	}{
		{name: "css", path: "/static/css/estilos.css", wantCode: http.StatusOK, wantContentType: "text/css"},
		{name: "js", path: "/static/js/figuras.js", wantCode: http.StatusOK, wantContentType: "application/javascript"},
		{name: "missing file", path: "/static/css/nada.css", wantCode: http.StatusNotFound},
		{name: "directory", path: "/static/css", wantCode: http.StatusNotFound},
		{name: "traversal", path: "/static/..%2f..%2fgo.mod", wantCode: http.StatusNotFound},
		{name: "favicon", path: "/favicon.ico", wantCode: http.StatusOK, wantContentType: "image/x-icon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.get(tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantContentType != "" {
				assert.Equal(t, tt.wantContentType, rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	e := setup(t)
	c := e.newClient(t)

	rec := c.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health)) {
		assert.Equal(t, "ok", health["status"])
		assert.Equal(t, "memory", health["sessions"])
	}

	c.get("/")
	rec = c.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ajolotes_http_requests_total")
	assert.Contains(t, rec.Body.String(), `ajolotes_session_backend_info{backend="memory"} 1`)
}
