package echoapi

import (
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

const defaultContentType = "application/octet-stream"

var staticContentTypes = map[string]string{
	".css":  "text/css",
	".js":   "application/javascript",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

// staticContentType picks the Content-Type of a static asset from its extension.
func staticContentType(name string) string {
	if ct, ok := staticContentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return defaultContentType
}

// newStaticHandler serves regular files found under root. Paths escaping root are not found.
func newStaticHandler(root string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		name, err := url.PathUnescape(ctx.Param("*"))
		if err != nil {
			return echo.ErrNotFound
		}
		name = strings.TrimPrefix(path.Clean("/"+name), "/")
		if name == "" || root == "" {
			return echo.ErrNotFound
		}

		fp := filepath.Join(root, filepath.FromSlash(name))
		info, err := os.Stat(fp)
		if err != nil || !info.Mode().IsRegular() {
			return echo.ErrNotFound
		}

		ctx.Response().Header().Set(echo.HeaderContentType, staticContentType(name))
		return ctx.File(fp)
	}
}

func favicon(ctx echo.Context) error {
	return ctx.Blob(http.StatusOK, "image/x-icon", []byte{})
}
