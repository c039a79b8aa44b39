package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded page templates. The binary carries its own
// frontend so it runs from any working directory.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.html"))
}
