package gym

import (
	"embed"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer builds a go-template renderer over fsys, which must hold
// a templates/ directory with dashboard.html. A nil fsys uses the templates
// compiled into the binary.
func NewTemplateRenderer(fsys fs.FS) (Renderer, error) {
	if fsys == nil {
		fsys = embeddedTemplates
	}
	return template.NewRenderer(
		template.WithFS(fsys),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}
