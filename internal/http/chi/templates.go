package chi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	indexPage = mustPage("index.html")
	addPage   = mustPage("add.html")
	editPage  = mustPage("edit.html")
)

type pageData struct {
	Flashes []flash
	Books   []bookView
	Query   string
	Book    *bookView
}

func mustPage(name string) *template.Template {
	return template.Must(template.New("layout.html").ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// render buffers the page before any header is written
func render(w http.ResponseWriter, r *http.Request, page *template.Template, data pageData) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
