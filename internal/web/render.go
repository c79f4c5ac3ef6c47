// Package web holds the embedded page templates and the gin renderer for them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"

	"ifrs-console/internal/model"
	"ifrs-console/internal/view"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the data every template receives. Path is the GET URL of the
// page, used for retry links when the response comes from an action.
type Page struct {
	Title  string
	Nav    string
	Path   string
	User   *model.User
	Banner *view.Banner
	Body   any
}

// PagePath maps a request to the page it belongs to. Action routes have no
// GET handler, so they map back to the page they were posted from.
func PagePath(r *http.Request) string {
	p := r.URL.Path
	if r.Method == http.MethodGet {
		return p
	}
	switch {
	case p == "/login" || p == "/register":
		return p
	case p == "/upload" || strings.HasPrefix(p, "/documents/"):
		return "/upload"
	case strings.HasPrefix(p, "/admin"):
		return "/admin"
	default:
		return path.Dir(p)
	}
}

// Renderer implements gin's render.HTMLRender with one template tree per page.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

func Funcs() template.FuncMap {
	return template.FuncMap{
		"tier":         func(score float64) view.Tier { return view.TierOf(score) },
		"score":        view.FormatScore,
		"donut":        view.NewDonut,
		"bars":         view.EmissionBars,
		"heatmap":      view.HeatmapRows,
		"initials":     view.Initials,
		"date":         view.FormatDate,
		"humanize":     view.Humanize,
		"levels":       view.SeverityLabels,
		"hasEmissions": view.HasEmissions,
		"dict":         dict,
		"deref":        deref,
		"percent":      func(v float64) string { return view.FormatScore(view.Clamp(v, 0, 100)) + "%" },
	}
}

// New parses the layout and partials once and clones them for every page.
func New() (*Renderer, error) {
	base, err := template.New("base").Funcs(Funcs()).ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, f); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		t = r.pages["error"]
		data = Page{Title: "Not found", Banner: &view.Banner{Kind: view.BannerError, Message: "unknown page " + name}}
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Static serves the embedded stylesheet.
func Static() http.FileSystem {
	sub, _ := fs.Sub(staticFS, "static")
	return http.FS(sub)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}
