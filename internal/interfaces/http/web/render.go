// Package web renders the console pages. Templates are embedded and each
// page is parsed into its own clone of the layout so pages can share the
// "content" block name.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Page template names
const (
	PageInventory = "inventory.html"
	PageDispatch  = "dispatch.html"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{PageInventory, PageDispatch}

// Renderer renders console pages. It implements gin's render.HTMLRender,
// so handlers call c.HTML(status, web.PageInventory, page).
type Renderer struct {
	pages   map[string]*template.Template
	printer *message.Printer
	lang    language.Tag
}

// RendererOption configures the renderer
type RendererOption func(*Renderer)

// WithLanguage sets the language used for number formatting
func WithLanguage(tag language.Tag) RendererOption {
	return func(r *Renderer) {
		r.lang = tag
	}
}

// NewRenderer parses the embedded templates
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		pages: make(map[string]*template.Template, len(pageNames)),
		lang:  language.English,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.printer = message.NewPrinter(r.lang)

	base, err := template.New("layout.html").Funcs(r.funcMap()).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", name, err)
		}
		page, err := clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.pages[name] = page
	}
	return r, nil
}

func (r *Renderer) funcMap() template.FuncMap {
	return template.FuncMap{
		"number": func(v any) string { return r.printer.Sprintf("%d", v) },
		"km":     func(d decimal.Decimal) string { return r.formatDecimal(d, 1) + " km" },
		"hours":  func(d decimal.Decimal) string { return r.formatDecimal(d, 2) + " h" },

		// cases.Caser is stateful, one per call
		"title": func(v any) string { return cases.Title(r.lang).String(fmt.Sprint(v)) },
	}
}

func (r *Renderer) formatDecimal(d decimal.Decimal, places int) string {
	return r.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(places)))
}

// Instance implements render.HTMLRender
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		return render.String{Format: "unknown page %q", Data: []any{name}}
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Render writes a page to w
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

var _ render.HTMLRender = (*Renderer)(nil)
