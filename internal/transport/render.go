package transport

import (
	"embed"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/service"
)

//go:embed templates
var templateFS embed.FS

const (
	viewCategoryIndex  = "categories/index.html"
	viewCategoryCreate = "categories/create.html"
	viewCategoryShow   = "categories/show.html"
	viewCategoryEdit   = "categories/edit.html"
)

type (
	// Renderer keeps one template set per page, each page sharing the layout.
	Renderer struct {
		templates map[string]*template.Template
	}

	categoryIndexView struct {
		Flash      Flash
		Categories []db.Category
		Pagination service.Pagination
		Route      string
		OrderBy    string
		OrderDir   string
	}

	categoryFormView struct {
		Flash      Flash
		Categories []db.Category
		Category   *db.Category
	}

	categoryShowView struct {
		Flash         Flash
		Category      *db.Category
		CategoryLinks []db.Link
		Pagination    service.Pagination
		Route         string
		OrderBy       string
		OrderDir      string
	}
)

var templateFuncs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"isParent": func(parent *uint64, id uint64) bool {
		return parent != nil && *parent == id
	},
	"pageURL": func(route string, page uint64, orderBy, orderDir string) string {
		q := url.Values{}
		q.Set("page", strconv.FormatUint(page, 10))
		if orderBy != "" && orderDir != "" {
			q.Set("orderBy", orderBy)
			q.Set("orderDir", orderDir)
		}
		return route + "?" + q.Encode()
	},
}

func NewRenderer() (*Renderer, error) {
	pages := []string{viewCategoryIndex, viewCategoryCreate, viewCategoryShow, viewCategoryEdit}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.New("layout.html").
			Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, errors.Wrapf(err, "parse template %s", page)
		}
		r.templates[page] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return errors.Errorf("unknown view %q", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}
