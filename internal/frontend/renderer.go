package frontend

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
)

// Template renders the embedded html views
type Template struct {
	templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func newTemplate() *Template {
	return &Template{
		templates: template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, viewsPattern)),
	}
}

var templateFuncs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"fixed": formatNumber,
	"join":  strings.Join,
	"percent": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 1, 64) + "%"
	},
	"sci": func(v float64) string { return fmt.Sprintf("%.2e", v) },
}

// formatNumber prints two decimals, N/A for missing values
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
