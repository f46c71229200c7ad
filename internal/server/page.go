package server

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shouni/blog-insights/pkg/dashboard"
)

//go:embed page.html
var pageSource string

// pageData はページテンプレートに渡す値です。
// Query は現在のクエリで、フォームの初期値に使います。
type pageData struct {
	dashboard.View
	Options dashboard.Options
	Query   url.Values
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"join": strings.Join,
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(time.DateTime)
	},
	"day": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(dateLayout)
	},
	// has は values に v が含まれるかを返します (select/checkbox の選択状態)。
	"has": func(values []string, v any) bool {
		return slices.Contains(values, fmt.Sprint(v))
	},
}).Parse(pageSource))

func renderPage(c echo.Context, data pageData) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render page").SetInternal(err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
