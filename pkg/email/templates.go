package email

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("Jan 2, 2006 3:04 PM MST") },
	"orNone": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "Not provided"
		}
		return s
	},
}

// loadTemplates parses every embedded email template.
func loadTemplates() (*template.Template, error) {
	return template.New("email").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
