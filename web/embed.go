// Package web embeds the HTML templates and static assets served by the
// application.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"budgettracker/internal/money"
)

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css).
//
//go:embed static/*
var StaticFS embed.FS

// FuncMap holds the helpers available to every template.
var FuncMap = template.FuncMap{
	"money":    money.Format,
	"negative": func(cents int64) bool { return cents < 0 },
	"monthName": func(month int) string {
		if month < 1 || month > 12 {
			return ""
		}
		return time.Month(month).String()
	},
}

// Templates parses every embedded template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap).ParseFS(TemplatesFS, "templates/*.html")
}

// Static returns the static assets rooted at their directory.
func Static() (fs.FS, error) {
	return fs.Sub(StaticFS, "static")
}
