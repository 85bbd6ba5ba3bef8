// Package web holds the HTML templates and static assets of the front-end.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

//go:embed templates/*.html static/*
var files embed.FS

// Funcs are the helpers available to every template
var Funcs = template.FuncMap{
	"millis": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
	"seconds": func(d time.Duration) int64 {
		return int64(d.Round(time.Second) / time.Second)
	},
	// html/template only trusts http, https and mailto links
	"telURL": func(link string) template.URL {
		if !strings.HasPrefix(link, "tel:") {
			return ""
		}
		return template.URL(link)
	},
	"deref": func(v *int64) int64 {
		if v == nil {
			return 0
		}
		return *v
	},
}

// Templates parses every page template
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "templates/*.html")
}

// Static serves the files under static/
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
