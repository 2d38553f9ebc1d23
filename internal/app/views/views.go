// Package views embeds the HTML templates served by the dashboard pages.
package views

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Input describes one labelled form control
type Input struct {
	Label    string
	Name     string
	Type     string
	Value    string
	Error    string
	Required bool
}

var funcs = template.FuncMap{
	"input": func(label, name, kind string, value interface{}, errs map[string]string, required bool) Input {
		return Input{
			Label:    label,
			Name:     name,
			Type:     kind,
			Value:    fmt.Sprint(value),
			Error:    errs[name],
			Required: required,
		}
	},
}

// Templates parses every page and partial. Pages are addressed by file
// name, e.g. "students.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}
