package response

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/dmitrymomot/onion/core/handler"
)

// ErrNilTemplate is returned when a template response has no template.
var ErrNilTemplate = errors.New("response: nil template")

// Template renders tmpl with data as a 200 HTML page.
func Template(tmpl *template.Template, data any) handler.Response {
	return TemplateNameWithStatus(tmpl, "", data, http.StatusOK)
}

// TemplateWithStatus renders tmpl with a custom status code.
func TemplateWithStatus(tmpl *template.Template, data any, status int) handler.Response {
	return TemplateNameWithStatus(tmpl, "", data, status)
}

// TemplateName renders the named template of a set (ParseFiles, ParseGlob).
func TemplateName(tmpl *template.Template, name string, data any) handler.Response {
	return TemplateNameWithStatus(tmpl, name, data, http.StatusOK)
}

// TemplateNameWithStatus renders the named template with a custom status code.
// Output is buffered, so a template error leaves the response unsent and goes
// to the router's error handler. An empty name executes tmpl itself.
func TemplateNameWithStatus(tmpl *template.Template, name string, data any, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if tmpl == nil {
			return ErrNilTemplate
		}

		var buf bytes.Buffer
		var err error
		if name != "" {
			err = tmpl.ExecuteTemplate(&buf, name, data)
		} else {
			err = tmpl.Execute(&buf, data)
		}
		if err != nil {
			return err
		}
		return write(w, status, contentTypeHTML, buf.Bytes())
	}
}
