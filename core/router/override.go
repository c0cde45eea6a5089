package router

import (
	"mime"
	"net/http"
	"strings"
)

// Default method override sources.
const (
	DefaultOverrideHeader = "X-HTTP-Method-Override"
	DefaultOverrideParam  = "_method"
)

// MethodOverride lets HTML forms and limited clients tunnel PUT, PATCH and
// DELETE through POST. Sources are consulted in fixed priority order:
// header, query parameter, then URL-encoded form field. An empty name
// disables that source.
type MethodOverride struct {
	Header     string
	QueryParam string
	FormField  string
}

// DefaultMethodOverride enables all three sources with their default names.
func DefaultMethodOverride() MethodOverride {
	return MethodOverride{
		Header:     DefaultOverrideHeader,
		QueryParam: DefaultOverrideParam,
		FormField:  DefaultOverrideParam,
	}
}

// Resolve returns the effective method for r.
// Only POST requests are overridden and only to PUT, PATCH or DELETE.
func (o MethodOverride) Resolve(r *http.Request) string {
	if r.Method != http.MethodPost {
		return r.Method
	}

	if o.Header != "" {
		if m, ok := overrideMethod(r.Header.Get(o.Header)); ok {
			return m
		}
	}

	if o.QueryParam != "" {
		if m, ok := overrideMethod(r.URL.Query().Get(o.QueryParam)); ok {
			return m
		}
	}

	if o.FormField != "" && isURLEncodedForm(r) {
		// ParseForm caches the body in r.PostForm, so handlers can still read the fields
		if err := r.ParseForm(); err == nil {
			if m, ok := overrideMethod(r.PostForm.Get(o.FormField)); ok {
				return m
			}
		}
	}

	return r.Method
}

func overrideMethod(v string) (string, bool) {
	switch m := strings.ToUpper(strings.TrimSpace(v)); m {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return m, true
	default:
		return "", false
	}
}

func isURLEncodedForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == "application/x-www-form-urlencoded"
}
