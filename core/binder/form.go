package binder

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"reflect"
	"strings"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/multipart"
)

// DefaultMaxFormSize caps form bodies.
const DefaultMaxFormSize int64 = 10 << 20

var (
	fileType      = reflect.TypeFor[*multipart.File]()
	fileSliceType = reflect.TypeFor[[]*multipart.File]()
)

// Form binds application/x-www-form-urlencoded and multipart/form-data
// bodies. Values go to fields tagged `form:"name"`; uploads go to
// *multipart.File or []*multipart.File fields tagged `file:"name"`.
// Upload filenames are reduced to their base name.
func Form() Binder {
	return FormWithLimit(DefaultMaxFormSize)
}

func FormWithLimit(maxBytes int64) Binder {
	return func(ctx handler.Context, v any) error {
		r := ctx.Request()
		ct := r.Header.Get("Content-Type")
		if ct == "" {
			return bindError(ErrMissingContentType, "", "expected a form content type")
		}
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return bindError(ErrUnsupportedMediaType, "", ct)
		}

		switch mt {
		case "application/x-www-form-urlencoded":
			r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
			if err := r.ParseForm(); err != nil {
				var mbe *http.MaxBytesError
				if errors.As(err, &mbe) {
					return bindError(ErrBodyTooLarge, "", "")
				}
				return bindError(ErrFailedToParseForm, "", err.Error())
			}
			return bindValues(v, "form", r.PostForm, ErrFailedToParseForm)

		case "multipart/form-data":
			body, err := multipart.ParseRequest(r, maxBytes)
			if err != nil {
				if errors.Is(err, multipart.ErrBodyTooLarge) {
					return bindError(ErrBodyTooLarge, "", "")
				}
				return bindError(ErrFailedToParseForm, "", err.Error())
			}
			if err := bindValues(v, "form", body.Values(), ErrFailedToParseForm); err != nil {
				return err
			}
			return bindFiles(v, body)

		default:
			return bindError(ErrUnsupportedMediaType, "", mt)
		}
	}
}

func bindFiles(v any, body *multipart.Body) error {
	rv, err := targetStruct(v)
	if err != nil {
		return err
	}
	rt := rv.Type()

	for i := range rt.NumField() {
		sf := rt.Field(i)
		name := sf.Tag.Get("file")
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		files := body.FileAll(name)
		if len(files) == 0 {
			continue
		}
		for _, f := range files {
			f.Filename = sanitizeFilename(f.Filename)
		}

		field := rv.Field(i)
		switch sf.Type {
		case fileType:
			field.Set(reflect.ValueOf(files[len(files)-1]))
		case fileSliceType:
			field.Set(reflect.ValueOf(files))
		default:
			return bindError(ErrFailedToParseForm, sf.Name, "file fields must be *multipart.File or []*multipart.File")
		}
	}
	return nil
}

// sanitizeFilename drops directories and NUL bytes from a client filename.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.ReplaceAll(name, "\x00", "")
	name = path.Base(name)
	switch name {
	case ".", "..", "/", "":
		return "unnamed"
	}
	return name
}
