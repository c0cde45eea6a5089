package binder

import "github.com/dmitrymomot/onion/core/handler"

// Query binds URL query parameters to fields tagged `query:"name"`.
// Untagged fields use their lowercased name; `query:"-"` skips a field.
func Query() Binder {
	return func(ctx handler.Context, v any) error {
		return bindValues(v, "query", ctx.Request().URL.Query(), ErrFailedToParseQuery)
	}
}
