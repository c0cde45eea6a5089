package binder

import (
	"github.com/dmitrymomot/onion/core/handler"
)

// Binder fills v from one part of the request.
type Binder func(ctx handler.Context, v any) error

// Bind applies binders in order; later binders overwrite fields set by
// earlier ones.
func Bind(ctx handler.Context, v any, binders ...Binder) error {
	for _, b := range binders {
		if err := b(ctx, v); err != nil {
			return err
		}
	}
	return nil
}
