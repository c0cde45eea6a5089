package binder

import "github.com/dmitrymomot/onion/core/handler"

// Path binds route parameters to fields tagged `path:"name"`, reading them
// through ctx.Param. Missing parameters leave fields untouched.
func Path() Binder {
	return func(ctx handler.Context, v any) error {
		return eachField(v, "path", ErrFailedToParsePath, func(name string) []string {
			if p := ctx.Param(name); p != "" {
				return []string{p}
			}
			return nil
		})
	}
}
