// Package binder decodes request data into structs.
//
//	type createPost struct {
//		BlogID int      `path:"blog"`
//		Draft  bool     `query:"draft"`
//		Title  string   `json:"title"`
//		Tags   []string `json:"tags"`
//	}
//
//	func create(ctx *router.Context) handler.Response {
//		var req createPost
//		if err := binder.Bind(ctx, &req, binder.Path(), binder.Query(), binder.JSON()); err != nil {
//			return response.Error(err)
//		}
//		...
//	}
//
// Binding errors are *Error values. Their StatusCode method picks 400, 413
// or 415, so response.JSONErrorHandler renders them with the right status.
//
// Form handles urlencoded and multipart bodies; multipart bodies go through
// the multipart package, and uploads bind to *multipart.File fields.
package binder
