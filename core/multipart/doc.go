// Package multipart decodes multipart/form-data bodies held in memory.
//
// The parser works on raw bytes: it searches for the boundary delimiter and
// splits each part at its first blank line, without line-oriented reading.
// Repeated names are preserved in order:
//
//	body, err := multipart.ParseRequest(ctx.Request(), 10<<20)
//	if err != nil {
//		return response.Error(err) // *ParseError reports 400, 413 or 415
//	}
//	title := body.Field("title")    // last "title" value
//	tags := body.FieldAll("tags")   // every "tags" value
//	if f := body.File("avatar"); f != nil {
//		store(f.Filename, f.ContentType, f.Content)
//	}
package multipart
