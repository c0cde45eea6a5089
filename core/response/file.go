package response

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/onion/core/handler"
)

// Attachment sends content as a file download named filename.
// An empty contentType defaults to application/octet-stream.
func Attachment(content []byte, filename, contentType string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := w.Header()
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		h.Set("Content-Length", strconv.Itoa(len(content)))
		h.Set("X-Content-Type-Options", "nosniff")
		return write(w, http.StatusOK, contentType, content)
	}
}
