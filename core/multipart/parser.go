package multipart

import (
	"bytes"
	"mime"
	"net/textproto"
	"strconv"
	"strings"
)

var (
	crlf     = []byte("\r\n")
	crlfcrlf = []byte("\r\n\r\n")
	dashes   = []byte("--")
)

// maxBoundaryLen bounds the boundary token. RFC 2046 allows 70 characters;
// the extra room accepts clients that exceed it.
const maxBoundaryLen = 100

// Boundary extracts and validates the boundary parameter of contentType.
func Boundary(contentType string) (string, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", parseError(ErrMissingBoundary, err.Error())
	}
	boundary, ok := params["boundary"]
	if !ok || boundary == "" {
		return "", parseError(ErrMissingBoundary, "")
	}
	if len(boundary) > maxBoundaryLen || strings.ContainsAny(boundary, "\x00\r\n") {
		return "", parseError(ErrInvalidBoundary, "")
	}
	return boundary, nil
}

// Parse decodes a fully buffered multipart/form-data body.
//
// Parts are located by searching for the raw "--boundary" byte sequence,
// not by reading lines. Each part is split at its first blank line into a
// header block and content. Parts without a Content-Disposition name are
// skipped; parts with a filename become files, the rest fields.
func Parse(contentType string, body []byte) (*Body, error) {
	boundary, err := Boundary(contentType)
	if err != nil {
		return nil, err
	}
	delim := []byte("--" + boundary)

	start := bytes.Index(body, delim)
	if start < 0 {
		return nil, parseError(ErrNoInitialBoundary, "")
	}

	b := newBody()
	rest := body[start+len(delim):]
	for n := 1; ; n++ {
		if bytes.HasPrefix(rest, dashes) {
			return b, nil
		}

		end := bytes.Index(rest, delim)
		if end < 0 {
			return nil, parseError(ErrUnterminated, "")
		}

		if err := b.addPart(rest[:end], n); err != nil {
			return nil, err
		}
		rest = rest[end+len(delim):]
	}
}

// addPart decodes the bytes between two delimiters.
func (b *Body) addPart(raw []byte, n int) error {
	raw = bytes.TrimPrefix(raw, crlf)
	raw = bytes.TrimSuffix(raw, crlf)

	var head, content []byte
	if bytes.HasPrefix(raw, crlf) {
		// empty header block
		content = raw[len(crlf):]
	} else {
		sep := bytes.Index(raw, crlfcrlf)
		if sep < 0 {
			return parseError(ErrMalformedPart, partDetail(n))
		}
		head, content = raw[:sep], raw[sep+len(crlfcrlf):]
	}

	header := parseHeader(head)

	disposition := header.Get("Content-Disposition")
	if disposition == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return nil
	}
	name := params["name"]
	if name == "" {
		return nil
	}

	if filename, ok := params["filename"]; ok {
		b.addFile(&File{
			Field:       name,
			Filename:    filename,
			ContentType: header.Get("Content-Type"),
			Header:      header,
			Content:     content,
		})
		return nil
	}

	b.addField(name, strings.ToValidUTF8(string(content), "\uFFFD"))
	return nil
}

// parseHeader splits an ASCII header block into CRLF lines and each line at
// its first colon. Lines without a colon are ignored.
func parseHeader(head []byte) textproto.MIMEHeader {
	header := make(textproto.MIMEHeader)
	for line := range bytes.SplitSeq(head, crlf) {
		key, value, ok := bytes.Cut(line, []byte{':'})
		if !ok {
			continue
		}
		k := textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(string(key)))
		if k == "" {
			continue
		}
		header.Add(k, strings.TrimSpace(string(value)))
	}
	return header
}

func partDetail(n int) string {
	return "part " + strconv.Itoa(n)
}
