package router

import (
	"fmt"
	"net/http"
	"strings"
)

type segmentKind uint8

const (
	segLiteral  segmentKind = iota // /users
	segParam                       // /:id, /:id?, /:id(\d+)
	segWildcard                    // /*path
)

// segment is one parsed component of a route pattern.
type segment struct {
	kind     segmentKind
	value    string // literal text or parameter name
	expr     string // custom inner pattern, regexp matcher only
	optional bool
}

// defaultWildcardName is the parameter key for a bare "*" segment.
const defaultWildcardName = "*"

var knownMethods = map[string]struct{}{
	http.MethodConnect: {},
	http.MethodDelete:  {},
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodOptions: {},
	http.MethodPatch:   {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodTrace:   {},
}

// allMethods is the registration order used by Handle.
var allMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
}

func normalizeMethod(method string) (string, error) {
	m := strings.ToUpper(method)
	if _, ok := knownMethods[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	return m, nil
}

// splitPath returns the non-empty "/"-delimited segments of path.
// Leading, trailing and repeated slashes are dropped, so "/" yields no segments.
func splitPath(path string) []string {
	if path == "" || path == "/" {
		return nil
	}
	segs := make([]string, 0, strings.Count(path, "/")+1)
	for s := range strings.SplitSeq(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// parsePattern validates a route pattern and splits it into segments.
func parsePattern(pattern string) ([]segment, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("%w: %q must begin with '/'", ErrInvalidPattern, pattern)
	}

	parts := splitPath(pattern)
	segs := make([]segment, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for i, part := range parts {
		last := i == len(parts)-1

		var seg segment
		switch part[0] {
		case ':':
			s, err := parseParam(pattern, part[1:])
			if err != nil {
				return nil, err
			}
			seg = s

		case '*':
			if !last {
				return nil, fmt.Errorf("%w: %q", ErrWildcardPosition, pattern)
			}
			name := part[1:]
			if name == "" {
				name = defaultWildcardName
			}
			seg = segment{kind: segWildcard, value: name}

		default:
			seg = segment{kind: segLiteral, value: part}
		}

		if seg.kind != segLiteral {
			if _, dup := seen[seg.value]; dup {
				return nil, fmt.Errorf("%w: %q has duplicate key %q", ErrDuplicateParam, pattern, seg.value)
			}
			seen[seg.value] = struct{}{}
		}
		segs = append(segs, seg)
	}

	return segs, nil
}

// parseParam parses the text after ':' in forms "name", "name?",
// "name(expr)" and "name(expr)?".
func parseParam(pattern, body string) (segment, error) {
	seg := segment{kind: segParam}

	if strings.HasSuffix(body, "?") {
		seg.optional = true
		body = body[:len(body)-1]
	}

	if open := strings.IndexByte(body, '('); open >= 0 {
		if !strings.HasSuffix(body, ")") || open == len(body)-2 {
			return segment{}, fmt.Errorf("%w: malformed parameter pattern in %q", ErrInvalidPattern, pattern)
		}
		seg.expr = body[open+1 : len(body)-1]
		body = body[:open]
	}

	if body == "" {
		return segment{}, fmt.Errorf("%w: empty parameter name in %q", ErrInvalidPattern, pattern)
	}
	seg.value = body
	return seg, nil
}
