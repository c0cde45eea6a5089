package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrymomot/onion/core/handler"
)

// Regexp is an order-sensitive matcher that compiles every pattern into an
// anchored regular expression. Routes for a method are tried in registration
// order and the first match wins.
//
// It accepts custom parameter patterns such as /users/:id(\d+) and optional
// parameters in any position, which the trie does not support.
type Regexp[C handler.Context] struct {
	routes map[string][]*regexpRoute[C]
}

type regexpRoute[C handler.Context] struct {
	pattern string
	re      *regexp.Regexp
	// group index -> parameter name
	groups  map[int]string
	handler handler.HandlerFunc[C]
}

// NewRegexp creates an empty regexp matcher.
func NewRegexp[C handler.Context]() *Regexp[C] {
	return &Regexp[C]{routes: make(map[string][]*regexpRoute[C])}
}

// Add compiles pattern and appends the route for method.
func (m *Regexp[C]) Add(method, pattern string, h handler.HandlerFunc[C]) error {
	method, err := normalizeMethod(method)
	if err != nil {
		return err
	}

	segs, err := parsePattern(pattern)
	if err != nil {
		return err
	}

	re, groups, err := compileSegments(segs)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidRegexp, pattern, err)
	}

	m.routes[method] = append(m.routes[method], &regexpRoute[C]{
		pattern: pattern,
		re:      re,
		groups:  groups,
		handler: h,
	})
	return nil
}

// Match tries the routes of method in registration order.
func (m *Regexp[C]) Match(method, path string) *Match[C] {
	target := normalizePath(path)
	for _, rt := range m.routes[method] {
		sub := rt.re.FindStringSubmatchIndex(target)
		if sub == nil {
			continue
		}
		params := make(Params, len(rt.groups))
		for idx, name := range rt.groups {
			start, end := sub[2*idx], sub[2*idx+1]
			if start < 0 {
				continue // optional group did not participate
			}
			params[name] = target[start:end]
		}
		return &Match[C]{Handler: rt.handler, Params: params, Pattern: rt.pattern}
	}
	return nil
}

// Routes returns registered routes sorted by pattern, then method.
func (m *Regexp[C]) Routes() []Route {
	var routes []Route
	for method, rts := range m.routes {
		for _, rt := range rts {
			routes = append(routes, Route{Method: method, Pattern: rt.pattern})
		}
	}
	sortRoutes(routes)
	return routes
}

// Methods lists methods with a route matching path.
func (m *Regexp[C]) Methods(path string) []string {
	var methods []string
	for _, method := range allMethods {
		if m.Match(method, path) != nil {
			methods = append(methods, method)
		}
	}
	return methods
}

// normalizePath rewrites path as "/seg1/seg2"; the root becomes "".
func normalizePath(path string) string {
	segs := splitPath(path)
	if len(segs) == 0 {
		return ""
	}
	return "/" + strings.Join(segs, "/")
}

// compileSegments builds an anchored expression over a normalized path.
// Parameters use named groups so custom inner patterns may contain groups of their own.
func compileSegments(segs []segment) (*regexp.Regexp, map[int]string, error) {
	var b strings.Builder
	b.WriteByte('^')

	names := make(map[string]string, len(segs))
	for i, seg := range segs {
		switch seg.kind {
		case segLiteral:
			b.WriteByte('/')
			b.WriteString(regexp.QuoteMeta(seg.value))

		case segParam:
			group := fmt.Sprintf("p%d", i)
			names[group] = seg.value
			expr := seg.expr
			if expr == "" {
				expr = `[^/]+`
			}
			if seg.optional {
				fmt.Fprintf(&b, `(?:/(?P<%s>%s))?`, group, expr)
			} else {
				fmt.Fprintf(&b, `/(?P<%s>%s)`, group, expr)
			}

		case segWildcard:
			group := fmt.Sprintf("p%d", i)
			names[group] = seg.value
			fmt.Fprintf(&b, `/(?P<%s>.+)`, group)
		}
	}
	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, nil, err
	}

	groups := make(map[int]string, len(names))
	for group, name := range names {
		groups[re.SubexpIndex(group)] = name
	}
	return re, groups, nil
}
