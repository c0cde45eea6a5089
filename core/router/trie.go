package router

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/onion/core/handler"
)

// Trie is the primary segment trie matcher.
//
// Each node is one path-segment position. Matching is depth-first and prefers,
// at every node, the literal child over the parameter child over the wildcard
// child, backtracking out of parameter branches that do not lead to a handler
// for the requested method.
type Trie[C handler.Context] struct {
	root *trieNode[C]
}

type trieNode[C handler.Context] struct {
	// literal children by exact segment text
	literals map[string]*trieNode[C]

	// at most one parameter child and one wildcard child
	param    *trieNode[C]
	wildcard *trieNode[C]

	// name bound by this node when it is a parameter or wildcard child;
	// the last registration through the node wins
	name     string
	optional bool

	// endpoints terminating at this node, keyed by method
	handlers map[string]handler.HandlerFunc[C]
	patterns map[string]string
}

// NewTrie creates an empty trie matcher.
func NewTrie[C handler.Context]() *Trie[C] {
	return &Trie[C]{root: &trieNode[C]{}}
}

// Add registers h for method and pattern.
func (t *Trie[C]) Add(method, pattern string, h handler.HandlerFunc[C]) error {
	method, err := normalizeMethod(method)
	if err != nil {
		return err
	}

	segs, err := parsePattern(pattern)
	if err != nil {
		return err
	}

	for i, seg := range segs {
		if seg.expr != "" {
			return fmt.Errorf("%w: %q", ErrCustomPattern, pattern)
		}
		if seg.optional && i != len(segs)-1 {
			return fmt.Errorf("%w: %q", ErrOptionalPosition, pattern)
		}
	}

	var parent *trieNode[C]
	n := t.root
	for _, seg := range segs {
		parent = n
		n = n.child(seg)
	}

	n.setEndpoint(method, pattern, h)

	// /posts/:id? resolves both /posts and /posts/7
	if len(segs) > 0 && segs[len(segs)-1].optional {
		parent.setEndpoint(method, pattern, h)
	}

	return nil
}

// Match resolves method and path. Trailing and repeated slashes are ignored.
func (t *Trie[C]) Match(method, path string) *Match[C] {
	params := make(Params)
	n := t.root.match(method, splitPath(path), params)
	if n == nil {
		return nil
	}
	return &Match[C]{
		Handler: n.handlers[method],
		Params:  params,
		Pattern: n.patterns[method],
	}
}

// Routes returns registered routes sorted by pattern, then method.
func (t *Trie[C]) Routes() []Route {
	var routes []Route
	seen := make(map[Route]struct{})
	t.root.walk(func(n *trieNode[C]) {
		for method, pattern := range n.patterns {
			rt := Route{Method: method, Pattern: pattern}
			if _, ok := seen[rt]; ok {
				continue
			}
			seen[rt] = struct{}{}
			routes = append(routes, rt)
		}
	})
	sortRoutes(routes)
	return routes
}

// Methods lists methods with a handler registered for path.
func (t *Trie[C]) Methods(path string) []string {
	var methods []string
	for _, m := range allMethods {
		if t.root.match(m, splitPath(path), make(Params)) != nil {
			methods = append(methods, m)
		}
	}
	return methods
}

// child returns the node for seg below n, creating it when needed.
func (n *trieNode[C]) child(seg segment) *trieNode[C] {
	switch seg.kind {
	case segParam:
		if n.param == nil {
			n.param = &trieNode[C]{}
		}
		n.param.name = seg.value
		n.param.optional = seg.optional
		return n.param

	case segWildcard:
		if n.wildcard == nil {
			n.wildcard = &trieNode[C]{}
		}
		n.wildcard.name = seg.value
		return n.wildcard

	default:
		if n.literals == nil {
			n.literals = make(map[string]*trieNode[C])
		}
		c, ok := n.literals[seg.value]
		if !ok {
			c = &trieNode[C]{}
			n.literals[seg.value] = c
		}
		return c
	}
}

func (n *trieNode[C]) setEndpoint(method, pattern string, h handler.HandlerFunc[C]) {
	if n.handlers == nil {
		n.handlers = make(map[string]handler.HandlerFunc[C])
		n.patterns = make(map[string]string)
	}
	n.handlers[method] = h
	n.patterns[method] = pattern
}

// match returns the node holding a handler for method, or nil.
// params is mutated in place and restored on every abandoned branch.
func (n *trieNode[C]) match(method string, segs []string, params Params) *trieNode[C] {
	if len(segs) == 0 {
		if n.handlers[method] != nil {
			return n
		}
		return nil
	}

	seg := segs[0]

	if c, ok := n.literals[seg]; ok {
		if found := c.match(method, segs[1:], params); found != nil {
			return found
		}
	}

	if c := n.param; c != nil {
		prev, had := params[c.name]
		params[c.name] = seg
		if found := c.match(method, segs[1:], params); found != nil {
			return found
		}
		if had {
			params[c.name] = prev
		} else {
			delete(params, c.name)
		}
	}

	// the wildcard consumes the remainder and never backtracks
	if c := n.wildcard; c != nil && c.handlers[method] != nil {
		params[c.name] = strings.Join(segs, "/")
		return c
	}

	return nil
}

func (n *trieNode[C]) walk(fn func(*trieNode[C])) {
	fn(n)
	keys := make([]string, 0, len(n.literals))
	for k := range n.literals {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		n.literals[k].walk(fn)
	}
	if n.param != nil {
		n.param.walk(fn)
	}
	if n.wildcard != nil {
		n.wildcard.walk(fn)
	}
}
