package router_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/core/router"
)

func TestRegexpMatch(t *testing.T) {
	t.Parallel()

	m := router.NewRegexp[*router.Context]()
	require.NoError(t, m.Add(http.MethodGet, "/", tagged("root")))
	require.NoError(t, m.Add(http.MethodGet, `/users/:id(\d+)`, tagged("numeric")))
	require.NoError(t, m.Add(http.MethodGet, "/users/:name", tagged("named")))
	require.NoError(t, m.Add(http.MethodGet, "/posts/:id?", tagged("posts")))
	require.NoError(t, m.Add(http.MethodGet, "/files/*path", tagged("files")))
	require.NoError(t, m.Add(http.MethodGet, "/v1.0/status", tagged("dotted")))
	require.NoError(t, m.Add(http.MethodGet, "/:lang?/docs", tagged("docs")))

	tests := []struct {
		name   string
		path   string
		want   string
		params map[string]string
	}{
		{name: "root", path: "/", want: "root"},
		{name: "custom pattern", path: "/users/42", want: "numeric", params: map[string]string{"id": "42"}},
		{name: "custom pattern falls through", path: "/users/bob", want: "named", params: map[string]string{"name": "bob"}},
		{name: "optional omitted", path: "/posts", want: "posts"},
		{name: "optional present", path: "/posts/7", want: "posts", params: map[string]string{"id": "7"}},
		{name: "wildcard", path: "/files/a/b/c.txt", want: "files", params: map[string]string{"path": "a/b/c.txt"}},
		{name: "literal is quoted", path: "/v1.0/status", want: "dotted"},
		{name: "leading optional omitted", path: "/docs", want: "docs"},
		{name: "leading optional present", path: "/en/docs", want: "docs", params: map[string]string{"lang": "en"}},
		{name: "trailing slash", path: "/posts/7/", want: "posts", params: map[string]string{"id": "7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := m.Match(http.MethodGet, tt.path)
			require.NotNil(t, res)
			assert.Equal(t, tt.want, matchedTag(t, res))
			for k, v := range tt.params {
				assert.Equal(t, v, res.Params.Get(k))
			}
		})
	}

	assert.Nil(t, m.Match(http.MethodGet, "/v1x0/status"), "dot must not act as a wildcard")
	assert.Nil(t, m.Match(http.MethodPost, "/users/42"))
	assert.False(t, m.Match(http.MethodGet, "/posts").Params.Has("id"))
}

func TestRegexpRegistrationOrder(t *testing.T) {
	t.Parallel()

	// no literal precedence: the first registered route wins
	m := router.NewRegexp[*router.Context]()
	require.NoError(t, m.Add(http.MethodGet, "/users/:id", tagged("param")))
	require.NoError(t, m.Add(http.MethodGet, "/users/active", tagged("literal")))

	assert.Equal(t, "param", matchedTag(t, m.Match(http.MethodGet, "/users/active")))

	tr := router.NewTrie[*router.Context]()
	require.NoError(t, tr.Add(http.MethodGet, "/users/:id", tagged("param")))
	require.NoError(t, tr.Add(http.MethodGet, "/users/active", tagged("literal")))

	assert.Equal(t, "literal", matchedTag(t, tr.Match(http.MethodGet, "/users/active")))
}

func TestRegexpAddErrors(t *testing.T) {
	t.Parallel()

	m := router.NewRegexp[*router.Context]()

	err := m.Add(http.MethodGet, "/files/*path/more", tagged("x"))
	assert.ErrorIs(t, err, router.ErrWildcardPosition)

	err = m.Add(http.MethodGet, `/users/:id([0-9)`, tagged("x"))
	assert.ErrorIs(t, err, router.ErrInvalidRegexp)

	err = m.Add(http.MethodGet, "/users/:id(", tagged("x"))
	assert.ErrorIs(t, err, router.ErrInvalidPattern)
}

// TestMatchersAgree checks both engines on a route set without ambiguity.
func TestMatchersAgree(t *testing.T) {
	t.Parallel()

	patterns := []string{
		"/",
		"/users",
		"/users/:id",
		"/users/:id/posts/:post",
		"/orgs/:org/repos",
		"/posts/:slug?",
		"/assets/*path",
	}
	paths := []string{
		"/", "/users", "/users/1", "/users/1/posts/2", "/orgs/acme/repos",
		"/posts", "/posts/hello", "/assets/css/site.css", "/missing", "/users/1/posts",
	}

	tr := router.NewTrie[*router.Context]()
	re := router.NewRegexp[*router.Context]()
	for _, p := range patterns {
		require.NoError(t, tr.Add(http.MethodGet, p, tagged(p)))
		require.NoError(t, re.Add(http.MethodGet, p, tagged(p)))
	}

	assert.Equal(t, tr.Routes(), re.Routes())

	for _, path := range paths {
		a := tr.Match(http.MethodGet, path)
		b := re.Match(http.MethodGet, path)
		if a == nil || b == nil {
			assert.Equal(t, a == nil, b == nil, "path %s", path)
			continue
		}
		assert.Equal(t, matchedTag(t, a), matchedTag(t, b), "path %s", path)
		assert.Equal(t, a.Params, b.Params, "path %s", path)
		assert.Equal(t, a.Pattern, b.Pattern, "path %s", path)
	}
}
