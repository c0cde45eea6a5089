package main

import (
	"net/http"

	"github.com/dmitrymomot/onion/core/router"
	"github.com/dmitrymomot/onion/core/session"
	"github.com/dmitrymomot/onion/middleware"
)

// Context is the demo's request context. It embeds router.Context, so
// SetRequest is promoted and the timeout middleware can use it.
type Context struct {
	*router.Context
}

func newContext(w http.ResponseWriter, r *http.Request, params router.Params) *Context {
	return &Context{Context: router.NewContext(w, r, params)}
}

// Session returns the visitor's session loaded by the session middleware.
func (c *Context) Session() session.Session[Visit] {
	return middleware.MustGetSession[Visit](c)
}

func (c *Context) SaveSession(s session.Session[Visit]) {
	middleware.SetSession(c, s)
}

// Visit is the per-visitor session payload.
type Visit struct {
	Count int    `json:"count"`
	Name  string `json:"name,omitempty"`
}
