// Package session implements server-side sessions with pluggable storage.
//
// A Session carries typed application data. The client only holds a random
// token in a signed cookie; the token is rotated on Authenticate and Refresh
// while the session ID stays stable.
//
//	store := session.NewMemoryStore[Cart]()
//	// or session.NewRedisStore[Cart](redisClient)
//	mgr := session.NewManager(store, cookies, session.WithTTL(12*time.Hour))
//
//	sess, err := mgr.Load(ctx, r)
//	sess.SetData(cart)
//	err = mgr.Save(ctx, w, sess)
//
// Save only writes when the session changed. Touch, called by Save, extends
// the expiration at most once per TouchInterval to keep store writes low.
// A session marked with Logout is deleted on Save together with its cookie.
//
// The middleware package wires Load and Save around each request.
package session
