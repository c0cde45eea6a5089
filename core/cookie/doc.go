// Package cookie reads and writes HTTP cookies, optionally signed with
// HMAC-SHA256 or sealed with AES-256-GCM.
//
// Each configured secret is stretched with HKDF-SHA256 into separate signing
// and encryption keys. The first secret protects new cookies; all secrets are
// accepted when reading, which allows rotating secrets without logging users
// out:
//
//	m, err := cookie.New([]string{newSecret, oldSecret},
//		cookie.WithDefaults(cookie.WithSecure(true)),
//	)
//
//	_ = m.SetSigned(w, "theme", "dark", cookie.WithMaxAge(86400))
//	theme, err := m.GetSigned(r, "theme")
//	if errors.Is(err, cookie.ErrInvalidSignature) {
//		// tampered or signed with an unknown secret
//	}
//
// Signatures and ciphertexts are bound to the cookie name, so a value cannot
// be moved from one cookie to another.
//
// Flash values are encrypted cookies deleted on first read:
//
//	_ = m.SetFlash(w, "notice", "Saved")
//	var notice string
//	_ = m.GetFlash(w, r, "notice", &notice)
//
// Configuration can be loaded from the environment:
//
//	var cfg cookie.Config
//	config.MustLoad(&cfg)
//	m, err := cookie.NewFromConfig(cfg)
package cookie
