// Package cookie reads and writes HMAC-signed cookies.
//
//	m, err := cookie.New(cookie.WithSecret(cfg.CookieSecret), cookie.WithSecure(true))
//	m.SetSigned(w, "visitor", visitorID, 365*24*3600)
//	id, err := m.GetSigned(r, "visitor")
package cookie
