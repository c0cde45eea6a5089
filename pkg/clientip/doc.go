// Package clientip extracts the client address of an HTTP request made
// through proxies, load balancers or CDNs.
//
// Headers are checked in this order, and the first valid address wins:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For, leftmost entry
//  4. X-Real-IP
//  5. RemoteAddr
//
// Addresses are parsed and normalized with net.ParseIP. The unspecified
// address 0.0.0.0 is rejected. When nothing parses, GetIP returns the raw
// RemoteAddr, so it never returns an empty string for a served request.
//
// These headers are client controlled unless a trusted proxy overwrites
// them. Only rely on GetIP for security decisions behind such a proxy.
package clientip
