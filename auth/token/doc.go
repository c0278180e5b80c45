// Package token implements the host-side token cache and the provider that
// decides how a token is fetched.
//
// Cache keeps one entry per (environment, permission scope) and guarantees at
// most one in-flight fetch per entry; concurrent callers share that fetch's
// outcome. Provider talks to the identity service directly when the page is
// served from the trusted first-party domain and through the cross-domain
// bridge otherwise.
package token
