// Package transport performs the authenticated requests the token and session
// components depend on.
//
// Client implements the CSRF handshake against the identity service, keeps
// session cookies in a jar, and maps HTTP failures onto the auth error
// taxonomy, redirecting to sign-in or the error page unless the caller
// disabled redirects.
package transport
