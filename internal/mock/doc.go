// Package mock provides an in-process identity service for tests: CSRF
// handshake, token issuance, session TTL/renew and user settings endpoints,
// with counters and switches to simulate failures.
package mock
