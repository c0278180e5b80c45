// Package session keeps the server-side session alive while the user is
// active, warns before it expires, and signs the user out when it lapses,
// including lapses observed by another browser tab.
//
// Monitor is started and stopped by the host. While tracking it listens for
// keypress and mousemove input, polls the session TTL (one request per
// refresh id), and feeds the result to Process, a pure decision function.
// A hidden session watcher frame reports session and refresh id changes made
// by any tab; an optional legacy keep-alive frame contributes its own TTL.
package session
