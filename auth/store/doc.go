// Package store defines the token store sitting behind the token cache.
//
// It ships with an in-memory implementation, which is what the cache uses by
// default, and a file store that persists tokens through any afs URL so a
// command line session survives restarts.
package store
