// Package auth defines the vocabulary shared by every token-related component:
// the error taxonomy surfaced by the identity service, the token fetch
// arguments and the cache key derived from them.
//
// The token cache itself lives in the `token` sub-package; persistence lives
// in `store`.
package auth
