// Package bridge obtains tokens for pages served from third-party domains.
//
// Pages whose origin is not the trusted first-party domain cannot reach the
// identity service with first-party cookies, so the Bridge loads a hidden
// iframe from the identity service and asks it for tokens over postMessage.
// One iframe is shared by every call; each request carries its own id and is
// settled only by its own reply.
package bridge
