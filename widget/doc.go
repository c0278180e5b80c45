// Package widget hosts the embedded omnibar widgets: the omnibar, the
// vertical omnibar, the toast container, the welcome context picker and the
// inactivity prompt.
//
// Every widget is a Controller: one visible frame, one message listener that
// trusts a single origin and source tag, and the same handshake. When the
// widget reports it is ready the host answers with host-ready first and then
// the widget's own payload. Inbound messages decode into a closed set of
// types and are dispatched in one place.
package widget
