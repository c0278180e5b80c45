// Package message holds the plumbing shared by every cross-frame channel:
// the JSON envelope, origin/source validation, posting, and the correlation
// table used to pair requests with their replies.
//
// Channels come in two flavours. Widget channels carry structured envelopes
// tagged with a source and must arrive from the trusted origin. The session
// watcher and legacy keep-alive channels carry JSON strings and are
// validated by origin only.
package message
