// Package settings stores the user's omnibar settings: remotely for signed-in
// users and in a single local JSON blob otherwise.
package settings
