package cli

import "time"

// Options defines the omnibar-host command line.
type Options struct {
	Config   string          `short:"c" long:"config" description:"config URL (file, mem or any afs scheme)"`
	LogLevel string          `short:"l" long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error"`
	JSONLog  bool            `long:"json-log" description:"log in JSON"`
	Mock     bool            `short:"m" long:"mock" description:"return the mock token"`
	Token    TokenCommand    `command:"token" description:"fetch an access token"`
	Watch    WatchCommand    `command:"watch" description:"track the session and report its state"`
	Settings SettingsCommand `command:"settings" description:"print user settings"`
}

// TokenCommand fetches one token.
type TokenCommand struct {
	EnvironmentID   string `short:"e" long:"env" description:"environment id"`
	PermissionScope string `short:"s" long:"scope" description:"permission scope"`
	LegalEntityID   string `long:"le" description:"legal entity id"`
	Force           bool   `short:"f" long:"force" description:"bypass the cache"`
	Claims          bool   `long:"claims" description:"print token claims instead of the token"`
}

// WatchCommand tracks the session.
type WatchCommand struct {
	Duration       time.Duration `short:"d" long:"duration" description:"how long to watch" default:"1m"`
	AllowAnonymous bool          `short:"a" long:"anonymous" description:"allow anonymous sessions"`
}

// SettingsCommand prints user settings.
type SettingsCommand struct{}
