package session

import "time"

// Callbacks are the decisions Process can make. Nil callbacks are skipped.
type Callbacks struct {
	RedirectForInactivity func()
	ShowInactivityPrompt  func()
	CloseInactivityPrompt func()
	RenewSession          func()
}

// Args is the input of Process.
type Args struct {
	Now time.Time
	// ExpirationDate is nil once the session is gone.
	ExpirationDate           *time.Time
	LastActivity             time.Time
	AllowAnonymous           bool
	PromptShown              bool
	InactivityPromptDuration time.Duration
	MaxSessionAge            time.Duration
	MinRenewalAge            time.Duration
	Callbacks
}

// Process decides what to do with the session at args.Now.
func Process(args Args) {
	if args.ExpirationDate == nil {
		// the watcher broadcast drives the redirect
		return
	}
	expiration := *args.ExpirationDate
	if args.Now.After(expiration) {
		call(args.RedirectForInactivity)
		return
	}
	promptDate := expiration.Add(-args.InactivityPromptDuration)
	renewDate := expiration.Add(-args.MaxSessionAge).Add(args.MinRenewalAge)
	if args.PromptShown {
		if args.Now.Before(promptDate) {
			call(args.CloseInactivityPrompt)
		}
		return
	}
	switch {
	case args.LastActivity.After(renewDate):
		call(args.RenewSession)
	case !args.AllowAnonymous && args.Now.After(promptDate):
		call(args.ShowInactivityPrompt)
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
