// Package navigator performs the full-page redirects the auth components use
// to send the user to sign-in or to the generic error page.
package navigator

import (
	"net/url"
	"strconv"
	"sync"

	"github.com/viant/omnibar/auth"
)

const (
	DefaultSignInURL  = "https://signin.blackbaud.com/signin/"
	DefaultSignOutURL = "https://signin.blackbaud.com/signin/sign-out"
	DefaultErrorURL   = "https://host.nxt.blackbaud.com/errors/"
)

// Navigator redirects the host page.
type Navigator interface {
	// Navigate replaces the current page with URL.
	Navigate(URL string)
	// RedirectToSignIn sends the user to sign-in, returning to redirectURL afterwards.
	RedirectToSignIn(redirectURL string, signInParams map[string]string)
	// RedirectToSignOut signs the user out, optionally because of inactivity.
	RedirectToSignOut(redirectURL string, inactivity bool)
	// RedirectToError shows the generic error page for code.
	RedirectToError(code auth.Code)
}

// URLs builds redirect targets.
type URLs struct {
	SignInURL  string
	SignOutURL string
	ErrorURL   string
}

// DefaultURLs returns the production redirect targets.
func DefaultURLs() URLs {
	return URLs{SignInURL: DefaultSignInURL, SignOutURL: DefaultSignOutURL, ErrorURL: DefaultErrorURL}
}

// SignIn returns the sign-in URL carrying redirectURL and any extra params.
func (u URLs) SignIn(redirectURL string, params map[string]string) string {
	query := url.Values{}
	query.Set("redirectUrl", redirectURL)
	for k, v := range params {
		query.Set(k, v)
	}
	return u.SignInURL + "?" + query.Encode()
}

// SignOut returns the sign-out URL.
func (u URLs) SignOut(redirectURL string, inactivity bool) string {
	query := url.Values{}
	query.Set("redirectUrl", redirectURL)
	if inactivity {
		query.Set("inactivity", "1")
	}
	return u.SignOutURL + "?" + query.Encode()
}

// Error returns the generic error page URL for code.
func (u URLs) Error(code auth.Code) string {
	query := url.Values{}
	query.Set("errorCode", strconv.Itoa(int(code)))
	return u.ErrorURL + "broken?" + query.Encode()
}

// Redirector is a Navigator that computes URLs and hands them to a single
// navigate function (window.location.href assignment in a browser).
type Redirector struct {
	URLs     URLs
	navigate func(URL string)
}

func (r *Redirector) Navigate(URL string) { r.navigate(URL) }

func (r *Redirector) RedirectToSignIn(redirectURL string, signInParams map[string]string) {
	r.navigate(r.URLs.SignIn(redirectURL, signInParams))
}

func (r *Redirector) RedirectToSignOut(redirectURL string, inactivity bool) {
	r.navigate(r.URLs.SignOut(redirectURL, inactivity))
}

func (r *Redirector) RedirectToError(code auth.Code) {
	r.navigate(r.URLs.Error(code))
}

// New creates a Redirector.
func New(urls URLs, navigate func(URL string)) *Redirector {
	return &Redirector{URLs: urls, navigate: navigate}
}

// Recorder is a Navigator that remembers every navigation instead of leaving
// the page. It backs tests and the command line host.
type Recorder struct {
	*Redirector
	mu   sync.Mutex
	urls []string
}

// NewRecorder creates a Recorder using urls.
func NewRecorder(urls URLs) *Recorder {
	ret := &Recorder{}
	ret.Redirector = New(urls, ret.record)
	return ret
}

func (r *Recorder) record(URL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, URL)
}

// Visited returns a copy of the recorded navigations.
func (r *Recorder) Visited() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

// Reset forgets recorded navigations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = nil
}
