package mock

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookie = "bbid_session"
	csrfToken     = "csrf-token-value"
)

// IdentityService simulates the identity service.
type IdentityService struct {
	Server     *httptest.Server
	PrivateKey *rsa.PrivateKey
	// ExpiresIn is the token lifetime returned by /token, in seconds.
	ExpiresIn int
	// TokenDelay delays every /token response.
	TokenDelay time.Duration
	// UserID is the token subject.
	UserID string

	mu           sync.Mutex
	tokenBodies  []map[string]string
	ttl          *int
	settings     map[string]any
	tokenCalls   int32
	ttlCalls     int32
	renewCalls   int32
	issued       int32
	settingsPuts int32
	tokenStatus  int32
}

// FailTokens makes /token fail with status; 0 restores success.
func (s *IdentityService) FailTokens(status int) {
	atomic.StoreInt32(&s.tokenStatus, int32(status))
}

// NewIdentityService starts the service; call Close when done.
func NewIdentityService() (*IdentityService, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	ttl := 1200
	ret := &IdentityService{PrivateKey: key, ExpiresIn: 3600, UserID: "test_user", ttl: &ttl, settings: map[string]any{}}
	ret.Server = httptest.NewServer(&handler{service: ret})
	return ret, nil
}

// URL returns the service base URL.
func (s *IdentityService) URL() string { return s.Server.URL }

// Close stops the server.
func (s *IdentityService) Close() { s.Server.Close() }

// TokenCalls returns the number of /token requests served.
func (s *IdentityService) TokenCalls() int { return int(atomic.LoadInt32(&s.tokenCalls)) }

// TTLCalls returns the number of /session/ttl requests served.
func (s *IdentityService) TTLCalls() int { return int(atomic.LoadInt32(&s.ttlCalls)) }

// RenewCalls returns the number of /session/renew requests served.
func (s *IdentityService) RenewCalls() int { return int(atomic.LoadInt32(&s.renewCalls)) }

// SettingsUpdates returns the number of settings updates served.
func (s *IdentityService) SettingsUpdates() int { return int(atomic.LoadInt32(&s.settingsPuts)) }

// TokenBodies returns the JSON bodies posted to /token.
func (s *IdentityService) TokenBodies() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.tokenBodies...)
}

// SetTTL sets the session TTL in seconds; nil simulates an expired session.
func (s *IdentityService) SetTTL(ttl *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = ttl
}

// Settings returns the stored remote settings.
func (s *IdentityService) Settings() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := map[string]any{}
	for k, v := range s.settings {
		ret[k] = v
	}
	return ret
}

// SetSettings replaces the stored remote settings.
func (s *IdentityService) SetSettings(settings map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// createJWT creates a signed access token for the configured user.
func (s *IdentityService) createJWT(expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":         s.Server.URL,
		"sub":         s.UserID,
		"1bb.user_id": s.UserID,
		"email":       s.UserID + "@example.com",
		"exp":         now.Add(expiry).Unix(),
		"iat":         now.Unix(),
		"jti":         fmt.Sprintf("t%d", atomic.AddInt32(&s.issued, 1)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.PrivateKey)
}

type handler struct {
	service *IdentityService
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/session/csrf":
		h.csrf(w, r)
	case "/token", "/oauth2/token":
		h.token(w, r)
	case "/session/ttl":
		h.ttl(w, r)
	case "/session/renew":
		h.renew(w, r)
	case "/settings":
		h.userSettings(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *handler) csrf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "session", Path: "/"})
	writeJSON(w, map[string]string{"csrf_token": csrfToken})
}

func (h *handler) token(w http.ResponseWriter, r *http.Request) {
	s := h.service
	atomic.AddInt32(&s.tokenCalls, 1)
	if s.TokenDelay > 0 {
		time.Sleep(s.TokenDelay)
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if status := int(atomic.LoadInt32(&s.tokenStatus)); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if r.Header.Get("X-CSRF") != csrfToken {
		http.Error(w, "missing csrf token", http.StatusUnauthorized)
		return
	}
	if _, err := r.Cookie(sessionCookie); err != nil {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}
	body := map[string]string{}
	data, _ := io.ReadAll(r.Body)
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			http.Error(w, "Invalid body", http.StatusBadRequest)
			return
		}
	}
	s.mu.Lock()
	s.tokenBodies = append(s.tokenBodies, body)
	s.mu.Unlock()

	accessToken, err := s.createJWT(time.Duration(s.ExpiresIn) * time.Second)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"access_token": accessToken, "expires_in": s.ExpiresIn})
}

func (h *handler) ttl(w http.ResponseWriter, r *http.Request) {
	s := h.service
	atomic.AddInt32(&s.ttlCalls, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl == nil {
		writeJSON(w, nil)
		return
	}
	writeJSON(w, *s.ttl)
}

func (h *handler) renew(w http.ResponseWriter, r *http.Request) {
	s := h.service
	atomic.AddInt32(&s.renewCalls, 1)
	if r.Header.Get("X-CSRF") != csrfToken {
		http.Error(w, "missing csrf token", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]any{})
}

func (h *handler) userSettings(w http.ResponseWriter, r *http.Request) {
	s := h.service
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.Settings())
	case http.MethodPatch:
		update := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "Invalid body", http.StatusBadRequest)
			return
		}
		atomic.AddInt32(&s.settingsPuts, 1)
		s.mu.Lock()
		for k, v := range update {
			s.settings[k] = v
		}
		s.mu.Unlock()
		writeJSON(w, map[string]any{})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
