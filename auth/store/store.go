package store

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

// sentinel used when an environment or permission scope is absent.
const sentinel = "-"

// TokenKey identifies a cache entry.
type TokenKey struct {
	EnvironmentID   string
	PermissionScope string
}

// DefaultKey is used when neither environment nor permission scope is given.
var DefaultKey = TokenKey{EnvironmentID: sentinel, PermissionScope: sentinel}

// String encodes the key with both fields quoted, so ids containing the
// separator cannot collide.
func (k TokenKey) String() string {
	return strconv.Quote(k.EnvironmentID) + "|" + strconv.Quote(k.PermissionScope)
}

// ParseTokenKey decodes a key produced by TokenKey.String.
func ParseTokenKey(encoded string) (TokenKey, error) {
	environment, err := strconv.QuotedPrefix(encoded)
	if err != nil {
		return TokenKey{}, fmt.Errorf("invalid token key %q: %w", encoded, err)
	}
	rest, ok := strings.CutPrefix(encoded[len(environment):], "|")
	if !ok {
		return TokenKey{}, fmt.Errorf("invalid token key %q: missing separator", encoded)
	}
	ret := TokenKey{}
	if ret.EnvironmentID, err = strconv.Unquote(environment); err != nil {
		return TokenKey{}, fmt.Errorf("invalid token key %q: %w", encoded, err)
	}
	if ret.PermissionScope, err = strconv.Unquote(rest); err != nil {
		return TokenKey{}, fmt.Errorf("invalid token key %q: %w", encoded, err)
	}
	return ret, nil
}

// Store is a pluggable persistence layer for tokens.
type Store interface {
	LookupToken(key TokenKey) (*oauth2.Token, bool)
	AddToken(key TokenKey, token *oauth2.Token) error
	Keys() []TokenKey
	Clear() error
}

type memoryStore struct {
	mu     sync.RWMutex
	tokens map[TokenKey]*oauth2.Token
}

func (m *memoryStore) LookupToken(key TokenKey) (*oauth2.Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[key]
	return token, ok
}

func (m *memoryStore) AddToken(key TokenKey, token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}

func (m *memoryStore) Keys() []TokenKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make([]TokenKey, 0, len(m.tokens))
	for k := range m.tokens {
		ret = append(ret, k)
	}
	return ret
}

func (m *memoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = map[TokenKey]*oauth2.Token{}
	return nil
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{tokens: map[TokenKey]*oauth2.Token{}}
}
