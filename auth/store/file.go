package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/viant/afs"
	"golang.org/x/oauth2"
)

// FileStore persists tokens as a JSON document at an afs URL, while serving
// lookups from memory.
type FileStore struct {
	mu     sync.RWMutex
	URL    string
	fs     afs.Service
	tokens map[TokenKey]*oauth2.Token
}

type fileSnapshot struct {
	Tokens map[string]*oauth2.Token `json:"tokens"`
}

// NewFileStore creates a Store persisted at URL (for example file:///tmp/tokens.json or mem://localhost/tokens.json).
func NewFileStore(ctx context.Context, URL string) (*FileStore, error) {
	ret := &FileStore{URL: URL, fs: afs.New(), tokens: map[TokenKey]*oauth2.Token{}}
	if err := ret.load(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}

func (f *FileStore) LookupToken(key TokenKey) (*oauth2.Token, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	token, ok := f.tokens[key]
	return token, ok
}

func (f *FileStore) AddToken(key TokenKey, token *oauth2.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[key] = token
	return f.save(context.Background())
}

func (f *FileStore) Keys() []TokenKey {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ret := make([]TokenKey, 0, len(f.tokens))
	for k := range f.tokens {
		ret = append(ret, k)
	}
	return ret
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = map[TokenKey]*oauth2.Token{}
	return f.save(context.Background())
}

func (f *FileStore) save(ctx context.Context) error {
	snap := fileSnapshot{Tokens: map[string]*oauth2.Token{}}
	for k, v := range f.tokens {
		snap.Tokens[k.String()] = v
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return f.fs.Upload(ctx, f.URL, 0o600, bytes.NewReader(data))
}

func (f *FileStore) load(ctx context.Context) error {
	ok, err := f.fs.Exists(ctx, f.URL)
	if err != nil || !ok {
		return nil
	}
	data, err := f.fs.DownloadWithURL(ctx, f.URL)
	if err != nil {
		return err
	}
	var snap fileSnapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return err
	}
	for k, v := range snap.Tokens {
		key, err := ParseTokenKey(k)
		if err != nil {
			continue
		}
		f.tokens[key] = v
	}
	return nil
}
