package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/viant/afs"
)

// Local keeps every namespace in one JSON document at an afs URL.
type Local struct {
	URL string
	fs  afs.Service
	mu  sync.Mutex
}

// NewLocal creates a Local store at URL (for example mem://localhost/settings.json).
func NewLocal(URL string) *Local {
	return &Local{URL: URL, fs: afs.New()}
}

// Get returns the whole settings document; a missing document is empty.
func (l *Local) Get(ctx context.Context) (map[string]any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Update shallow-merges values into namespace, keeping other namespaces and
// other keys of namespace.
func (l *Local) Update(ctx context.Context, namespace string, values map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	document, err := l.load(ctx)
	if err != nil {
		return err
	}
	merged, _ := document[namespace].(map[string]any)
	if merged == nil {
		merged = map[string]any{}
	}
	for k, v := range values {
		merged[k] = v
	}
	document[namespace] = merged
	data, err := json.Marshal(document)
	if err != nil {
		return err
	}
	return l.fs.Upload(ctx, l.URL, 0o600, bytes.NewReader(data))
}

func (l *Local) load(ctx context.Context) (map[string]any, error) {
	ret := map[string]any{}
	ok, err := l.fs.Exists(ctx, l.URL)
	if err != nil || !ok {
		return ret, nil
	}
	data, err := l.fs.DownloadWithURL(ctx, l.URL)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ret, nil
	}
	if err = json.Unmarshal(data, &ret); err != nil || ret == nil {
		// a corrupt blob is replaced rather than blocking every update
		return map[string]any{}, nil
	}
	return ret, nil
}
