package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/viant/omnibar/transport"
)

const (
	DefaultRemoteURL = "https://s21anavsvc01blkbapp01.nxt.blackbaud.com/user-settings/"
	DefaultTimeout   = 5 * time.Second
	DefaultDebounce  = 500 * time.Millisecond
)

// ErrTimeout is returned when the settings service does not answer in time.
var ErrTimeout = errors.New("settings request timed out")

// Remote reads and writes settings through the settings service.
type Remote struct {
	transport transport.Transport
	URL       string
	timeout   time.Duration
	debounce  time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
}

// NewRemote creates a Remote store.
func NewRemote(aTransport transport.Transport, URL string, timeout, debounce time.Duration, logger *slog.Logger) *Remote {
	if URL == "" {
		URL = DefaultRemoteURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{transport: aTransport, URL: URL, timeout: timeout, debounce: debounce, logger: logger}
}

type getResult struct {
	settings map[string]any
	err      error
}

// Get reads the settings, giving up after the timeout. A late response is
// discarded.
func (r *Remote) Get(ctx context.Context, token string) (map[string]any, error) {
	result := make(chan getResult, 1)
	go func() {
		data, err := r.transport.RequestWithToken(ctx, r.URL, token, http.MethodGet, nil)
		if err != nil {
			result <- getResult{err: err}
			return
		}
		settings := map[string]any{}
		if err = json.Unmarshal(data, &settings); err != nil {
			result <- getResult{err: err}
			return
		}
		result <- getResult{settings: settings}
	}()
	timer := time.NewTimer(r.timeout)
	defer timer.Stop()
	select {
	case res := <-result:
		return res.settings, res.err
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Update schedules a write of values under namespace. Updates within the
// debounce window replace each other; only the last one is sent.
func (r *Remote) Update(token, namespace string, values map[string]any) {
	body := map[string]any{namespace: values}
	send := func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if _, err := r.transport.RequestWithToken(ctx, r.URL, token, http.MethodPatch, body); err != nil {
			r.logger.Warn("failed to update settings", "namespace", namespace, "error", err)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.pending = send
	r.timer = time.AfterFunc(r.debounce, r.fire)
}

func (r *Remote) fire() {
	r.mu.Lock()
	send := r.pending
	r.pending = nil
	r.timer = nil
	r.mu.Unlock()
	if send != nil {
		send()
	}
}

// Flush sends a scheduled update now.
func (r *Remote) Flush() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mu.Unlock()
	r.fire()
}
