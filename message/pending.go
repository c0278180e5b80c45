package message

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTimeout is returned when no reply arrives within the table timeout.
var ErrTimeout = errors.New("message: reply timed out")

// ErrNotFound is returned when completing an unknown or settled request.
var ErrNotFound = errors.New("message: pending request not found")

// Result is the settled value of a pending request.
type Result[T any] struct {
	Value T
	Err   error
}

// Pending is an outstanding request awaiting its reply.
type Pending[T any] struct {
	ID        string
	CreatedAt time.Time
	done      chan Result[T]
}

// Table correlates requests with replies by generated id. Every request
// settles exactly once: by its reply, by Fail, by timeout, or by the waiter's
// context.
type Table[T any] struct {
	mu      sync.Mutex
	byID    map[string]*Pending[T]
	order   []string
	timeout time.Duration
}

// NewTable creates a Table whose requests time out after timeout (0 disables).
func NewTable[T any](timeout time.Duration) *Table[T] {
	return &Table[T]{byID: map[string]*Pending[T]{}, timeout: timeout}
}

// Open registers a new request with a generated id.
func (t *Table[T]) Open() *Pending[T] {
	p := &Pending[T]{ID: uuid.NewString(), CreatedAt: time.Now(), done: make(chan Result[T], 1)}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byID[p.ID] = p
	t.order = append(t.order, p.ID)
	return p
}

// Complete settles id with value.
func (t *Table[T]) Complete(id string, value T) error {
	return t.settle(id, Result[T]{Value: value})
}

// Fail settles id with err.
func (t *Table[T]) Fail(id string, err error) error {
	return t.settle(id, Result[T]{Err: err})
}

// Oldest returns the id of the longest outstanding request.
func (t *Table[T]) Oldest() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.order) == 0 {
		return "", false
	}
	return t.order[0], true
}

// FailAll settles every outstanding request with err.
func (t *Table[T]) FailAll(err error) {
	t.mu.Lock()
	pendings := make([]*Pending[T], 0, len(t.byID))
	for _, id := range t.order {
		pendings = append(pendings, t.byID[id])
	}
	t.byID = map[string]*Pending[T]{}
	t.order = nil
	t.mu.Unlock()
	for _, p := range pendings {
		p.done <- Result[T]{Err: err}
	}
}

// Len returns the number of outstanding requests.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byID)
}

// Wait blocks until p settles, the table timeout elapses, or ctx is done.
func (t *Table[T]) Wait(ctx context.Context, p *Pending[T]) (T, error) {
	var timeout <-chan time.Time
	if t.timeout > 0 {
		timer := time.NewTimer(t.timeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case result := <-p.done:
		return result.Value, result.Err
	case <-timeout:
		return t.abandon(p, ErrTimeout)
	case <-ctx.Done():
		return t.abandon(p, ctx.Err())
	}
}

// abandon removes p, unless a reply raced in, in which case the reply wins.
func (t *Table[T]) abandon(p *Pending[T], err error) (T, error) {
	if t.remove(p.ID) == nil {
		result := <-p.done
		return result.Value, result.Err
	}
	var zero T
	return zero, err
}

func (t *Table[T]) settle(id string, result Result[T]) error {
	p := t.remove(id)
	if p == nil {
		return ErrNotFound
	}
	p.done <- result
	return nil
}

func (t *Table[T]) remove(id string) *Pending[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.byID[id]
	if !ok {
		return nil
	}
	delete(t.byID, id)
	for i, candidate := range t.order {
		if candidate == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return p
}
