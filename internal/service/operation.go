package service

import (
	"context"
	"fmt"
	"sync"
)

// State is the progress of an asynchronous write
type State int

const (
	Pending State = iota
	Success
	Failure
)

// String returns the state name used in logs and JSON
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// MarshalText encodes the state as its name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pending":
		*s = Pending
	case "success":
		*s = Success
	case "failure":
		*s = Failure
	default:
		return fmt.Errorf("unknown operation state %q", text)
	}
	return nil
}

// Result is the outcome of a write. ID carries the id assigned or kept by
// inserts and recipe saves. Message is the user-facing failure text and Err
// the underlying cause.
type Result struct {
	State   State  `json:"state"`
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// OK reports whether the write succeeded
func (r Result) OK() bool {
	return r.State == Success
}

// Operation tracks one queued write from pending to success or failure.
// It resolves exactly once.
type Operation struct {
	name string
	once sync.Once
	done chan struct{}

	mu     sync.RWMutex
	result Result
}

func newOperation(name string) *Operation {
	return &Operation{
		name:   name,
		done:   make(chan struct{}),
		result: Result{State: Pending},
	}
}

// Name returns the write kind, such as "save_recipe"
func (o *Operation) Name() string {
	return o.name
}

// Result returns the current state without blocking
func (o *Operation) Result() Result {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.result
}

// Done is closed once the operation leaves the pending state
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation resolves or ctx ends
func (o *Operation) Wait(ctx context.Context) (Result, error) {
	select {
	case <-o.done:
		return o.Result(), nil
	case <-ctx.Done():
		return o.Result(), ctx.Err()
	}
}

func (o *Operation) succeed(id int64) {
	o.resolve(Result{State: Success, ID: id})
}

func (o *Operation) fail(message string, err error) {
	o.resolve(Result{State: Failure, Message: message, Err: err})
}

func (o *Operation) resolve(r Result) {
	o.once.Do(func() {
		o.mu.Lock()
		o.result = r
		o.mu.Unlock()
		close(o.done)
	})
}
