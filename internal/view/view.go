// Package view holds the content renderer's state: a single-owner view that
// moves from Loading to Loaded (or Failed) after one read of the document.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/Zachkp/portfolio/internal/portfolio"
)

// State is the lifecycle position of a view.
type State int

const (
	// Loading is the initial state: nothing fetched yet, placeholder shown.
	Loading State = iota
	// Loaded is terminal: the document is held and never mutated.
	Loaded
	// Failed means the last read or validation failed. A retry is allowed.
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrClosed is returned when the view was torn down before or during a load.
	ErrClosed = errors.New("view closed")
	// ErrAlreadyLoaded is returned by Load on a view that already holds a document.
	ErrAlreadyLoaded = errors.New("view already loaded")
	// ErrBusy is returned when a load is already in flight.
	ErrBusy = errors.New("view load in progress")
)

// Snapshot is an immutable copy of a view's state for rendering.
type Snapshot struct {
	ID       string
	State    State
	Document *portfolio.Document
	Err      error
}

func (s Snapshot) IsLoaded() bool { return s.State == Loaded }

func (s Snapshot) IsFailed() bool { return s.State == Failed }

// Problems returns the validation problems behind a failed load, or nil
// when the failure was not a validation error.
func (s Snapshot) Problems() []portfolio.Problem {
	var verr *portfolio.ValidationError
	if errors.As(s.Err, &verr) {
		return verr.Problems
	}
	return nil
}

// View owns the state of one page view.
type View struct {
	id string

	mu      sync.Mutex
	state   State
	doc     *portfolio.Document
	err     error
	loading bool
	closed  bool
	cancel  context.CancelFunc
}

// New returns a view in the Loading state.
func New(id string) *View {
	return &View{id: id}
}

// ID returns the view identifier.
func (v *View) ID() string {
	return v.id
}

// Load performs one read of the document from src and transitions the view.
// The read is cancelled when ctx ends or the view is closed; a result that
// arrives after Close is discarded and ErrClosed is returned.
func (v *View) Load(ctx context.Context, src portfolio.Source) error {
	v.mu.Lock()
	switch {
	case v.closed:
		v.mu.Unlock()
		return ErrClosed
	case v.state == Loaded:
		v.mu.Unlock()
		return ErrAlreadyLoaded
	case v.loading:
		v.mu.Unlock()
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	v.loading = true
	v.cancel = cancel
	v.mu.Unlock()
	defer cancel()

	doc, err := portfolio.Load(ctx, src)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	v.cancel = nil
	if v.closed {
		return ErrClosed
	}
	if err != nil {
		v.state = Failed
		v.err = err
		return err
	}
	v.state = Loaded
	v.doc = doc
	v.err = nil
	return nil
}

// Close tears the view down, cancelling any in-flight load. It is safe to
// call more than once.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.cancel != nil {
		v.cancel()
	}
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot{ID: v.id, State: v.state, Document: v.doc, Err: v.err}
}
