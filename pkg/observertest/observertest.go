package observertest

import (
	"slices"
	"testing"

	"github.com/vango-dev/reactive/pkg/observer"
)

// Recorder is an observer.Subscriber that records what happens to it.
type Recorder struct {
	id      uint64
	updates int
	deps    []*observer.Dep

	// OnUpdate, if set, runs after each recorded update.
	OnUpdate func()
}

// NewRecorder returns a Recorder with a fresh ID.
func NewRecorder() *Recorder {
	return &Recorder{id: observer.NextID()}
}

// Collect runs fn with a new Recorder as the runtime's active target and
// returns the Recorder.
func Collect(rt *observer.Runtime, fn func()) *Recorder {
	r := NewRecorder()
	rt.WithTarget(r, fn)
	return r
}

// ID implements observer.Subscriber.
func (r *Recorder) ID() uint64 {
	return r.id
}

// AddDep implements observer.Subscriber.
func (r *Recorder) AddDep(d *observer.Dep) {
	if !slices.Contains(r.deps, d) {
		r.deps = append(r.deps, d)
	}
}

// Update implements observer.Subscriber.
func (r *Recorder) Update() {
	r.updates++
	if r.OnUpdate != nil {
		r.OnUpdate()
	}
}

// Updates returns how many times Update was called.
func (r *Recorder) Updates() int {
	return r.updates
}

// Deps returns the deps the recorder was registered with, in order.
func (r *Recorder) Deps() []*observer.Dep {
	return slices.Clone(r.deps)
}

// HasDep reports whether the recorder was registered with d.
func (r *Recorder) HasDep(d *observer.Dep) bool {
	return slices.Contains(r.deps, d)
}

// Reset clears the update count.
func (r *Recorder) Reset() {
	r.updates = 0
}

// ExpectUpdates fails the test unless r saw exactly want updates.
func ExpectUpdates(t testing.TB, r *Recorder, want int) {
	t.Helper()
	if got := r.Updates(); got != want {
		t.Errorf("expected %d updates, got %d", want, got)
	}
}

// ExpectDeps fails the test unless r collected exactly want deps.
func ExpectDeps(t testing.TB, r *Recorder, want int) {
	t.Helper()
	if got := len(r.deps); got != want {
		t.Errorf("expected %d deps, got %d", want, got)
	}
}

// ExpectSubscribed fails the test unless r and d are linked both ways.
func ExpectSubscribed(t testing.TB, r *Recorder, d *observer.Dep) {
	t.Helper()
	if !r.HasDep(d) {
		t.Errorf("expected recorder %d to hold dep %d", r.id, d.ID())
	}
	if !slices.ContainsFunc(d.Subscribers(), func(s observer.Subscriber) bool { return s.ID() == r.id }) {
		t.Errorf("expected dep %d to list recorder %d", d.ID(), r.id)
	}
}
