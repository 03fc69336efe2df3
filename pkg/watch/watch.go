// Package watch provides a synchronous subscriber for the observer runtime.
//
// A Watcher evaluates a getter while registered as the runtime's active
// target, so every reactive property the getter reads subscribes the
// watcher. When one of those properties changes, the watcher re-runs the
// getter immediately and calls its callback with the new and old values.
//
//	w := watch.New(rt, func() any { return state.Get("count") },
//	    func(newVal, oldVal any) { log.Println(oldVal, "->", newVal) })
//	defer w.Teardown()
//
// There is no scheduler: updates run inside the Notify call that caused
// them.
package watch

import (
	"github.com/vango-dev/reactive/pkg/observer"
)

// Callback receives the getter's new and previous results.
type Callback func(newVal, oldVal any)

// Option configures a Watcher.
type Option func(*Watcher)

// Deep makes the watcher read every nested property of its value, so
// changes anywhere below it fire the callback.
func Deep() Option {
	return func(w *Watcher) {
		w.deep = true
	}
}

// Immediate calls the callback once with the initial value.
func Immediate() Option {
	return func(w *Watcher) {
		w.immediate = true
	}
}

// Watcher re-evaluates a getter whenever a dependency it read changes.
// Watchers are not safe for concurrent use; they share the runtime's
// single-threaded model.
type Watcher struct {
	id     uint64
	rt     *observer.Runtime
	getter func() any
	cb     Callback

	deep      bool
	immediate bool
	active    bool

	value any

	// deps are the dependencies of the last completed run; newDeps are
	// collected by the run in progress.
	deps      []*observer.Dep
	depIDs    map[uint64]struct{}
	newDeps   []*observer.Dep
	newDepIDs map[uint64]struct{}
}

// New creates a watcher and evaluates getter once to collect its initial
// dependencies. cb may be nil.
func New(rt *observer.Runtime, getter func() any, cb Callback, opts ...Option) *Watcher {
	w := &Watcher{
		id:        observer.NextID(),
		rt:        rt,
		getter:    getter,
		cb:        cb,
		active:    true,
		depIDs:    make(map[uint64]struct{}),
		newDepIDs: make(map[uint64]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.value = w.get()
	if w.immediate && w.cb != nil {
		w.cb(w.value, nil)
	}
	return w
}

// ID implements observer.Subscriber.
func (w *Watcher) ID() uint64 {
	return w.id
}

// AddDep implements observer.Subscriber. It records d for the run in
// progress.
func (w *Watcher) AddDep(d *observer.Dep) {
	id := d.ID()
	if _, ok := w.newDepIDs[id]; ok {
		return
	}
	w.newDepIDs[id] = struct{}{}
	w.newDeps = append(w.newDeps, d)
	if _, ok := w.depIDs[id]; !ok {
		d.AddSub(w)
	}
}

// Update implements observer.Subscriber. It re-runs the getter and fires
// the callback if the value changed, if the value is a container (which
// may have been mutated in place), or if the watcher is deep.
func (w *Watcher) Update() {
	if !w.active {
		return
	}
	value := w.get()
	if observer.Identical(value, w.value) && !observer.IsContainer(value) && !w.deep {
		return
	}
	old := w.value
	w.value = value
	if w.cb != nil {
		w.cb(value, old)
	}
}

// Value returns the result of the last run.
func (w *Watcher) Value() any {
	return w.value
}

// Deps returns the dependencies collected by the last run.
func (w *Watcher) Deps() []*observer.Dep {
	return append([]*observer.Dep(nil), w.deps...)
}

// Active reports whether the watcher still receives updates.
func (w *Watcher) Active() bool {
	return w.active
}

// Teardown unsubscribes the watcher from every dependency. It is safe to
// call more than once.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	for _, d := range w.deps {
		d.RemoveSub(w)
	}
	w.deps = nil
	clear(w.depIDs)
	w.active = false
}

func (w *Watcher) get() any {
	var value any
	w.rt.WithTarget(w, func() {
		value = w.getter()
		if w.deep {
			traverse(value, make(map[any]struct{}))
		}
	})
	w.cleanupDeps()
	return value
}

// cleanupDeps drops subscriptions the last run no longer read and swaps
// the new dependency set in.
func (w *Watcher) cleanupDeps() {
	for _, d := range w.deps {
		if _, ok := w.newDepIDs[d.ID()]; !ok {
			d.RemoveSub(w)
		}
	}
	w.deps, w.newDeps = w.newDeps, w.deps[:0]
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	clear(w.newDepIDs)
}

// traverse reads every nested property of v so that the active watcher
// subscribes to all of them.
func traverse(v any, seen map[any]struct{}) {
	if !observer.IsContainer(v) {
		return
	}
	if _, ok := seen[v]; ok {
		return
	}
	seen[v] = struct{}{}

	switch c := v.(type) {
	case *observer.Object:
		if c.IsRaw() {
			return
		}
		for _, k := range c.Keys() {
			traverse(c.Get(k), seen)
		}
	case *observer.Array:
		if c.IsRaw() {
			return
		}
		for i := 0; i < c.Len(); i++ {
			traverse(c.At(i), seen)
		}
	}
}
