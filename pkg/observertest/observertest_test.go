package observertest

import (
	"testing"

	"github.com/vango-dev/reactive/pkg/observer"
)

func TestCollectRecordsReads(t *testing.T) {
	rt := observer.New()
	child := observer.ObjectOf("b", 1)
	state := observer.ObjectOf("a", child)
	ob := rt.Observe(state)

	rec := Collect(rt, func() {
		_ = state.Get("a").(*observer.Object).Get("b")
		_ = state.Get("a")
	})

	// a's property dep, the child's container dep and b's property dep.
	ExpectDeps(t, rec, 3)
	ExpectSubscribed(t, rec, observer.ObserverOf(child).Dep())
	if rec.HasDep(ob.Dep()) {
		t.Error("reading a key must not subscribe to the parent container")
	}
	if rt.Target() != nil {
		t.Error("Collect left a target on the stack")
	}
}

func TestRecorderUpdates(t *testing.T) {
	rt := observer.New()
	state := observer.ObjectOf("n", 0)
	rt.Observe(state)

	rec := Collect(rt, func() { state.Get("n") })
	fired := 0
	rec.OnUpdate = func() { fired++ }

	_ = state.Set("n", 1)
	_ = state.Set("n", 1)
	ExpectUpdates(t, rec, 1)
	if fired != 1 {
		t.Errorf("OnUpdate ran %d times, want 1", fired)
	}

	rec.Reset()
	ExpectUpdates(t, rec, 0)
}

func TestRecorderDedupesDeps(t *testing.T) {
	d := observer.New().NewDep()
	rec := NewRecorder()

	rec.AddDep(d)
	rec.AddDep(d)

	if got := rec.Deps(); len(got) != 1 || got[0] != d {
		t.Errorf("Deps() = %v", got)
	}
}

func TestRecorderIDsAreUnique(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	if a.ID() == b.ID() {
		t.Error("recorders share an ID")
	}
}
