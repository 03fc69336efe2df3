package observer

import (
	"errors"
	"math"
	"testing"
)

func TestReadRegistersOnce(t *testing.T) {
	rt := New()
	obj := ObjectOf("p", 1)
	rt.Observe(obj)
	s := newTestSubscriber()

	rt.WithTarget(s, func() {
		obj.Get("p")
		obj.Get("p")
		obj.Get("p")
	})

	if len(s.deps) != 1 {
		t.Fatalf("deps = %d, want 1", len(s.deps))
	}
	if s.deps[0].Len() != 1 {
		t.Errorf("subscribers on p = %d, want 1", s.deps[0].Len())
	}
}

func TestReadWithoutTargetCollectsNothing(t *testing.T) {
	rt := New()
	obj := ObjectOf("p", 1)
	rt.Observe(obj)

	if got := obj.Get("p"); got != 1 {
		t.Errorf("Get(p) = %v, want 1", got)
	}

	s := newTestSubscriber()
	if err := obj.Set("p", 2); err != nil {
		t.Fatal(err)
	}
	if s.updates != 0 {
		t.Errorf("nobody subscribed, updates = %d", s.updates)
	}
}

func TestWriteNotifies(t *testing.T) {
	tests := []struct {
		name    string
		initial any
		next    any
		want    int
	}{
		{name: "new value", initial: 1, next: 2, want: 1},
		{name: "same value", initial: 1, next: 1, want: 0},
		{name: "same string", initial: "a", next: "a", want: 0},
		{name: "NaN to NaN", initial: math.NaN(), next: math.NaN(), want: 0},
		{name: "NaN to number", initial: math.NaN(), next: 1.0, want: 1},
		{name: "nil to nil", initial: nil, next: nil, want: 0},
		{name: "int to float", initial: 1, next: 1.0, want: 1},
		{name: "nil to value", initial: nil, next: "x", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := New()
			obj := ObjectOf("p", tt.initial)
			rt.Observe(obj)
			a, b := newTestSubscriber(), newTestSubscriber()
			rt.WithTarget(a, func() { obj.Get("p") })
			rt.WithTarget(b, func() { obj.Get("p") })

			if err := obj.Set("p", tt.next); err != nil {
				t.Fatal(err)
			}

			if a.updates != tt.want || b.updates != tt.want {
				t.Errorf("updates = %d, %d, want %d", a.updates, b.updates, tt.want)
			}
		})
	}
}

func TestWriteSameContainerIsNoop(t *testing.T) {
	rt := New()
	child := ObjectOf("x", 1)
	obj := ObjectOf("child", child)
	rt.Observe(obj)
	s := newTestSubscriber()
	rt.WithTarget(s, func() { obj.Get("child") })

	_ = obj.Set("child", child)
	if s.updates != 0 {
		t.Errorf("assigning the same container notified %d times", s.updates)
	}

	_ = obj.Set("child", ObjectOf("x", 1))
	if s.updates != 1 {
		t.Errorf("assigning an equal but distinct container notified %d times, want 1", s.updates)
	}
}

func TestEndToEndNestedObject(t *testing.T) {
	rt := New()
	child := ObjectOf("b", 1)
	root := ObjectOf("a", child)
	rt.Observe(root)

	s := newTestSubscriber()
	rt.WithTarget(s, func() {
		_ = root.Get("a").(*Object).Get("b")
	})

	// a's property Dep, the child's container Dep and b's property Dep
	if len(s.deps) != 3 {
		t.Fatalf("deps = %d, want 3", len(s.deps))
	}
	if !s.hasDep(ObserverOf(child).Dep()) {
		t.Error("subscriber should depend on the child's container Dep")
	}

	next := ObjectOf("b", 2)
	if err := root.Set("a", next); err != nil {
		t.Fatal(err)
	}
	if s.updates != 1 {
		t.Fatalf("reassigning a notified %d times, want 1", s.updates)
	}
	if ObserverOf(next) == nil {
		t.Fatal("the new child should be observed on assignment")
	}

	fresh := newTestSubscriber()
	var b any
	rt.WithTarget(fresh, func() {
		b = root.Get("a").(*Object).Get("b")
	})
	if b != 2 {
		t.Errorf("root.a.b = %v, want 2", b)
	}
	if !fresh.hasDep(ObserverOf(next).Dep()) {
		t.Error("fresh collection should target the new child")
	}
	if fresh.hasDep(ObserverOf(child).Dep()) {
		t.Error("fresh collection must not touch the old child")
	}

	_ = next.Set("b", 3)
	if fresh.updates != 1 {
		t.Errorf("writing the new child's b notified %d times, want 1", fresh.updates)
	}
}

func TestArrayReadDependsOnElements(t *testing.T) {
	rt := New()
	elem := ObjectOf("x", 1)
	deepElem := ObjectOf("y", 2)
	nested := NewArray(deepElem)
	list := NewArray(elem, nested, 3)
	root := ObjectOf("list", list)
	rt.Observe(root)

	s := newTestSubscriber()
	rt.WithTarget(s, func() { root.Get("list") })

	for name, v := range map[string]any{"list": list, "elem": elem, "nested": nested, "deepElem": deepElem} {
		if !s.hasDep(ObserverOf(v).Dep()) {
			t.Errorf("subscriber should depend on %s's container Dep", name)
		}
	}

	// A write through Set on an element object reaches the subscriber via
	// the element's container Dep.
	if _, err := rt.Set(elem, "z", 9); err != nil {
		t.Fatal(err)
	}
	if s.updates != 1 {
		t.Errorf("updates = %d, want 1", s.updates)
	}
}

func TestArrayReadWithCycle(t *testing.T) {
	rt := New()
	outer := NewArray()
	inner := NewArray(outer)
	outer.Push(inner, outer)
	root := ObjectOf("list", outer)
	rt.Observe(root)

	s := newTestSubscriber()
	rt.WithTarget(s, func() { root.Get("list") })

	if !s.hasDep(ObserverOf(inner).Dep()) {
		t.Error("subscriber should depend on the inner array")
	}
}

func TestGetterOnlyAccessor(t *testing.T) {
	rt := New()
	obj := NewObject()
	calls := 0
	err := obj.DefineProperty("computed", Descriptor{
		Get:          func() any { calls++; return calls },
		Enumerable:   true,
		Configurable: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	rt.Observe(obj)
	if calls != 0 {
		t.Fatalf("getter-only accessor was read %d times during observation", calls)
	}

	s := newTestSubscriber()
	var first, second any
	rt.WithTarget(s, func() {
		first = obj.Get("computed")
		second = obj.Get("computed")
	})
	if first != 1 || second != 2 {
		t.Errorf("reads = %v, %v, want 1, 2 (getter re-invoked)", first, second)
	}

	if err := obj.Set("computed", 100); err != nil {
		t.Fatal(err)
	}
	if s.updates != 0 {
		t.Errorf("write to getter-only accessor notified %d times", s.updates)
	}
	if got := obj.Get("computed"); got == 100 {
		t.Error("write to getter-only accessor must be ignored")
	}
}

func TestAccessorPairDelegation(t *testing.T) {
	rt := New()
	obj := NewObject()
	backing := any(ObjectOf("n", 1))
	setCalls := 0
	err := obj.DefineProperty("p", Descriptor{
		Get:          func() any { return backing },
		Set:          func(v any) { setCalls++; backing = v },
		Enumerable:   true,
		Configurable: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	rt.Observe(obj)
	if ObserverOf(backing) == nil {
		t.Fatal("value behind a getter/setter pair should be observed")
	}

	s := newTestSubscriber()
	rt.WithTarget(s, func() { obj.Get("p") })

	_ = obj.Set("p", "next")
	if setCalls != 1 || backing != "next" {
		t.Errorf("setter calls = %d, backing = %v", setCalls, backing)
	}
	if s.updates != 1 {
		t.Errorf("updates = %d, want 1", s.updates)
	}

	_ = obj.Set("p", "next")
	if setCalls != 1 || s.updates != 1 {
		t.Error("writing the current value must not reach the setter or notify")
	}
}

func TestSetterOnlyAccessor(t *testing.T) {
	rt := New()
	obj := NewObject()
	var got any
	_ = obj.DefineProperty("sink", Descriptor{
		Set:          func(v any) { got = v },
		Enumerable:   true,
		Configurable: true,
	})
	rt.Observe(obj)

	s := newTestSubscriber()
	rt.WithTarget(s, func() { obj.Get("sink") })
	_ = obj.Set("sink", 5)

	if got != 5 {
		t.Errorf("setter received %v, want 5", got)
	}
	if s.updates != 1 {
		t.Errorf("updates = %d, want 1", s.updates)
	}
}

func TestNonConfigurablePropertyIsSkipped(t *testing.T) {
	rt := New()
	obj := NewObject()
	_ = obj.DefineProperty("fixed", Descriptor{Value: 1, Writable: true, Enumerable: true})
	rt.Observe(obj)

	s := newTestSubscriber()
	rt.WithTarget(s, func() { obj.Get("fixed") })
	if len(s.deps) != 0 {
		t.Errorf("non-configurable property registered %d deps", len(s.deps))
	}

	if err := obj.Set("fixed", 2); err != nil {
		t.Fatalf("writing a non-configurable writable property failed: %v", err)
	}
	if obj.Get("fixed") != 2 || s.updates != 0 {
		t.Errorf("fixed = %v, updates = %d", obj.Get("fixed"), s.updates)
	}
}

func TestDefineReactiveShallow(t *testing.T) {
	rt := New()
	obj := NewObject()
	child := ObjectOf("x", 1)

	if err := rt.DefineReactive(obj, "data", WithValue(child), Shallow()); err != nil {
		t.Fatal(err)
	}
	if ObserverOf(child) != nil {
		t.Error("shallow property must not observe its value")
	}

	s := newTestSubscriber()
	rt.WithTarget(s, func() { obj.Get("data") })
	next := ObjectOf("x", 2)
	_ = obj.Set("data", next)

	if s.updates != 1 {
		t.Errorf("updates = %d, want 1", s.updates)
	}
	if ObserverOf(next) != nil {
		t.Error("shallow property must not observe assigned values")
	}
}

func TestDefineReactiveCustomSetter(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		want       int
	}{
		{name: "development", production: false, want: 1},
		{name: "production", production: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := New(WithProduction(tt.production))
			obj := NewObject()
			calls := 0
			if err := rt.DefineReactive(obj, "prop", WithValue(1), WithCustomSetter(func() { calls++ })); err != nil {
				t.Fatal(err)
			}

			_ = obj.Set("prop", 1)
			_ = obj.Set("prop", 2)

			if calls != tt.want {
				t.Errorf("custom setter calls = %d, want %d", calls, tt.want)
			}
		})
	}
}

func TestDefineReactiveReadsCurrentValue(t *testing.T) {
	rt := New()
	obj := ObjectOf("x", "kept")

	if err := rt.DefineReactive(obj, "x"); err != nil {
		t.Fatal(err)
	}
	if obj.Get("x") != "kept" {
		t.Errorf("x = %v, want kept", obj.Get("x"))
	}
	desc, _ := obj.OwnPropertyDescriptor("x")
	if !desc.IsAccessor() || !desc.Enumerable || !desc.Configurable {
		t.Errorf("descriptor = %+v, want enumerable configurable accessor", desc)
	}
}

func TestDefineReactiveNotExtensible(t *testing.T) {
	rt := New()
	obj := ObjectOf("x", 1)
	obj.PreventExtensions()

	err := rt.DefineReactive(obj, "y", WithValue(2))
	if !errors.Is(err, ErrNotExtensible) {
		t.Errorf("err = %v, want ErrNotExtensible", err)
	}
}

func TestAssignedContainerBecomesReactive(t *testing.T) {
	rt := New()
	obj := ObjectOf("slot", nil)
	rt.Observe(obj)

	list := NewArray(1)
	_ = obj.Set("slot", list)

	s := newTestSubscriber()
	rt.WithTarget(s, func() { obj.Get("slot") })
	list.Push(2)

	if s.updates != 1 {
		t.Errorf("updates = %d, want 1", s.updates)
	}
}

func TestIdentical(t *testing.T) {
	slice := []int{1, 2}
	m := map[string]int{}
	obj := NewObject()

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same object", obj, obj, true},
		{"distinct objects", NewObject(), NewObject(), false},
		{"same slice", slice, slice, true},
		{"resliced", slice, slice[:1], false},
		{"copied slice", slice, []int{1, 2}, false},
		{"same map", m, m, true},
		{"nan", math.NaN(), math.NaN(), true},
		{"float32 nan", float32(math.NaN()), float32(math.NaN()), true},
		{"different types", 1, int64(1), false},
		{"nil", nil, nil, true},
		{"nil vs value", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := identical(tt.a, tt.b); got != tt.want {
				t.Errorf("identical(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
