package observer

import (
	"bytes"
	"io"
	"log/slog"
)

// testSubscriber is a minimal Subscriber for tests.
type testSubscriber struct {
	id       uint64
	updates  int
	deps     []*Dep
	onUpdate func()
}

func newTestSubscriber() *testSubscriber {
	return &testSubscriber{id: nextID()}
}

func (s *testSubscriber) ID() uint64 {
	return s.id
}

func (s *testSubscriber) AddDep(d *Dep) {
	for _, existing := range s.deps {
		if existing == d {
			return
		}
	}
	s.deps = append(s.deps, d)
}

func (s *testSubscriber) Update() {
	s.updates++
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

func (s *testSubscriber) hasDep(d *Dep) bool {
	for _, existing := range s.deps {
		if existing == d {
			return true
		}
	}
	return false
}

// newLoggedRuntime returns a runtime whose warnings are written to buf.
func newLoggedRuntime(opts ...Option) (*Runtime, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(append([]Option{WithLogger(logger)}, opts...)...), &buf
}

// countingHooks records hook calls.
type countingHooks struct {
	NopHooks
	observers map[string]int
	mutations map[string]int
	warnings  map[string]int
	notifies  int
	deps      int
}

func newCountingHooks() *countingHooks {
	return &countingHooks{
		observers: map[string]int{},
		mutations: map[string]int{},
		warnings:  map[string]int{},
	}
}

func (h *countingHooks) ObserverCreated(kind string) { h.observers[kind]++ }
func (h *countingHooks) DepCreated()                 { h.deps++ }
func (h *countingHooks) Notified(*Dep, int)          { h.notifies++ }
func (h *countingHooks) ArrayMutated(method string)  { h.mutations[method]++ }
func (h *countingHooks) Warned(code string)          { h.warnings[code]++ }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
