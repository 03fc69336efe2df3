package devtools

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/document"
	"github.com/vango-dev/reactive/pkg/middleware"
	"github.com/vango-dev/reactive/pkg/observer"
	"github.com/vango-dev/reactive/pkg/snapshot"
	"github.com/vango-dev/reactive/pkg/telemetry"
	"github.com/vango-dev/reactive/pkg/watch"
)

// maxEvents is how many recent events /events can return.
const maxEvents = 256

// Message is sent to WebSocket clients.
type Message struct {
	Type    string      `json:"type"`
	Event   *Event      `json:"event,omitempty"`
	Watches []WatchInfo `json:"watches,omitempty"`
}

// Event records one watcher firing.
type Event struct {
	Seq     uint64    `json:"seq"`
	WatchID string    `json:"watchId"`
	Path    string    `json:"path"`
	Old     any       `json:"old"`
	New     any       `json:"new"`
	Time    time.Time `json:"time"`
}

// WatchInfo describes a registered path watcher.
type WatchInfo struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Deep bool   `json:"deep"`
	Deps int    `json:"deps"`
}

type watchEntry struct {
	info WatchInfo
	w    *watch.Watcher
}

// Server inspects and mutates one state tree.
type Server struct {
	mu   sync.Mutex
	rt   *observer.Runtime
	root any

	tracer     *telemetry.Tracer
	provider   trace.TracerProvider
	otelOpts   []middleware.OTelOption
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	store      snapshot.Store
	logger     *slog.Logger
	hub        *hub

	watches   map[string]*watchEntry
	nextWatch int
	events    []Event
	seq       uint64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Default: the runtime's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer traces mutations with tracer. Default: a tracer on the
// global provider.
func WithTracer(tracer *telemetry.Tracer) Option {
	return func(s *Server) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// Registry is both a Prometheus registerer and gatherer, such as
// *prometheus.Registry.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// WithRegistry records request metrics in reg and serves /metrics from it.
// Default: the prometheus default registry
func WithRegistry(reg Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registerer = reg
			s.gatherer = reg
		}
	}
}

// WithTracerProvider traces requests and mutations with provider instead of
// the global provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(s *Server) {
		s.provider = provider
	}
}

// WithStore enables the snapshot endpoints.
func WithStore(store snapshot.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// New creates a Server for root and observes it as root state of rt.
func New(rt *observer.Runtime, root any, opts ...Option) *Server {
	s := &Server{
		rt:         rt,
		root:       root,
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
		logger:     rt.Logger(),
		hub:        newHub(),
		watches:    make(map[string]*watchEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.provider != nil {
		s.otelOpts = append(s.otelOpts, middleware.WithTracerProvider(s.provider))
	}
	if s.tracer == nil {
		var topts []telemetry.TracerOption
		if s.provider != nil {
			topts = append(topts, telemetry.WithTracerProvider(s.provider))
		}
		s.tracer = telemetry.NewTracer(rt, topts...)
	}
	s.tracer.ObserveRoot(context.Background(), root)
	return s
}

// Do runs fn with exclusive access to the runtime and the tree.
func (s *Server) Do(fn func(rt *observer.Runtime, root any)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.rt, s.root)
}

// apply runs m against the tree under the runtime lock.
func (s *Server) apply(ctx context.Context, m Mutation) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Apply(ctx, s.tracer, s.root, m)
}

// Watch registers a watcher on path and returns its ID. Change events are
// recorded and broadcast to WebSocket clients.
func (s *Server) Watch(path string, deep bool) (WatchInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchLocked(path, deep)
}

func (s *Server) watchLocked(path string, deep bool) (WatchInfo, error) {
	if _, err := document.Resolve(s.root, path); err != nil {
		return WatchInfo{}, err
	}

	s.nextWatch++
	id := "w" + strconv.Itoa(s.nextWatch)
	getter := func() any {
		v, _ := document.Resolve(s.root, path)
		return v
	}
	var opts []watch.Option
	if deep {
		opts = append(opts, watch.Deep())
	}
	w := watch.New(s.rt, getter, func(newVal, oldVal any) {
		s.record(id, path, newVal, oldVal)
	}, opts...)

	entry := &watchEntry{info: WatchInfo{ID: id, Path: path, Deep: deep}, w: w}
	s.watches[id] = entry
	s.logger.Debug("devtools watch added", "id", id, "path", path, "deep", deep)
	return s.infoLocked(entry), nil
}

// Unwatch tears down the watcher with the given ID.
func (s *Server) Unwatch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.watches[id]
	if !ok {
		return false
	}
	entry.w.Teardown()
	delete(s.watches, id)
	return true
}

// Watches lists the registered watchers ordered by ID.
func (s *Server) Watches() []WatchInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchesLocked()
}

func (s *Server) watchesLocked() []WatchInfo {
	infos := make([]WatchInfo, 0, len(s.watches))
	for _, entry := range s.watches {
		infos = append(infos, s.infoLocked(entry))
	}
	sort.Slice(infos, func(i, j int) bool {
		a, _ := strconv.Atoi(infos[i].ID[1:])
		b, _ := strconv.Atoi(infos[j].ID[1:])
		return a < b
	})
	return infos
}

func (s *Server) infoLocked(entry *watchEntry) WatchInfo {
	info := entry.info
	info.Deps = len(entry.w.Deps())
	return info
}

// Events returns recorded events with a sequence number above since.
func (s *Server) Events(since uint64) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Event
	for _, ev := range s.events {
		if ev.Seq > since {
			out = append(out, ev)
		}
	}
	return out
}

// record runs inside a watcher callback, so the caller holds s.mu.
func (s *Server) record(id, path string, newVal, oldVal any) {
	s.seq++
	ev := Event{
		Seq:     s.seq,
		WatchID: id,
		Path:    path,
		Old:     native(s.rt, oldVal),
		New:     native(s.rt, newVal),
		Time:    time.Now().UTC(),
	}

	s.events = append(s.events, ev)
	if len(s.events) > maxEvents {
		s.events = append(s.events[:0], s.events[len(s.events)-maxEvents:]...)
	}
	s.hub.broadcast(Message{Type: "change", Event: &ev})
}

// SaveSnapshot stores the current tree under name.
func (s *Server) SaveSnapshot(ctx context.Context, name string) error {
	if s.store == nil {
		return errors.New("X403")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	s.rt.Untracked(func() {
		err = snapshot.Save(ctx, s.store, name, s.root)
	})
	return err
}

// RestoreSnapshot loads the snapshot stored under name and assigns it onto
// the tree: each top-level key of an object root goes through Runtime.Set,
// an array root has its contents replaced. The tree itself is kept, so
// watchers stay subscribed and fire for what changed.
func (s *Server) RestoreSnapshot(ctx context.Context, name string) error {
	if s.store == nil {
		return errors.New("X403")
	}
	loaded, err := snapshot.Load(ctx, s.store, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch root := s.root.(type) {
	case *observer.Object:
		src, ok := loaded.(*observer.Object)
		if !ok {
			return restoreMismatch(name, root, loaded)
		}
		for _, k := range src.Keys() {
			if _, err := s.tracer.Set(ctx, root, k, src.Get(k)); err != nil {
				return err
			}
		}
	case *observer.Array:
		src, ok := loaded.(*observer.Array)
		if !ok {
			return restoreMismatch(name, root, loaded)
		}
		return s.tracer.Do(ctx, "reactive.restore", func(context.Context) error {
			root.Splice(0, root.Len(), src.Items()...)
			return nil
		})
	default:
		return restoreMismatch(name, root, loaded)
	}
	s.logger.Info("devtools snapshot restored", "name", name)
	return nil
}

func restoreMismatch(name string, root, loaded any) error {
	return errors.New("X401").
		WithDetail(fmt.Sprintf("snapshot %s holds %T, the tree is %T", name, loaded, root))
}

// ListenAndServe serves the inspector on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("devtools listening", "addr", addr)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Close()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close disconnects WebSocket clients and tears down every watcher.
func (s *Server) Close() {
	s.hub.close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.watches {
		entry.w.Teardown()
		delete(s.watches, id)
	}
}
