package observer

import (
	"log/slog"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// AugmentMode selects how observed arrays reach the intercepted mutation
// methods.
type AugmentMode int

const (
	// AugmentDelegate points every observed array at one shared table of
	// intercepted methods.
	AugmentDelegate AugmentMode = iota

	// AugmentCopy gives every observed array its own copy of the table.
	AugmentCopy
)

// String returns the config name of the mode.
func (m AugmentMode) String() string {
	if m == AugmentCopy {
		return "copy"
	}
	return "delegate"
}

// Hooks receives telemetry callbacks from a Runtime.
// All methods are called synchronously on the mutating goroutine.
type Hooks interface {
	// ObserverCreated is called when a container gets its Observer.
	// kind is "object" or "array".
	ObserverCreated(kind string)

	// DepCreated is called for every new Dep.
	DepCreated()

	// Notified is called when a Dep notifies its subscribers.
	Notified(dep *Dep, subscribers int)

	// ArrayMutated is called after an intercepted array method ran.
	ArrayMutated(method string)

	// Warned is called for every developer warning that was emitted.
	Warned(code string)
}

// NopHooks implements Hooks with no-ops. Embed it to implement a subset.
type NopHooks struct{}

func (NopHooks) ObserverCreated(string) {}
func (NopHooks) DepCreated()            {}
func (NopHooks) Notified(*Dep, int)     {}
func (NopHooks) ArrayMutated(string)    {}
func (NopHooks) Warned(string)          {}

// Runtime holds the tracking state shared by every container it observes:
// the active-subscriber stack, the observation switch and the execution mode.
type Runtime struct {
	// targets is the active-subscriber stack. The top is the subscriber
	// currently collecting dependencies.
	targets []Subscriber

	// shouldObserve gates creation of new Observers.
	shouldObserve bool

	// serverRendering disables observation entirely.
	serverRendering bool

	// production suppresses developer warnings and custom setters.
	production bool

	// sortedNotify sorts subscribers by ID before notifying.
	sortedNotify bool

	augment AugmentMode
	logger  *slog.Logger
	hooks   Hooks
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for developer warnings.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithProduction enables production mode: warnings are suppressed.
func WithProduction(production bool) Option {
	return func(rt *Runtime) {
		rt.production = production
	}
}

// WithServerRendering marks the runtime as serving requests without a
// persistent state tree. Nothing is observed in this mode.
func WithServerRendering(ssr bool) Option {
	return func(rt *Runtime) {
		rt.serverRendering = ssr
	}
}

// WithSortedNotify makes Dep.Notify call subscribers in ID order instead of
// subscription order.
func WithSortedNotify(sorted bool) Option {
	return func(rt *Runtime) {
		rt.sortedNotify = sorted
	}
}

// WithAugment sets the array augmentation strategy.
func WithAugment(mode AugmentMode) Option {
	return func(rt *Runtime) {
		rt.augment = mode
	}
}

// WithHooks installs telemetry hooks.
func WithHooks(hooks Hooks) Option {
	return func(rt *Runtime) {
		if hooks != nil {
			rt.hooks = hooks
		}
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		shouldObserve: true,
		logger:        slog.Default(),
		hooks:         NopHooks{},
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Target returns the active subscriber, or nil if none is collecting.
func (rt *Runtime) Target() Subscriber {
	if n := len(rt.targets); n > 0 {
		return rt.targets[n-1]
	}
	return nil
}

// PushTarget makes s the active subscriber. A nil s suspends collection
// until the matching PopTarget.
func (rt *Runtime) PushTarget(s Subscriber) {
	rt.targets = append(rt.targets, s)
}

// PopTarget restores the previously active subscriber.
func (rt *Runtime) PopTarget() {
	if n := len(rt.targets); n > 0 {
		rt.targets[n-1] = nil
		rt.targets = rt.targets[:n-1]
	}
}

// WithTarget runs fn with s as the active subscriber.
func (rt *Runtime) WithTarget(s Subscriber, fn func()) {
	rt.PushTarget(s)
	defer rt.PopTarget()
	fn()
}

// Untracked runs fn with dependency collection suspended.
func (rt *Runtime) Untracked(fn func()) {
	rt.WithTarget(nil, fn)
}

// ToggleObserving enables or disables creation of new Observers.
// Containers that are already observed keep working.
func (rt *Runtime) ToggleObserving(value bool) {
	rt.shouldObserve = value
}

// ShouldObserve reports whether new containers will be observed.
func (rt *Runtime) ShouldObserve() bool {
	return rt.shouldObserve
}

// Production reports whether warnings are suppressed.
func (rt *Runtime) Production() bool {
	return rt.production
}

// ServerRendering reports whether observation is disabled for SSR.
func (rt *Runtime) ServerRendering() bool {
	return rt.serverRendering
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

func (rt *Runtime) canObserve() bool {
	return rt.shouldObserve && !rt.serverRendering
}

// warn emits a developer warning registered under code.
func (rt *Runtime) warn(code string, attrs ...any) {
	if rt.production {
		return
	}
	rt.hooks.Warned(code)
	rt.logger.Warn(rerrors.Message(code), append([]any{"code", code}, attrs...)...)
}
