package observer

// slot is the storage behind one reactive property: either a value owned by
// the interceptor or a pre-existing accessor pair it delegates to. The
// variant is chosen once, when the interceptor is installed.
type slot interface {
	load() any
	// store writes v and reports whether the write was honored.
	store(v any) bool
}

type valueSlot struct {
	val any
}

func (s *valueSlot) load() any { return s.val }

func (s *valueSlot) store(v any) bool {
	s.val = v
	return true
}

// accessorSlot delegates to the accessor that was on the property before it
// became reactive. The getter is re-invoked on every access, never cached.
type accessorSlot struct {
	get func() any
	set func(any)
	val any
}

func (s *accessorSlot) load() any {
	if s.get != nil {
		return s.get()
	}
	return s.val
}

func (s *accessorSlot) store(v any) bool {
	switch {
	case s.get != nil && s.set == nil:
		return false
	case s.set != nil:
		s.set(v)
	default:
		s.val = v
	}
	return true
}

type propertyConfig struct {
	value        any
	hasValue     bool
	customSetter func()
	shallow      bool
}

// PropertyOption configures DefineReactive.
type PropertyOption func(*propertyConfig)

// WithValue sets the initial value instead of reading the current one.
func WithValue(v any) PropertyOption {
	return func(c *propertyConfig) {
		c.value = v
		c.hasValue = true
	}
}

// WithCustomSetter registers fn to run before every accepted write, outside
// production mode. It is used to warn about writes that should not happen.
func WithCustomSetter(fn func()) PropertyOption {
	return func(c *propertyConfig) {
		c.customSetter = fn
	}
}

// Shallow keeps the property's value from being observed.
func Shallow() PropertyOption {
	return func(c *propertyConfig) {
		c.shallow = true
	}
}

// DefineReactive makes obj[key] reactive. Reads register the active
// subscriber with the property's Dep (and with the container Dep of the
// value, if observed); writes of a different value notify it.
//
// Non-configurable properties are left alone. A pre-existing accessor is
// kept and delegated to; a getter-only accessor is not read up front and
// ignores writes.
//
// The only error is ErrNotExtensible, when key is new and obj does not
// accept new properties.
func (rt *Runtime) DefineReactive(obj *Object, key string, opts ...PropertyOption) error {
	var cfg propertyConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	existing, exists := obj.OwnPropertyDescriptor(key)
	if exists && !existing.Configurable {
		return nil
	}

	dep := rt.NewDep()

	var s slot
	val := cfg.value
	if exists && existing.IsAccessor() {
		if !cfg.hasValue && (existing.Get == nil || existing.Set != nil) {
			val = obj.Get(key)
		}
		s = &accessorSlot{get: existing.Get, set: existing.Set, val: val}
	} else {
		if !cfg.hasValue {
			val = obj.Get(key)
		}
		s = &valueSlot{val: val}
	}

	var childOb *Observer
	if !cfg.shallow {
		childOb = rt.Observe(val)
	}

	return obj.DefineProperty(key, Descriptor{
		Enumerable:   true,
		Configurable: true,
		Get: func() any {
			value := s.load()
			if rt.Target() != nil {
				dep.Depend()
				if childOb != nil {
					childOb.dep.Depend()
					if arr, ok := value.(*Array); ok {
						dependArray(arr, nil)
					}
				}
			}
			return value
		},
		Set: func(newVal any) {
			if identical(newVal, s.load()) {
				return
			}
			if !rt.production && cfg.customSetter != nil {
				cfg.customSetter()
			}
			if !s.store(newVal) {
				return
			}
			if cfg.shallow {
				childOb = nil
			} else {
				childOb = rt.Observe(newVal)
			}
			dep.Notify()
		},
	})
}

// dependArray registers the active subscriber with the container Dep of
// every element, recursing into nested arrays. Element writes cannot be
// intercepted, so this is the only way to make them reach the subscriber.
func dependArray(a *Array, seen map[*Array]struct{}) {
	for i, n := 0, len(a.items); i < n; i++ {
		e := a.items[i]
		if ob := ObserverOf(e); ob != nil {
			ob.dep.Depend()
		}
		inner, ok := e.(*Array)
		if !ok || inner == nil {
			continue
		}
		if seen == nil {
			seen = map[*Array]struct{}{a: {}}
		}
		if _, visited := seen[inner]; visited {
			continue
		}
		seen[inner] = struct{}{}
		dependArray(inner, seen)
	}
}
