package observer

import (
	"fmt"
	"slices"
)

// Descriptor describes one property of an Object. A descriptor with Get or
// Set is an accessor property; Value and Writable are ignored for it.
type Descriptor struct {
	Value        any
	Get          func() any
	Set          func(any)
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// IsAccessor reports whether the descriptor has a getter or setter.
func (d Descriptor) IsAccessor() bool {
	return d.Get != nil || d.Set != nil
}

type property struct {
	value        any
	get          func() any
	set          func(any)
	accessor     bool
	writable     bool
	enumerable   bool
	configurable bool
}

func newProperty(d Descriptor) *property {
	p := &property{
		enumerable:   d.Enumerable,
		configurable: d.Configurable,
	}
	if d.IsAccessor() {
		p.accessor = true
		p.get = d.Get
		p.set = d.Set
	} else {
		p.value = d.Value
		p.writable = d.Writable
	}
	return p
}

func (p *property) load() any {
	if !p.accessor {
		return p.value
	}
	if p.get == nil {
		return nil
	}
	return p.get()
}

func (p *property) descriptor() Descriptor {
	return Descriptor{
		Value:        p.value,
		Get:          p.get,
		Set:          p.set,
		Writable:     p.writable,
		Enumerable:   p.enumerable,
		Configurable: p.configurable,
	}
}

// Object is a dynamic keyed container with ordered own properties and an
// optional prototype, the Go stand-in for a plain script object.
//
// The zero value is not usable; create objects with NewObject or ObjectOf.
type Object struct {
	keys  []string
	props map[string]*property
	proto *Object

	nonExtensible bool

	// instance marks a framework root instance. Instances are never
	// observed and never receive late reactive keys.
	instance bool

	// raw excludes the object from observation.
	raw bool

	// ob is the hidden back-reference to the Observer. It is not a
	// property, so it never shows up in Keys.
	ob *Observer
}

// ObjectPrototype is the shared base prototype of objects created with
// NewObject. Keys that only resolve through it count as absent for the
// structural mutation API.
var ObjectPrototype = &Object{props: make(map[string]*property)}

// NewObject creates an empty object whose prototype is ObjectPrototype.
func NewObject() *Object {
	return &Object{
		props: make(map[string]*property),
		proto: ObjectPrototype,
	}
}

// ObjectOf creates an object from alternating key/value arguments.
// It panics if a key is not a string or a value is missing.
//
//	ObjectOf("name", "ada", "tags", NewArray("x", "y"))
func ObjectOf(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("observer: ObjectOf requires key/value pairs")
	}
	o := NewObject()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("observer: ObjectOf key %v is not a string", kv[i]))
		}
		o.addOwn(key, &property{value: kv[i+1], writable: true, enumerable: true, configurable: true})
	}
	return o
}

func (o *Object) addOwn(key string, p *property) {
	if _, exists := o.props[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.props[key] = p
}

func (o *Object) lookup(key string) (*property, bool) {
	for cur := o; cur != nil; cur = cur.proto {
		if p, ok := cur.props[key]; ok {
			return p, true
		}
	}
	return nil, false
}

// Get returns the value of key, following the prototype chain.
// Accessor properties run their getter. Missing keys yield nil.
func (o *Object) Get(key string) any {
	if p, ok := o.lookup(key); ok {
		return p.load()
	}
	return nil
}

// Set assigns key with assignment semantics: own accessors run their
// setter (a getter-only accessor ignores the write), own data properties
// are overwritten, inherited accessors run their setter, and anything else
// creates a new own data property.
func (o *Object) Set(key string, value any) error {
	if p, ok := o.props[key]; ok {
		return p.assign(key, value)
	}
	for cur := o.proto; cur != nil; cur = cur.proto {
		p, ok := cur.props[key]
		if !ok {
			continue
		}
		if p.accessor {
			if p.set != nil {
				p.set(value)
			}
			return nil
		}
		if !p.writable {
			return fmt.Errorf("%w: %q", ErrNotWritable, key)
		}
		break
	}
	if o.nonExtensible {
		return fmt.Errorf("%w: cannot add %q", ErrNotExtensible, key)
	}
	o.addOwn(key, &property{value: value, writable: true, enumerable: true, configurable: true})
	return nil
}

func (p *property) assign(key string, value any) error {
	if p.accessor {
		if p.set != nil {
			p.set(value)
		}
		return nil
	}
	if !p.writable {
		return fmt.Errorf("%w: %q", ErrNotWritable, key)
	}
	p.value = value
	return nil
}

// Has reports whether key resolves on the object or its prototype chain.
func (o *Object) Has(key string) bool {
	_, ok := o.lookup(key)
	return ok
}

// HasOwn reports whether key is an own property.
func (o *Object) HasOwn(key string) bool {
	_, ok := o.props[key]
	return ok
}

// Keys returns the own enumerable keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if o.props[k].enumerable {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of own properties, enumerable or not.
func (o *Object) Len() int {
	return len(o.keys)
}

// Delete removes an own property. Deleting a missing key is a no-op.
func (o *Object) Delete(key string) error {
	p, ok := o.props[key]
	if !ok {
		return nil
	}
	if !p.configurable {
		return fmt.Errorf("%w: %q", ErrNotConfigurable, key)
	}
	delete(o.props, key)
	if i := slices.Index(o.keys, key); i >= 0 {
		o.keys = slices.Delete(o.keys, i, i+1)
	}
	return nil
}

// DefineProperty creates or replaces an own property. Replacing keeps the
// key's position in Keys.
func (o *Object) DefineProperty(key string, d Descriptor) error {
	if p, ok := o.props[key]; ok {
		if !p.configurable {
			return fmt.Errorf("%w: %q", ErrNotConfigurable, key)
		}
	} else if o.nonExtensible {
		return fmt.Errorf("%w: cannot define %q", ErrNotExtensible, key)
	}
	o.addOwn(key, newProperty(d))
	return nil
}

// OwnPropertyDescriptor returns the descriptor of an own property.
func (o *Object) OwnPropertyDescriptor(key string) (Descriptor, bool) {
	p, ok := o.props[key]
	if !ok {
		return Descriptor{}, false
	}
	return p.descriptor(), true
}

// Prototype returns the prototype, or nil.
func (o *Object) Prototype() *Object {
	return o.proto
}

// SetPrototype replaces the prototype. A nil proto detaches the chain.
func (o *Object) SetPrototype(proto *Object) {
	o.proto = proto
}

// PreventExtensions stops the object from accepting new keys.
func (o *Object) PreventExtensions() {
	o.nonExtensible = true
}

// IsExtensible reports whether new keys can be added.
func (o *Object) IsExtensible() bool {
	return !o.nonExtensible
}

// Seal prevents extensions and makes every own property non-configurable.
func (o *Object) Seal() {
	o.nonExtensible = true
	for _, p := range o.props {
		p.configurable = false
	}
}

// Freeze seals the object and makes every own data property read-only.
func (o *Object) Freeze() {
	o.Seal()
	for _, p := range o.props {
		if !p.accessor {
			p.writable = false
		}
	}
}

// MarkInstance flags the object as a framework root instance.
func (o *Object) MarkInstance() *Object {
	o.instance = true
	return o
}

// IsInstance reports whether the object is a framework root instance.
func (o *Object) IsInstance() bool {
	return o.instance
}

// MarkRaw excludes the object from observation.
func (o *Object) MarkRaw() *Object {
	o.raw = true
	return o
}

// IsRaw reports whether the object is excluded from observation.
func (o *Object) IsRaw() bool {
	return o.raw
}

// String renders the object for debugging. Accessors are not invoked.
func (o *Object) String() string {
	return fmt.Sprintf("Object(%d keys)", len(o.keys))
}
