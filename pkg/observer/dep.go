package observer

import (
	"cmp"
	"slices"
)

// Subscriber is anything that can depend on reactive data.
// The engine never implements it; watchers and render functions do.
type Subscriber interface {
	// ID returns a unique identifier. Deps deduplicate by ID.
	ID() uint64

	// AddDep is called when the subscriber is registered with d, so the
	// subscriber can record the reverse link.
	AddDep(d *Dep)

	// Update is called when a dependency changed.
	Update()
}

// Dep is the registry of subscribers interested in one reactive slot:
// one property, or one observed container.
type Dep struct {
	id   uint64
	rt   *Runtime
	subs []Subscriber
}

// NewDep creates a Dep bound to rt.
func (rt *Runtime) NewDep() *Dep {
	rt.hooks.DepCreated()
	return &Dep{id: nextID(), rt: rt}
}

// ID returns the unique identifier of the Dep.
func (d *Dep) ID() uint64 {
	return d.id
}

// AddSub registers s. Registering the same subscriber twice is a no-op.
func (d *Dep) AddSub(s Subscriber) {
	if s == nil {
		return
	}
	sid := s.ID()
	for _, existing := range d.subs {
		if existing.ID() == sid {
			return
		}
	}
	d.subs = append(d.subs, s)
}

// RemoveSub unregisters s, keeping the order of the others.
func (d *Dep) RemoveSub(s Subscriber) {
	if s == nil {
		return
	}
	sid := s.ID()
	for i, existing := range d.subs {
		if existing.ID() == sid {
			d.subs = slices.Delete(d.subs, i, i+1)
			return
		}
	}
}

// Depend registers the active subscriber, if any, and lets it record the
// reverse link.
func (d *Dep) Depend() {
	target := d.rt.Target()
	if target == nil {
		return
	}
	d.AddSub(target)
	target.AddDep(d)
}

// Notify calls Update on every registered subscriber.
// It iterates over a snapshot, so subscribers may add or remove themselves
// (or trigger nested notifications) while it runs.
func (d *Dep) Notify() {
	subs := slices.Clone(d.subs)
	if d.rt.sortedNotify {
		slices.SortFunc(subs, func(a, b Subscriber) int {
			return cmp.Compare(a.ID(), b.ID())
		})
	}
	d.rt.hooks.Notified(d, len(subs))
	for _, s := range subs {
		s.Update()
	}
}

// Subscribers returns a snapshot of the registered subscribers.
func (d *Dep) Subscribers() []Subscriber {
	return slices.Clone(d.subs)
}

// Len returns the number of registered subscribers.
func (d *Dep) Len() int {
	return len(d.subs)
}
