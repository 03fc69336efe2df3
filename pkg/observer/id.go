package observer

import "sync/atomic"

var globalIDCounter uint64

// nextID returns the next unique ID for a Dep. IDs increase monotonically
// and are never reused, so sorting by ID gives creation order.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// NextID returns a fresh ID from the same sequence used for Deps.
// Subscriber implementations use it so that sorted notification follows
// creation order across deps and subscribers.
func NextID() uint64 {
	return nextID()
}
