// Package observer provides the dependency-tracking core of the reactive engine.
//
// Plain structured data is modelled with two dynamic container types, *Object
// and *Array. Observing a container converts every property into an
// intercepted accessor: reads register the active subscriber with the
// property's Dep, writes notify every registered subscriber.
//
// # Core Types
//
// Runtime owns the active-subscriber stack and the observation switches:
//
//	rt := observer.New(observer.WithLogger(logger))
//
//	state := observer.ObjectOf("a", observer.ObjectOf("b", 1))
//	rt.ObserveRoot(state)
//
//	rt.WithTarget(sub, func() {
//	    a := state.Get("a").(*observer.Object)
//	    _ = a.Get("b") // sub now depends on a, a.b and a's container Dep
//	})
//
//	state.Set("a", observer.ObjectOf("b", 2)) // notifies sub
//
// Dep is the registry of subscribers for one reactive slot. Observer wraps
// one container and owns its container-level Dep.
//
// # Structural Changes
//
// Interception is installed per existing key, so new keys must be added with
// Runtime.Set and removed with Runtime.Del. Arrays must be mutated through
// Push, Pop, Shift, Unshift, Splice, Sort and Reverse; SetIndex and SetLength
// bypass interception.
//
// # Concurrency
//
// A Runtime and the containers it observes are single-threaded. Callers that
// share them between goroutines must serialize access.
package observer
