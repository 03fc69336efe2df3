// Package observertest provides testing helpers for code built on the
// observer runtime.
//
// # Recording subscribers
//
// A Recorder is a Subscriber that counts updates and remembers the deps it
// was registered with:
//
//	rt := observer.New()
//	state := observer.ObjectOf("count", 0)
//	rt.Observe(state)
//
//	rec := observertest.Collect(rt, func() { state.Get("count") })
//	_ = state.Set("count", 1)
//	observertest.ExpectUpdates(t, rec, 1)
//
// # Assertions
//
// ExpectUpdates, ExpectDeps and ExpectSubscribed report failures through
// t.Errorf, so a test can check several properties in one run.
package observertest
