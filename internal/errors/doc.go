// Package errors provides coded, actionable diagnostics for the reactive engine.
//
// Every diagnostic has a code that maps to a registered template:
//   - W0xx: developer warnings emitted by the structural mutation API
//     (set/del on primitives, late additions to root state)
//   - E1xx: runtime faults surfaced from container operations
//   - C2xx: configuration errors
//   - D3xx: document and snapshot errors
//   - X4xx: devtools requests and CLI mutation scripts
//
// Warnings are logged, never returned. The remaining codes are returned as
// *ReactiveError values and can be printed with Format for terminal display.
//
// # Usage
//
//	err := errors.New("D301").
//	    WithLocation("state.toml", 4, 7).
//	    Wrap(parseErr)
//
//	errors.PrintError(err)
//	// ERROR D301: Document could not be parsed
//	//
//	//   state.toml:4:7
//	//   ...
package errors
