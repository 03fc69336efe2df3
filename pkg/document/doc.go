// Package document converts JSON, YAML and TOML documents to and from
// observer containers.
//
// Decoded objects keep the key order of the source document (TOML keys
// follow their first appearance). Integers decode to int64 and other
// numbers to float64 in every format, so values from different sources
// compare equal under observer.Identical.
//
//	root, err := document.Load("state.yaml")
//	if err != nil {
//	    return err
//	}
//	rt.ObserveRoot(root)
//
// Paths address nested values with dot-separated keys and indexes:
//
//	v, err := document.Resolve(root, "todos.0.title")
package document
