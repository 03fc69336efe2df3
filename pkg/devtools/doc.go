// Package devtools serves an HTTP inspector for one observed state tree.
//
// Endpoints:
//
//	GET    /state?path=todos.0     current value (JSON)
//	POST   /mutate                 apply a structural operation
//	GET    /watches                list path watchers
//	POST   /watches                watch a path, {"path": "todos", "deep": true}
//	DELETE /watches/{id}           stop a watcher
//	GET    /events?since=12        recent change events
//	GET    /ws                     stream change events over a WebSocket
//	GET    /snapshots              list stored snapshots
//	PUT    /snapshots/{name}       save the state tree
//	POST   /snapshots/{name}/restore
//	GET    /metrics                Prometheus metrics
//
// The runtime is single-threaded, so the server serializes every access
// to it. Code that shares the tree with the server must go through Do.
package devtools
