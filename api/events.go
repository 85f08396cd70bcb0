// File: api/events.go
// Package api defines core event types for the client-connection lifecycle.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// ClientOpenEvent is emitted by a worker when a new client connection is
// accepted. It is the trigger for a Worker2OtherEventNewClientConnection
// tunnel envelope (spec.md §4.3).
type ClientOpenEvent struct {
	Gid       ConnectionId
	WorkerIdx int
}

// ClientCloseEvent is emitted by a worker when a client connection is
// destroyed. It is the trigger for a Worker2OtherEventCloseClientConnection
// tunnel envelope (spec.md §4.3).
type ClientCloseEvent struct {
	Gid       ConnectionId
	WorkerIdx int
}
