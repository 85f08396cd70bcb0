// Package ws
// Author: momentics <momentics@gmail.com>
//
// Implements the WebSocket frame reassembler and emitter from spec.md §4.1:
// RFC 6455 framing at the subset this system needs (opcodes, FIN, masking,
// 7/16/64-bit payload length), backpressure enforcement, and the
// send_sync_package emission path. Operates against the api.ConnCtx
// reactor contract rather than a concrete socket type, so frame logic
// stays decoupled from whatever owns the underlying transport.
package ws
