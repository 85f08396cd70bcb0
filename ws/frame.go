// File: ws/frame.go
// Author: momentics <momentics@gmail.com>
//
// Frame constants and the reassembled-frame value type, grounded on
// core/protocol/constants.go and core/protocol/frame_codec.go from the
// teacher repo.

package ws

// Opcodes understood by the reassembler (spec.md §4.1).
const (
	OpcodeContinuation = 0x0
	OpcodeText         = 0x1
	OpcodeBinary       = 0x2
	OpcodeClose        = 0x8
	OpcodePing         = 0x9
	OpcodePong         = 0xA
)

// MaxBufferedBytes is the shared backpressure cap (spec.md §4.1) applied to
// the receive buffer, the accumulated message payload, and the send buffer.
const MaxBufferedBytes = 1_024_000

// Frame is one parsed WebSocket frame, prior to reassembly across
// continuations.
type Frame struct {
	Fin        bool
	Opcode     byte
	Masked     bool
	MaskKey    [4]byte
	PayloadLen uint64
	Payload    []byte
}

// isDataOpcode reports whether opcode is one the reassembler accepts
// (TEXT, BINARY, or CONTINUATION). Any other opcode is a protocol violation
// per spec.md §4.1 and closes the connection.
func isDataOpcode(opcode byte) bool {
	return opcode == OpcodeContinuation || opcode == OpcodeText || opcode == OpcodeBinary
}
