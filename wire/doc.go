// Package wire
// Author: momentics <momentics@gmail.com>
//
// Implements the wire-level envelopes and commands from spec.md §3/§6:
// ProtoPackage and the two worker<->other envelopes, plus every concrete
// message type carried inside them. TunnelPackage lives in the tunnel
// package.
//
// Every message's Marshal/Unmarshal is written directly against
// google.golang.org/protobuf/encoding/protowire, the tag/varint/bytes
// primitive layer protoc-gen-go itself builds on, so the wire format stays
// protobuf-compatible without a .proto/protoc step.
package wire
