// Package udp
// Author: momentics <momentics@gmail.com>
//
// Implements the UDP path from spec.md §4.6: one datagram equals one
// ProtoPackage, parsed, looked up in the command factory, and dispatched to
// the other-VM's UDP hook with the remote address split into IP and port.
package udp
