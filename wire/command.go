// File: wire/command.go
// Author: momentics <momentics@gmail.com>
//
// Command is the closed, contiguous enumeration from spec.md §3. It is kept
// contiguous starting at 0 so cmdfactory can index it with a dense array
// per the REDESIGN guidance in spec.md §9.

package wire

// Command selects both the routing rule and the structured-message schema
// used to parse a ProtoPackage's payload.
type Command int32

const (
	CmdUnknown Command = iota

	// IPC mesh handshake, exchanged as the first message on every IPC
	// connection in both directions (spec.md §4.2, §6).
	CmdIPCStreamAuthHandshake

	// Example application-level client request, used by the round-trip
	// echo scenario (spec.md §8 scenario 1).
	CmdCSReqExample

	// Worker -> other tunnel envelope wrapping every client-origin event.
	CmdTunnelWorker2OtherLuaVM

	// Inner messages carried inside a CmdTunnelWorker2OtherLuaVM envelope
	// for connection lifecycle events.
	CmdTunnelWorker2OtherEventNewClientConnection
	CmdTunnelWorker2OtherEventCloseClientConnection

	// Other -> worker tunnel envelope addressing one client connection.
	CmdTunnelOtherLuaVM2WorkerConn

	// Sentinel inner command carried inside a CmdTunnelOtherLuaVM2WorkerConn
	// envelope that requests forced closure of the target client connection
	// instead of a forwarded frame (spec.md §4.3 scenario 2).
	CmdTunnelOtherLuaVM2WorkerCloseClientConnection

	// Periodic other -> every-worker health broadcast (spec.md §4.3,
	// §8 scenario 5).
	CmdTunnelOther2WorkerTest

	// cmdCount must stay last; IsValid bounds the range with it. cmdfactory
	// cannot see it and sizes its dense array from the commands it lists.
	cmdCount
)

// IsValid reports whether cmd falls within the registered, contiguous range.
func (c Command) IsValid() bool {
	return c > CmdUnknown && c < cmdCount
}
