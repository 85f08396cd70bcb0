// File: vm/engine.go
// Author: momentics <momentics@gmail.com>

package vm

import "github.com/momentics/mapsvr/wire"

// MessageType selects which of the three scalar dispatch parameters carry
// routing context (spec.md §4.5: client gid/worker idx; peer AppId; remote
// address/port).
type MessageType int

const (
	MsgGeneric MessageType = iota
	MsgClient
	MsgIPC
	MsgUDP
)

// Engine is the opaque embedded script interpreter a VM slot owns. It is
// deliberately minimal: the interpreter's internals are out of scope
// (spec.md §1); this is the boundary the host calls through.
type Engine interface {
	// Init (re)initializes the interpreter from scriptDir, mounting the
	// symbols the slot gives it.
	Init(scriptDir string, symbols Symbols) error
	// Stop tears the interpreter down, releasing any owned resource.
	Stop()
	// Tick runs one cooperative scheduling step of any running scripts.
	Tick() error
	// Dispatch delivers one message into the interpreter.
	Dispatch(msgType MessageType, cmd wire.Command, msg wire.Message, p1 uint64, p2 int64, p3 string) error
}

// Symbols are the callable host capabilities mounted into a VM slot before
// any user script runs (spec.md §4.5). Logger, the bytes<->message
// converter pair, and both clocks are mounted in every slot; SendIPC and
// ClientForward are slot-specific. cmd/mapsvr/main.go mounts neither of
// them in any slot, so both are nil there.
type Symbols struct {
	Logger           func(format string, args ...any)
	BytesToMessage   func(cmd wire.Command, b []byte) (wire.Message, bool, error)
	MessageToBytes   func(msg wire.Message) ([]byte, error)
	MonotonicSeconds func() int64
	HighResNowNanos  func() int64

	// SendIPC is the other-VM slot's IPC-send capability.
	SendIPC func(appID string, cmd wire.Command, msg wire.Message) error
	// ClientForward is the client-forward capability of worker slots and
	// the other-VM slot.
	ClientForward func(gid uint64, workerIdx int32, inner wire.ProtoPackage) error
}
