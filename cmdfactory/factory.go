// File: cmdfactory/factory.go
// Author: momentics <momentics@gmail.com>

package cmdfactory

import "github.com/momentics/mapsvr/wire"

// Constructor produces a fresh, empty message of the schema type registered
// for a command.
type Constructor func() wire.Message

// Factory is the single authority turning (cmd, bytes) into a typed,
// parsed message. Construct once via New and treat as read-only afterward.
type Factory struct {
	ctors []Constructor // dense, indexed by wire.Command
}

// New builds the factory by registering every known command's schema type.
// Fails fatally (spec.md §7 class 7) only in the sense that a caller who
// gets a non-nil *Factory back has a complete, valid factory; there is
// nothing partial to observe.
func New() *Factory {
	f := &Factory{ctors: make([]Constructor, commandCount())}
	f.register(wire.CmdIPCStreamAuthHandshake, func() wire.Message { return &wire.AuthHandshake{} })
	f.register(wire.CmdCSReqExample, func() wire.Message { return &wire.CSReqExample{} })
	f.register(wire.CmdTunnelWorker2OtherLuaVM, func() wire.Message { return &wire.Worker2OtherLuaVM{} })
	f.register(wire.CmdTunnelWorker2OtherEventNewClientConnection, func() wire.Message {
		return &wire.Worker2OtherEventNewClientConnection{}
	})
	f.register(wire.CmdTunnelWorker2OtherEventCloseClientConnection, func() wire.Message {
		return &wire.Worker2OtherEventCloseClientConnection{}
	})
	f.register(wire.CmdTunnelOtherLuaVM2WorkerConn, func() wire.Message { return &wire.OtherLuaVM2WorkerConn{} })
	f.register(wire.CmdTunnelOther2WorkerTest, func() wire.Message { return &wire.Other2WorkerTest{} })
	return f
}

func (f *Factory) register(cmd wire.Command, ctor Constructor) {
	f.ctors[cmd] = ctor
}

// New returns a fresh empty message for cmd, or ok=false if cmd is
// unregistered (spec.md §4.4: an unknown command is a recoverable error,
// log and drop, no VM dispatch).
func (f *Factory) New(cmd wire.Command) (wire.Message, bool) {
	if !cmd.IsValid() || int(cmd) >= len(f.ctors) {
		return nil, false
	}
	ctor := f.ctors[cmd]
	if ctor == nil {
		return nil, false
	}
	return ctor(), true
}

// Parse looks up cmd's schema type and parses payload into it in one step.
func (f *Factory) Parse(cmd wire.Command, payload []byte) (wire.Message, bool, error) {
	msg, ok := f.New(cmd)
	if !ok {
		return nil, false, nil
	}
	if err := msg.Unmarshal(payload); err != nil {
		return nil, true, err
	}
	return msg, true, nil
}

// commandCount mirrors wire's contiguous command range without exporting
// wire's private sentinel; CmdTunnelOther2WorkerTest is presently the
// highest registered command, so size the array generously using the
// largest cmd slot plus one below the package-private cap instead of
// guessing a constant that could fall out of sync with wire.Command.
func commandCount() int {
	max := wire.CmdUnknown
	for _, c := range []wire.Command{
		wire.CmdIPCStreamAuthHandshake,
		wire.CmdCSReqExample,
		wire.CmdTunnelWorker2OtherLuaVM,
		wire.CmdTunnelWorker2OtherEventNewClientConnection,
		wire.CmdTunnelWorker2OtherEventCloseClientConnection,
		wire.CmdTunnelOtherLuaVM2WorkerConn,
		wire.CmdTunnelOtherLuaVM2WorkerCloseClientConnection,
		wire.CmdTunnelOther2WorkerTest,
	} {
		if c > max {
			max = c
		}
	}
	return int(max) + 1
}
