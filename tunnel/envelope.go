// File: tunnel/envelope.go
// Author: momentics <momentics@gmail.com>
//
// Builders and unwrappers for the two worker<->other envelopes from
// spec.md §3/§4.3.

package tunnel

import (
	"fmt"

	"github.com/momentics/mapsvr/api"
	"github.com/momentics/mapsvr/wire"
)

// WrapClientConnect builds the Worker2OtherLuaVM envelope emitted on a new
// client connection, from the event a worker raises via
// process.WorkerContext.OnClientConnect.
func WrapClientConnect(evt api.ClientOpenEvent) (wire.ProtoPackage, error) {
	gid := uint64(evt.Gid)
	innerMsg := &wire.Worker2OtherEventNewClientConnection{Gid: gid}
	inner, err := wire.Pack(wire.CmdTunnelWorker2OtherEventNewClientConnection, innerMsg)
	if err != nil {
		return wire.ProtoPackage{}, fmt.Errorf("tunnel: wrap connect: %w", err)
	}
	return wrapWorker2Other(gid, int32(evt.WorkerIdx), inner)
}

// WrapClientClose builds the Worker2OtherLuaVM envelope emitted when a
// client connection closes, from the event a worker raises via
// process.WorkerContext.OnClientClose.
func WrapClientClose(evt api.ClientCloseEvent) (wire.ProtoPackage, error) {
	gid := uint64(evt.Gid)
	innerMsg := &wire.Worker2OtherEventCloseClientConnection{Gid: gid}
	inner, err := wire.Pack(wire.CmdTunnelWorker2OtherEventCloseClientConnection, innerMsg)
	if err != nil {
		return wire.ProtoPackage{}, fmt.Errorf("tunnel: wrap close: %w", err)
	}
	return wrapWorker2Other(gid, int32(evt.WorkerIdx), inner)
}

// WrapClientFrame builds the Worker2OtherLuaVM envelope wrapping a client's
// own parsed ProtoPackage (a full client WebSocket frame).
func WrapClientFrame(gid uint64, workerIdx int32, inner wire.ProtoPackage) (wire.ProtoPackage, error) {
	return wrapWorker2Other(gid, workerIdx, inner)
}

func wrapWorker2Other(gid uint64, workerIdx int32, inner wire.ProtoPackage) (wire.ProtoPackage, error) {
	env := &wire.Worker2OtherLuaVM{Gid: gid, WorkerIdx: workerIdx, Inner: inner}
	pkg, err := wire.Pack(wire.CmdTunnelWorker2OtherLuaVM, env)
	if err != nil {
		return wire.ProtoPackage{}, fmt.Errorf("tunnel: wrap worker2other: %w", err)
	}
	return pkg, nil
}

// UnwrapWorker2Other decodes a CmdTunnelWorker2OtherLuaVM package back to
// its envelope.
func UnwrapWorker2Other(pkg wire.ProtoPackage) (*wire.Worker2OtherLuaVM, error) {
	if pkg.Cmd != wire.CmdTunnelWorker2OtherLuaVM {
		return nil, fmt.Errorf("tunnel: unwrap worker2other: unexpected cmd %d", pkg.Cmd)
	}
	var env wire.Worker2OtherLuaVM
	if err := env.Unmarshal(pkg.Payload); err != nil {
		return nil, fmt.Errorf("tunnel: unwrap worker2other: %w", err)
	}
	return &env, nil
}

// WrapOtherToWorkerConn builds the OtherLuaVM2WorkerConn envelope the
// other-VM uses to reach one specific client connection.
func WrapOtherToWorkerConn(gid uint64, workerIdx int32, inner wire.ProtoPackage) (wire.ProtoPackage, error) {
	env := &wire.OtherLuaVM2WorkerConn{Gid: gid, WorkerIdx: workerIdx, Inner: inner}
	pkg, err := wire.Pack(wire.CmdTunnelOtherLuaVM2WorkerConn, env)
	if err != nil {
		return wire.ProtoPackage{}, fmt.Errorf("tunnel: wrap other2worker: %w", err)
	}
	return pkg, nil
}

// UnwrapOtherToWorkerConn decodes a CmdTunnelOtherLuaVM2WorkerConn package
// back to its envelope.
func UnwrapOtherToWorkerConn(pkg wire.ProtoPackage) (*wire.OtherLuaVM2WorkerConn, error) {
	if pkg.Cmd != wire.CmdTunnelOtherLuaVM2WorkerConn {
		return nil, fmt.Errorf("tunnel: unwrap other2worker: unexpected cmd %d", pkg.Cmd)
	}
	var env wire.OtherLuaVM2WorkerConn
	if err := env.Unmarshal(pkg.Payload); err != nil {
		return nil, fmt.Errorf("tunnel: unwrap other2worker: %w", err)
	}
	return &env, nil
}

// IsCloseClientCommand reports whether inner is the sentinel command that
// requests forced closure of the target client connection, rather than a
// frame to forward (spec.md §4.3 scenario 2).
func IsCloseClientCommand(inner wire.ProtoPackage) bool {
	return inner.Cmd == wire.CmdTunnelOtherLuaVM2WorkerCloseClientConnection
}
