// File: process/other.go
// Author: momentics <momentics@gmail.com>
//
// Grounded on other_app.cpp's on_process_connection / on_recv_package and
// its periodic broadcast timer in original_source.

package process

import (
	"log"

	"github.com/momentics/mapsvr/cmdfactory"
	"github.com/momentics/mapsvr/ipcstream"
	"github.com/momentics/mapsvr/tunnel"
	"github.com/momentics/mapsvr/vm"
	"github.com/momentics/mapsvr/wire"
)

// OtherContext is the per-process state for the single other instance
// (spec.md §2): the authoritative script VM, the command factory it decodes
// through, the IPC mesh's auth table, and the broadcast cadence timer.
type OtherContext struct {
	TunnelID   int32
	Dispatcher *tunnel.Dispatcher
	VM         *vm.Slot
	Factory    *cmdfactory.Factory
	AuthTable  *ipcstream.AuthTable

	broadcast tunnel.BroadcastTimer
}

// NewOtherContext builds the other context and registers its own tunnel id
// plus every worker tunnel id it will ever forward to.
func NewOtherContext(tunnelID int32, workerTunnelIDs []int32, dispatcher *tunnel.Dispatcher, vmSlot *vm.Slot, factory *cmdfactory.Factory) *OtherContext {
	dispatcher.RegisterTunnel(tunnelID)
	for _, id := range workerTunnelIDs {
		dispatcher.RegisterTunnel(id)
	}
	return &OtherContext{
		TunnelID:   tunnelID,
		Dispatcher: dispatcher,
		VM:         vmSlot,
		Factory:    factory,
		AuthTable:  ipcstream.NewAuthTable(),
	}
}

// DrainFromWorkers decodes every Worker2OtherLuaVM envelope queued since the
// last tick and dispatches the inner message into the other-VM.
func (o *OtherContext) DrainFromWorkers() {
	for _, item := range o.Dispatcher.Drain(o.TunnelID) {
		env, err := tunnel.UnwrapWorker2Other(item.Pkg)
		if err != nil {
			log.Printf("[other] %v", err)
			continue
		}
		msg, ok, err := o.Factory.Parse(env.Inner.Cmd, env.Inner.Payload)
		if err != nil {
			log.Printf("[other] gid=%d decode cmd %d: %v", env.Gid, env.Inner.Cmd, err)
			continue
		}
		if !ok {
			log.Printf("[other] gid=%d unknown cmd %d", env.Gid, env.Inner.Cmd)
			continue
		}
		o.VM.DispatchClientMessage(env.Gid, env.WorkerIdx, env.Inner.Cmd, msg)
	}
}

// OnIPCBoundMessage decodes and dispatches a message already attributed to
// a bound IPC peer AppId (spec.md §4.2 handshake FSM: Bound state).
func (o *OtherContext) OnIPCBoundMessage(fromAppID string, pkg wire.ProtoPackage) {
	msg, ok, err := o.Factory.Parse(pkg.Cmd, pkg.Payload)
	if err != nil {
		log.Printf("[other] ipc from=%s decode cmd %d: %v", fromAppID, pkg.Cmd, err)
		return
	}
	if !ok {
		log.Printf("[other] ipc from=%s unknown cmd %d", fromAppID, pkg.Cmd)
		return
	}
	o.VM.DispatchIPCMessage(fromAppID, pkg.Cmd, msg)
}

// SendToClient is the other-VM's client-forward path: it wraps inner as an
// OtherLuaVM2WorkerConn envelope addressed at gid/workerIdx and forwards it
// to that worker's tunnel mailbox.
func (o *OtherContext) SendToClient(gid uint64, workerIdx int32, inner wire.ProtoPackage) {
	pkg, err := tunnel.WrapOtherToWorkerConn(gid, workerIdx, inner)
	if err != nil {
		log.Printf("[other] wrap client forward: %v", err)
		return
	}
	o.Dispatcher.Forward(o.TunnelID, []int32{workerIdx}, pkg)
}

// CloseClient requests that the owning worker forcibly close gid's
// connection, using the sentinel command rather than a forwarded frame.
func (o *OtherContext) CloseClient(gid uint64, workerIdx int32) {
	o.SendToClient(gid, workerIdx, wire.ProtoPackage{Cmd: wire.CmdTunnelOtherLuaVM2WorkerCloseClientConnection})
}

// Tick advances the broadcast timer and, if due, fans an Other2WorkerTest
// message out to every live tunnel id, then runs the other-VM's own tick.
// Draining queued worker traffic happens first. The broadcast's tunnel id
// list is read from the dispatcher on every firing, never cached
// (spec.md §4.3).
func (o *OtherContext) Tick(nowUnix int64) {
	o.DrainFromWorkers()

	if o.broadcast.ShouldFire(nowUnix) {
		pkg, err := wire.Pack(wire.CmdTunnelOther2WorkerTest, &wire.Other2WorkerTest{Time: nowUnix})
		if err != nil {
			log.Printf("[other] broadcast pack: %v", err)
		} else {
			o.Dispatcher.Forward(o.TunnelID, o.Dispatcher.TunnelIDs(), pkg)
		}
	}

	o.VM.Tick()
}
