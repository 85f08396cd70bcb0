// File: process/worker.go
// Author: momentics <momentics@gmail.com>
//
// Grounded on websocket_app.cpp's on_new_connection / on_close_connection /
// on_process_frame / on_worker_tunnel in original_source.

package process

import (
	"log"
	"sync"

	"github.com/momentics/mapsvr/api"
	"github.com/momentics/mapsvr/netconn"
	"github.com/momentics/mapsvr/tunnel"
	"github.com/momentics/mapsvr/vm"
	"github.com/momentics/mapsvr/wire"
	"github.com/momentics/mapsvr/ws"
)

// WorkerContext is the per-process state for one worker instance (spec.md
// §2): its own tunnel id, the dispatcher shared with the other process, the
// worker's VM slot, and the client connections it exclusively owns.
//
// conns/wsState are touched both by each connection's own reader goroutine
// (OnClientConnect/OnClientClose/OnProcessConnection) and by the tick
// goroutine's DrainFromOther, so unlike the rest of a process's serial
// state they sit at a genuine goroutine boundary and need mu (spec.md §5).
type WorkerContext struct {
	TunnelID      int32
	OtherTunnelID int32
	Dispatcher    *tunnel.Dispatcher
	VM            *vm.Slot

	mu      sync.Mutex
	conns   map[api.ConnectionId]*netconn.Conn
	wsState map[api.ConnectionId]*ws.State
}

// NewWorkerContext builds a worker context and registers its tunnel id.
func NewWorkerContext(tunnelID, otherTunnelID int32, dispatcher *tunnel.Dispatcher, vmSlot *vm.Slot) *WorkerContext {
	dispatcher.RegisterTunnel(tunnelID)
	return &WorkerContext{
		TunnelID:      tunnelID,
		OtherTunnelID: otherTunnelID,
		Dispatcher:    dispatcher,
		VM:            vmSlot,
		conns:         make(map[api.ConnectionId]*netconn.Conn),
		wsState:       make(map[api.ConnectionId]*ws.State),
	}
}

// OnClientConnect registers a new client connection and notifies the other
// process (spec.md §4.3).
func (w *WorkerContext) OnClientConnect(conn *netconn.Conn) {
	gid := conn.GetConnGid()
	w.mu.Lock()
	w.conns[gid] = conn
	w.wsState[gid] = &ws.State{}
	w.mu.Unlock()

	evt := api.ClientOpenEvent{Gid: gid, WorkerIdx: int(w.TunnelID)}
	pkg, err := tunnel.WrapClientConnect(evt)
	if err != nil {
		log.Printf("[worker] wrap connect: %v", err)
		return
	}
	w.Dispatcher.Forward(w.TunnelID, []int32{w.OtherTunnelID}, pkg)
}

// OnClientClose unregisters a client connection and notifies the other
// process.
func (w *WorkerContext) OnClientClose(gid api.ConnectionId) {
	w.mu.Lock()
	delete(w.conns, gid)
	delete(w.wsState, gid)
	w.mu.Unlock()

	evt := api.ClientCloseEvent{Gid: gid, WorkerIdx: int(w.TunnelID)}
	pkg, err := tunnel.WrapClientClose(evt)
	if err != nil {
		log.Printf("[worker] wrap close: %v", err)
		return
	}
	w.Dispatcher.Forward(w.TunnelID, []int32{w.OtherTunnelID}, pkg)
}

// OnProcessConnection reassembles and forwards whatever application
// messages are ready on conn's receive buffer.
func (w *WorkerContext) OnProcessConnection(conn *netconn.Conn) {
	gid := conn.GetConnGid()
	w.mu.Lock()
	st := w.wsState[gid]
	if st == nil {
		st = &ws.State{}
		w.wsState[gid] = st
	}
	w.mu.Unlock()
	ws.OnProcessConnection(conn, st, ws.HandlerFunc(w.onMessage))
}

func (w *WorkerContext) onMessage(ctx api.ConnCtx, opcode byte, payload []byte) {
	var inner wire.ProtoPackage
	if err := inner.Unmarshal(payload); err != nil {
		log.Printf("[worker] gid=%d malformed frame body, closing: %v", ctx.GetConnGid(), err)
		ctx.SetConnIsClose(true)
		ctx.EventMod(0, false)
		return
	}
	pkg, err := tunnel.WrapClientFrame(uint64(ctx.GetConnGid()), w.TunnelID, inner)
	if err != nil {
		log.Printf("[worker] wrap frame: %v", err)
		return
	}
	w.Dispatcher.Forward(w.TunnelID, []int32{w.OtherTunnelID}, pkg)
}

// DrainFromOther delivers every TunnelPackage queued for this worker since
// the last tick: either a frame to forward to one client connection, or the
// sentinel command requesting that connection's forced closure
// (spec.md §4.3).
func (w *WorkerContext) DrainFromOther() {
	for _, item := range w.Dispatcher.Drain(w.TunnelID) {
		env, err := tunnel.UnwrapOtherToWorkerConn(item.Pkg)
		if err != nil {
			log.Printf("[worker] %v", err)
			continue
		}
		gid := api.ConnectionId(env.Gid)
		w.mu.Lock()
		conn, ok := w.conns[gid]
		w.mu.Unlock()
		if !ok {
			log.Printf("[worker] gid=%d no longer present, dropping", gid)
			continue
		}
		if tunnel.IsCloseClientCommand(env.Inner) {
			conn.SetConnIsClose(true)
			conn.EventMod(0, false)
			continue
		}
		b, err := env.Inner.Marshal()
		if err != nil {
			log.Printf("[worker] marshal inner: %v", err)
			continue
		}
		if err := ws.SendBinary(conn, b); err != nil {
			log.Printf("[worker] gid=%d send failed: %v", gid, err)
		}
	}
}

// Tick drains queued replies from the other process, then runs this
// worker's own VM tick.
func (w *WorkerContext) Tick() {
	w.DrainFromOther()
	w.VM.Tick()
}
