// File: ipcstream/reassembler.go
// Author: momentics <momentics@gmail.com>

package ipcstream

import (
	"encoding/binary"
	"log"

	"github.com/momentics/mapsvr/api"
	"github.com/momentics/mapsvr/wire"
)

// MaxBufferedBytes is the receive-buffer backpressure cap (spec.md §4.2).
const MaxBufferedBytes = 2_048_000

// Handler receives messages once the connection they arrived on is bound to
// a peer AppId.
type Handler interface {
	OnBoundMessage(ctx api.ConnCtx, fromAppID string, pkg wire.ProtoPackage)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx api.ConnCtx, fromAppID string, pkg wire.ProtoPackage)

func (f HandlerFunc) OnBoundMessage(ctx api.ConnCtx, fromAppID string, pkg wire.ProtoPackage) {
	f(ctx, fromAppID, pkg)
}

// ConnState is the per-connection handshake state spec.md §4.2 models as
// Unauthenticated -> AwaitingPeerAuth -> Bound/Rejected/Closed. Outbound
// records whether this side initiated the connection (the source's
// is_this2remote); it drives the asymmetric echoed-handshake quirk
// preserved below (spec.md §9).
type ConnState struct {
	Outbound bool
	Bound    bool
}

// OnNewConnection sends our own AuthHandshake immediately for
// inbound connections. Outbound connections wait for the peer to speak
// first (spec.md §4.2 handshake table).
func OnNewConnection(ctx api.ConnCtx, st *ConnState, selfAppID string) error {
	if st.Outbound {
		return nil
	}
	return sendHandshake(ctx, selfAppID)
}

// OnCloseConnection removes any binding owned by ctx's connection.
func OnCloseConnection(ctx api.ConnCtx, table *AuthTable) {
	table.Unbind(uint64(ctx.GetConnGid()))
}

// OnProcessConnection parses as many complete [be64 length][ProtoPackage]
// frames as are available and dispatches each. A parse failure advances the
// read cursor past the bad frame and stops the pass — preserving the
// source's early break rather than continuing to the next queued frame
// (spec.md §9, Open Questions).
func OnProcessConnection(ctx api.ConnCtx, st *ConnState, table *AuthTable, selfAppID string, h Handler) {
	if ctx.GetRecvBufferSize() > MaxBufferedBytes {
		log.Printf("[ipc] gid=%d receive buffer exceeds cap, closing", ctx.GetConnGid())
		closeConn(ctx)
		return
	}

	for ctx.GetRecvBufferSize() > 0 {
		data := ctx.GetRecvBufferReadPtr()
		if len(data) < 8 {
			break
		}
		length := binary.BigEndian.Uint64(data[:8])
		if length+8 > uint64(len(data)) {
			break
		}

		if length == 0 {
			log.Printf("[ipc] gid=%d zero-length frame", ctx.GetConnGid())
			ctx.RecvBufferMoveReadPtrN(8)
			break
		}

		var pkg wire.ProtoPackage
		if err := pkg.Unmarshal(data[8 : 8+length]); err != nil {
			log.Printf("[ipc] gid=%d parse failed: %v", ctx.GetConnGid(), err)
			ctx.RecvBufferMoveReadPtrN(8 + int(length))
			break
		}

		ctx.RecvBufferMoveReadPtrN(8 + int(length))
		onRecvPackage(ctx, st, table, selfAppID, pkg, h)
	}
}

func onRecvPackage(ctx api.ConnCtx, st *ConnState, table *AuthTable, selfAppID string, pkg wire.ProtoPackage, h Handler) {
	if pkg.Cmd == wire.CmdIPCStreamAuthHandshake {
		// Preserved quirk (spec.md §9): only the side that initiated the
		// connection echoes a handshake back on receiving the peer's.
		if st.Outbound {
			if err := sendHandshake(ctx, selfAppID); err != nil {
				log.Printf("[ipc] gid=%d echo handshake failed: %v", ctx.GetConnGid(), err)
			}
		}

		var auth wire.AuthHandshake
		if err := auth.Unmarshal(pkg.Payload); err != nil {
			log.Printf("[ipc] gid=%d bad AuthHandshake payload: %v", ctx.GetConnGid(), err)
			return
		}

		gid := uint64(ctx.GetConnGid())
		if table.Bind(gid, auth.AppID) {
			st.Bound = true
			log.Printf("[ipc] {appId %s, auth_gid %d} insert to authenticated_ipc_pair succ", auth.AppID, gid)
		} else {
			log.Printf("[ipc] {appId %s, auth_gid %d} insert to authenticated_ipc_pair failed", auth.AppID, gid)
		}
		return
	}

	gid := uint64(ctx.GetConnGid())
	fromAppID, ok := table.LookupByGid(gid)
	if !ok {
		log.Printf("[ipc] gid=%d not bound, dropping cmd %d", gid, pkg.Cmd)
		return
	}
	h.OnBoundMessage(ctx, fromAppID, pkg)
}

func sendHandshake(ctx api.ConnCtx, selfAppID string) error {
	pkg, err := wire.Pack(wire.CmdIPCStreamAuthHandshake, &wire.AuthHandshake{AppID: selfAppID})
	if err != nil {
		return err
	}
	b, err := pkg.Marshal()
	if err != nil {
		return err
	}
	return SendFramed(ctx, b)
}

// SendFramed writes data prefixed with its big-endian uint64 length, the
// outbound half of the [be64 length][ProtoPackage] framing (spec.md §4.2).
func SendFramed(ctx api.ConnCtx, data []byte) error {
	buf := make([]byte, 8+len(data))
	binary.BigEndian.PutUint64(buf[:8], uint64(len(data)))
	copy(buf[8:], data)
	_, err := ctx.SendData(buf)
	return err
}

func closeConn(ctx api.ConnCtx) {
	ctx.SetConnIsClose(true)
	ctx.EventMod(0, false)
}
