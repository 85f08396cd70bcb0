package ipcstream_test

import (
	"encoding/binary"
	"testing"

	"github.com/momentics/mapsvr/api"
	"github.com/momentics/mapsvr/ipcstream"
	"github.com/momentics/mapsvr/wire"
)

type mockConn struct {
	recv   []byte
	sent   [][]byte
	closed bool
	gid    api.ConnectionId
}

func (c *mockConn) GetRecvBufferSize() int       { return len(c.recv) }
func (c *mockConn) GetRecvBufferReadPtr() []byte { return c.recv }
func (c *mockConn) RecvBufferMoveReadPtrN(n int)  { c.recv = c.recv[n:] }
func (c *mockConn) GetSendBufferSize() int       { return 0 }
func (c *mockConn) SendData(b []byte) (int, error) {
	c.sent = append(c.sent, append([]byte(nil), b...))
	return len(b), nil
}
func (c *mockConn) SetConnIsClose(close bool)       { c.closed = close }
func (c *mockConn) EventMod(mask int, oneshot bool) {}
func (c *mockConn) GetConnGid() api.ConnectionId    { return c.gid }
func (c *mockConn) GetWorkerIdx() int               { return 0 }

func frame(t *testing.T, cmd wire.Command, msg wire.Message) []byte {
	t.Helper()
	pkg, err := wire.Pack(cmd, msg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := pkg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 8+len(b))
	binary.BigEndian.PutUint64(buf[:8], uint64(len(b)))
	copy(buf[8:], b)
	return buf
}

func TestHandshakeBindsAndLookup(t *testing.T) {
	conn := &mockConn{gid: 42, recv: frame(t, wire.CmdIPCStreamAuthHandshake, &wire.AuthHandshake{AppID: "peer-a"})}
	table := ipcstream.NewAuthTable()
	st := &ipcstream.ConnState{Outbound: false}

	var delivered bool
	ipcstream.OnProcessConnection(conn, st, table, "self", nil_handler(&delivered))

	gid, ok := table.LookupByAppID("peer-a")
	if !ok || gid != 42 {
		t.Fatalf("expected peer-a bound to gid 42, got %d ok=%v", gid, ok)
	}
	if delivered {
		t.Fatal("handshake must not be delivered to the application handler")
	}
}

func nil_handler(delivered *bool) ipcstream.Handler {
	return ipcstream.HandlerFunc(func(ctx api.ConnCtx, fromAppID string, pkg wire.ProtoPackage) {
		*delivered = true
	})
}

func TestOutboundConnectionEchoesHandshake(t *testing.T) {
	conn := &mockConn{gid: 7, recv: frame(t, wire.CmdIPCStreamAuthHandshake, &wire.AuthHandshake{AppID: "peer-b"})}
	table := ipcstream.NewAuthTable()
	st := &ipcstream.ConnState{Outbound: true}

	ipcstream.OnProcessConnection(conn, st, table, "self", nil_handler(new(bool)))

	if len(conn.sent) != 1 {
		t.Fatalf("outbound side should echo exactly one handshake back, got %d sends", len(conn.sent))
	}
}

func TestInboundConnectionDoesNotEchoHandshake(t *testing.T) {
	conn := &mockConn{gid: 7, recv: frame(t, wire.CmdIPCStreamAuthHandshake, &wire.AuthHandshake{AppID: "peer-b"})}
	table := ipcstream.NewAuthTable()
	st := &ipcstream.ConnState{Outbound: false}

	ipcstream.OnProcessConnection(conn, st, table, "self", nil_handler(new(bool)))

	if len(conn.sent) != 0 {
		t.Fatalf("inbound side must not echo on receiving the peer's handshake, got %d sends", len(conn.sent))
	}
}

func TestDoubleBindingLeavesFirstUntouched(t *testing.T) {
	table := ipcstream.NewAuthTable()
	if !table.Bind(1, "A") {
		t.Fatal("first bind should succeed")
	}
	if table.Bind(2, "A") {
		t.Fatal("second bind of the same AppId must fail")
	}
	gid, ok := table.LookupByAppID("A")
	if !ok || gid != 1 {
		t.Fatalf("original binding must remain, got gid=%d ok=%v", gid, ok)
	}
}

func TestZeroLengthFrameAdvancesAndStops(t *testing.T) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, 0)
	// second frame, valid, would be skipped because the pass stops.
	buf = append(buf, frame(t, wire.CmdIPCStreamAuthHandshake, &wire.AuthHandshake{AppID: "ignored"})...)

	conn := &mockConn{gid: 1, recv: buf}
	table := ipcstream.NewAuthTable()
	st := &ipcstream.ConnState{}
	ipcstream.OnProcessConnection(conn, st, table, "self", nil_handler(new(bool)))

	if conn.GetRecvBufferSize() != len(buf)-8 {
		t.Fatalf("expected cursor advanced only past the zero-length header, remaining=%d want=%d", conn.GetRecvBufferSize(), len(buf)-8)
	}
	if _, ok := table.LookupByAppID("ignored"); ok {
		t.Fatal("the frame after a zero-length frame must not be processed in the same pass")
	}
}

func TestBoundMessageDeliveredWithSourceAppID(t *testing.T) {
	table := ipcstream.NewAuthTable()
	table.Bind(9, "peer-c")
	conn := &mockConn{gid: 9, recv: frame(t, wire.CmdCSReqExample, &wire.CSReqExample{TestContext: "X"})}
	st := &ipcstream.ConnState{Bound: true}

	var gotFrom string
	var gotCmd wire.Command
	ipcstream.OnProcessConnection(conn, st, table, "self", ipcstream.HandlerFunc(func(ctx api.ConnCtx, fromAppID string, pkg wire.ProtoPackage) {
		gotFrom = fromAppID
		gotCmd = pkg.Cmd
	}))

	if gotFrom != "peer-c" || gotCmd != wire.CmdCSReqExample {
		t.Fatalf("got from=%q cmd=%d", gotFrom, gotCmd)
	}
}

func TestUnboundMessageDropped(t *testing.T) {
	table := ipcstream.NewAuthTable()
	conn := &mockConn{gid: 123, recv: frame(t, wire.CmdCSReqExample, &wire.CSReqExample{TestContext: "X"})}
	st := &ipcstream.ConnState{}

	var delivered bool
	ipcstream.OnProcessConnection(conn, st, table, "self", nil_handler(&delivered))
	if delivered {
		t.Fatal("message from an unbound connection must be dropped, not delivered")
	}
}
