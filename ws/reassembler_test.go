package ws_test

import (
	"bytes"
	"testing"

	"github.com/momentics/mapsvr/api"
	"github.com/momentics/mapsvr/ws"
)

type mockConn struct {
	recv   []byte
	sent   [][]byte
	closed bool
	gid    api.ConnectionId
}

func (c *mockConn) GetRecvBufferSize() int          { return len(c.recv) }
func (c *mockConn) GetRecvBufferReadPtr() []byte    { return c.recv }
func (c *mockConn) RecvBufferMoveReadPtrN(n int)     { c.recv = c.recv[n:] }
func (c *mockConn) GetSendBufferSize() int          { return 0 }
func (c *mockConn) SendData(b []byte) (int, error) {
	c.sent = append(c.sent, append([]byte(nil), b...))
	return len(b), nil
}
func (c *mockConn) SetConnIsClose(close bool)   { c.closed = close }
func (c *mockConn) EventMod(mask int, oneshot bool) {}
func (c *mockConn) GetConnGid() api.ConnectionId { return c.gid }
func (c *mockConn) GetWorkerIdx() int            { return 0 }

func maskedFrame(opcode byte, fin bool, key [4]byte, payload []byte) []byte {
	b0 := byte(0)
	if fin {
		b0 |= 0x80
	}
	b0 |= opcode & 0x0F
	masked := make([]byte, len(payload))
	for i, b := range payload {
		masked[i] = b ^ key[i%4]
	}
	var hdr []byte
	switch {
	case len(payload) <= 125:
		hdr = []byte{b0, 0x80 | byte(len(payload))}
	case len(payload) <= 0xFFFF:
		hdr = []byte{b0, 0x80 | 126, byte(len(payload) >> 8), byte(len(payload))}
	default:
		panic("not needed for these tests")
	}
	hdr = append(hdr, key[:]...)
	return append(hdr, masked...)
}

func TestRoundTripSendAndReassemble(t *testing.T) {
	payload := []byte("hello world")
	conn := &mockConn{}
	if err := ws.SendBinary(conn, payload); err != nil {
		t.Fatal(err)
	}
	if len(conn.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(conn.sent))
	}

	recvConn := &mockConn{recv: conn.sent[0]}
	var got []byte
	var gotOpcode byte
	st := &ws.State{}
	ws.OnProcessConnection(recvConn, st, ws.HandlerFunc(func(ctx api.ConnCtx, opcode byte, p []byte) {
		gotOpcode = opcode
		got = p
	}))
	if gotOpcode != ws.OpcodeBinary {
		t.Fatalf("opcode = %#x, want BINARY", gotOpcode)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
}

func TestContinuationReassembly(t *testing.T) {
	key := [4]byte{0x00, 0xFF, 0x12, 0x34}
	var buf []byte
	buf = append(buf, maskedFrame(ws.OpcodeText, false, key, []byte("ab"))...)
	buf = append(buf, maskedFrame(ws.OpcodeContinuation, false, key, []byte("cd"))...)
	buf = append(buf, maskedFrame(ws.OpcodeContinuation, true, key, []byte("ef"))...)

	conn := &mockConn{recv: buf}
	var got []byte
	var opcode byte
	st := &ws.State{}
	ws.OnProcessConnection(conn, st, ws.HandlerFunc(func(ctx api.ConnCtx, op byte, p []byte) {
		opcode = op
		got = p
	}))
	if opcode != ws.OpcodeText {
		t.Fatalf("opcode = %#x, want TEXT", opcode)
	}
	if string(got) != "abcdef" {
		t.Fatalf("got %q, want abcdef", got)
	}
	if conn.closed {
		t.Fatal("connection should not be closed")
	}
}

func TestOversizedAccumulatorClosesBeforeDelivery(t *testing.T) {
	key := [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
	big := make([]byte, 65535)
	var buf []byte
	buf = append(buf, maskedFrame(ws.OpcodeText, false, key, big)...)
	// 16 continuation frames of 65535 bytes each exceed the 1,024,000 cap
	// without ever setting FIN.
	for i := 0; i < 16; i++ {
		buf = append(buf, maskedFrame(ws.OpcodeContinuation, false, key, big)...)
	}

	conn := &mockConn{recv: buf}
	delivered := false
	st := &ws.State{}
	ws.OnProcessConnection(conn, st, ws.HandlerFunc(func(ctx api.ConnCtx, op byte, p []byte) {
		delivered = true
	}))
	if delivered {
		t.Fatal("message must not reach the handler once the cap is exceeded")
	}
	if !conn.closed {
		t.Fatal("connection should be closed once the accumulator cap is exceeded")
	}
}

func TestDisallowedOpcodeCloses(t *testing.T) {
	conn := &mockConn{recv: []byte{0x80 | ws.OpcodePing, 0x00}}
	st := &ws.State{}
	ws.OnProcessConnection(conn, st, ws.HandlerFunc(func(ctx api.ConnCtx, op byte, p []byte) {
		t.Fatal("handler must not be invoked for a disallowed opcode")
	}))
	if !conn.closed {
		t.Fatal("connection should be closed for a disallowed opcode")
	}
}

func TestIncompleteFrameLeavesBufferUntouched(t *testing.T) {
	// A 126-length code frame header promising 2 extended-length bytes but
	// supplying only 1: must not advance the read cursor.
	conn := &mockConn{recv: []byte{0x82, 0xFE, 0x00}}
	st := &ws.State{}
	ws.OnProcessConnection(conn, st, ws.HandlerFunc(func(ctx api.ConnCtx, op byte, p []byte) {
		t.Fatal("handler must not fire on an incomplete frame")
	}))
	if conn.GetRecvBufferSize() != 3 {
		t.Fatalf("recv buffer should be untouched, got size %d", conn.GetRecvBufferSize())
	}
	if conn.closed {
		t.Fatal("connection should not be closed while waiting for more bytes")
	}
}
