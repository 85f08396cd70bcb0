package netconn_test

import (
	"net"
	"testing"

	"github.com/momentics/mapsvr/api"
	"github.com/momentics/mapsvr/netconn"
)

var (
	_ api.NetConn = (*netconn.Conn)(nil)
	_ api.ConnCtx = (*netconn.Conn)(nil)
)

func TestFillFromSocketAndConsume(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := netconn.New(server, 1, 0)

	go func() {
		client.Write([]byte("hello"))
	}()

	n, err := c.FillFromSocket()
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("read %d bytes, want 5", n)
	}
	if string(c.GetRecvBufferReadPtr()) != "hello" {
		t.Fatalf("got %q", c.GetRecvBufferReadPtr())
	}

	c.RecvBufferMoveReadPtrN(2)
	if string(c.GetRecvBufferReadPtr()) != "llo" {
		t.Fatalf("got %q after advancing cursor", c.GetRecvBufferReadPtr())
	}
}

func TestSetConnIsCloseTracksState(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	c := netconn.New(server, 2, 1)

	if c.IsMarkedClose() {
		t.Fatal("should not start marked closed")
	}
	c.SetConnIsClose(true)
	if !c.IsMarkedClose() {
		t.Fatal("should be marked closed")
	}
}
