package udp_test

import (
	"testing"

	"github.com/momentics/mapsvr/cmdfactory"
	"github.com/momentics/mapsvr/udp"
	"github.com/momentics/mapsvr/wire"
)

type recordingDispatcher struct {
	ip   string
	port int
	cmd  wire.Command
	msg  wire.Message
	n    int
}

func (d *recordingDispatcher) DispatchUDPMessage(remoteIP string, remotePort int, cmd wire.Command, msg wire.Message) {
	d.ip, d.port, d.cmd, d.msg = remoteIP, remotePort, cmd, msg
	d.n++
}

func TestOnDatagramDispatchesParsedMessage(t *testing.T) {
	pkg, err := wire.Pack(wire.CmdCSReqExample, &wire.CSReqExample{TestContext: "ping"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := pkg.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	d := &recordingDispatcher{}
	h := udp.NewHandler(cmdfactory.New(), d)
	h.OnDatagram(b, "203.0.113.7", 41234)

	if d.n != 1 {
		t.Fatalf("expected 1 dispatch, got %d", d.n)
	}
	if d.ip != "203.0.113.7" || d.port != 41234 || d.cmd != wire.CmdCSReqExample {
		t.Fatalf("got ip=%s port=%d cmd=%d", d.ip, d.port, d.cmd)
	}
	req := d.msg.(*wire.CSReqExample)
	if req.TestContext != "ping" {
		t.Fatalf("testcontext = %q", req.TestContext)
	}
}

func TestOnDatagramDropsOversized(t *testing.T) {
	d := &recordingDispatcher{}
	h := udp.NewHandler(cmdfactory.New(), d)
	h.OnDatagram(make([]byte, udp.MaxDatagramSize+1), "203.0.113.7", 1)
	if d.n != 0 {
		t.Fatal("oversized datagram must not be dispatched")
	}
}

func TestOnDatagramDropsMalformed(t *testing.T) {
	d := &recordingDispatcher{}
	h := udp.NewHandler(cmdfactory.New(), d)
	h.OnDatagram([]byte{0xFF, 0xFF, 0xFF}, "203.0.113.7", 1)
	if d.n != 0 {
		t.Fatal("malformed datagram must not be dispatched")
	}
}

func TestOnDatagramDropsUnknownCommand(t *testing.T) {
	pkg := wire.ProtoPackage{Cmd: wire.Command(99999), Payload: nil}
	b, err := pkg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	d := &recordingDispatcher{}
	h := udp.NewHandler(cmdfactory.New(), d)
	h.OnDatagram(b, "203.0.113.7", 1)
	if d.n != 0 {
		t.Fatal("unknown command must not be dispatched")
	}
}
