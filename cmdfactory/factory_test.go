package cmdfactory_test

import (
	"testing"

	"github.com/momentics/mapsvr/cmdfactory"
	"github.com/momentics/mapsvr/wire"
)

func TestNewReturnsTypedMessage(t *testing.T) {
	f := cmdfactory.New()
	msg, ok := f.New(wire.CmdCSReqExample)
	if !ok {
		t.Fatal("expected CmdCSReqExample to be registered")
	}
	if _, isRight := msg.(*wire.CSReqExample); !isRight {
		t.Fatalf("got %T, want *wire.CSReqExample", msg)
	}
}

func TestUnknownCommandIsAbsent(t *testing.T) {
	f := cmdfactory.New()
	if _, ok := f.New(wire.CmdUnknown); ok {
		t.Fatal("CmdUnknown must not resolve to a message type")
	}
	if _, ok := f.New(wire.Command(99999)); ok {
		t.Fatal("out-of-range command must not resolve")
	}
}

func TestParseRoundTrip(t *testing.T) {
	f := cmdfactory.New()
	pkg, err := wire.Pack(wire.CmdCSReqExample, &wire.CSReqExample{TestContext: "HELLO"})
	if err != nil {
		t.Fatal(err)
	}
	msg, ok, err := f.Parse(pkg.Cmd, pkg.Payload)
	if err != nil || !ok {
		t.Fatalf("parse failed: ok=%v err=%v", ok, err)
	}
	req := msg.(*wire.CSReqExample)
	if req.TestContext != "HELLO" {
		t.Fatalf("testcontext = %q, want HELLO", req.TestContext)
	}
}
