package tunnel_test

import (
	"testing"

	"github.com/momentics/mapsvr/tunnel"
	"github.com/momentics/mapsvr/wire"
)

func TestForwardNeverDeliversToSource(t *testing.T) {
	d := tunnel.NewDispatcher()
	d.RegisterTunnel(0)
	d.RegisterTunnel(1)

	pkg := wire.ProtoPackage{Cmd: wire.CmdTunnelOther2WorkerTest}
	d.Forward(0, []int32{0, 1}, pkg)

	if got := d.Drain(0); len(got) != 0 {
		t.Fatalf("source tunnel must never receive its own forward, got %d items", len(got))
	}
	if got := d.Drain(1); len(got) != 1 {
		t.Fatalf("expected 1 item delivered to tunnel 1, got %d", len(got))
	}
}

func TestDrainPreservesSubmissionOrder(t *testing.T) {
	d := tunnel.NewDispatcher()
	d.RegisterTunnel(1)

	for i := 0; i < 5; i++ {
		d.Forward(99, []int32{1}, wire.ProtoPackage{Cmd: wire.Command(i)})
	}

	got := d.Drain(1)
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i, item := range got {
		if item.Pkg.Cmd != wire.Command(i) {
			t.Fatalf("item %d: cmd = %d, want %d (order not preserved)", i, item.Pkg.Cmd, i)
		}
	}
}

func TestUnregisteredDestinationIsRoutingMiss(t *testing.T) {
	d := tunnel.NewDispatcher()
	// No RegisterTunnel(7) call.
	d.Forward(0, []int32{7}, wire.ProtoPackage{Cmd: wire.CmdCSReqExample})
	if got := d.Drain(7); len(got) != 0 {
		t.Fatalf("unregistered destination should silently drop, got %d items", len(got))
	}
}

func TestWrapUnwrapWorker2OtherRoundTrip(t *testing.T) {
	inner, err := wire.Pack(wire.CmdCSReqExample, &wire.CSReqExample{TestContext: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	wrapped, err := tunnel.WrapClientFrame(42, 3, inner)
	if err != nil {
		t.Fatal(err)
	}
	env, err := tunnel.UnwrapWorker2Other(wrapped)
	if err != nil {
		t.Fatal(err)
	}
	if env.Gid != 42 || env.WorkerIdx != 3 {
		t.Fatalf("got gid=%d workerIdx=%d", env.Gid, env.WorkerIdx)
	}
	var req wire.CSReqExample
	if err := req.Unmarshal(env.Inner.Payload); err != nil {
		t.Fatal(err)
	}
	if req.TestContext != "hi" {
		t.Fatalf("testcontext = %q, want hi", req.TestContext)
	}
}

func TestBroadcastTimerFiresOnBackwardJumpToo(t *testing.T) {
	var bt tunnel.BroadcastTimer
	bt.ShouldFire(100) // establishes the reference point, no fire on first call

	if bt.ShouldFire(103) {
		t.Fatal("3 seconds forward should not fire yet")
	}
	// Preserved quirk: a backward jump of >=5s also fires.
	if !bt.ShouldFire(95) {
		t.Fatal("backward jump of >=5s should fire (preserved quirk, spec.md §9)")
	}
}

func TestBroadcastTimerFiresOnForwardJump(t *testing.T) {
	var bt tunnel.BroadcastTimer
	bt.ShouldFire(0)
	if !bt.ShouldFire(5) {
		t.Fatal("exactly 5s forward should fire")
	}
}
