package vm_test

import (
	"errors"
	"testing"

	"github.com/momentics/mapsvr/vm"
	"github.com/momentics/mapsvr/vm/noopengine"
	"github.com/momentics/mapsvr/wire"
)

func TestInitAndDispatch(t *testing.T) {
	eng := noopengine.New()
	slot := vm.NewSlot("other", "./scripts", eng, vm.Symbols{})
	if err := slot.Init(); err != nil {
		t.Fatal(err)
	}
	if !eng.Inited || eng.ScriptDir != "./scripts" {
		t.Fatal("engine was not initialized with the slot's script dir")
	}

	slot.DispatchClientMessage(7, 2, wire.CmdCSReqExample, &wire.CSReqExample{TestContext: "hi"})
	if len(eng.Received) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(eng.Received))
	}
	got := eng.Received[0]
	if got.MsgType != vm.MsgClient || got.P1 != 7 || got.P2 != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestReloadIsConsumedAtNextTick(t *testing.T) {
	eng := noopengine.New()
	slot := vm.NewSlot("worker-0", "./scripts", eng, vm.Symbols{})
	slot.Init()

	slot.Reload()
	if !eng.Inited {
		t.Fatal("reload should not tear down the engine before the next tick")
	}

	slot.Tick()
	if eng.TickCount != 1 {
		t.Fatalf("tick count = %d, want 1", eng.TickCount)
	}
	if !eng.Inited {
		t.Fatal("engine should be re-initialized by the reload-carrying tick")
	}

	// A second tick with no pending reload must not re-init again (no
	// observable side effect beyond the tick counter).
	before := eng.ScriptDir
	slot.Tick()
	if eng.ScriptDir != before || eng.TickCount != 2 {
		t.Fatalf("unexpected state after plain tick: scriptDir=%q tickCount=%d", eng.ScriptDir, eng.TickCount)
	}
}

type panicEngine struct{ noopengine.Engine }

func (p *panicEngine) Dispatch(msgType vm.MessageType, cmd wire.Command, msg wire.Message, p1 uint64, p2 int64, p3 string) error {
	panic("boom")
}

type errEngine struct{ noopengine.Engine }

func (e *errEngine) Tick() error {
	return errors.New("tick failed")
}

func TestScriptPanicDoesNotEscapeSlot(t *testing.T) {
	eng := &panicEngine{}
	slot := vm.NewSlot("other", "./scripts", eng, vm.Symbols{})
	slot.Init()

	// Must not panic out of this call.
	slot.DispatchClientMessage(1, 0, wire.CmdCSReqExample, &wire.CSReqExample{})
}

func TestTickErrorDoesNotEscapeSlot(t *testing.T) {
	eng := &errEngine{}
	slot := vm.NewSlot("main", "./scripts", eng, vm.Symbols{})
	slot.Init()

	// Must not return an error or panic; the host process continues.
	slot.Tick()
}
