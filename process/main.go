// File: process/main.go
// Author: momentics <momentics@gmail.com>
//
// spec.md §2: "Main: supervises children; owns configuration; runs a
// 'main VM' with tick callbacks; does not terminate client traffic." The
// main VM never receives client/IPC/UDP dispatch (those only ever reach
// the other-VM per spec.md §4.5); it exists purely for supervisor-side
// scripting (e.g. periodic fleet-health checks) and its own independent
// reload cycle.

package process

import "github.com/momentics/mapsvr/vm"

// MainContext is the per-process state for the single main (supervisor)
// instance. Unlike OtherContext/WorkerContext it owns no tunnel id and no
// connections: it never terminates client traffic and is never a message
// routing endpoint, only a VM slot ticked on the main process's own loop.
type MainContext struct {
	VM *vm.Slot
}

// NewMainContext wraps vmSlot as the main process's VM slot.
func NewMainContext(vmSlot *vm.Slot) *MainContext {
	return &MainContext{VM: vmSlot}
}

// Tick runs the main VM's own tick, including consuming any pending reload
// (spec.md §4.5: reload of the main VM never implicitly reloads workers or
// the other VM; each slot's reload is independent).
func (m *MainContext) Tick() {
	m.VM.Tick()
}
