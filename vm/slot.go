// File: vm/slot.go
// Author: momentics <momentics@gmail.com>

package vm

import (
	"log"

	"github.com/momentics/mapsvr/api"
	"github.com/momentics/mapsvr/wire"
)

// Slot is one of the three VM kinds spec.md §4.5 describes: the single
// main VM, one of the N worker VMs, or the single other-VM. It owns an
// Engine exclusively (spec.md §3: "a worker VM is never touched from
// another worker").
type Slot struct {
	name          string
	scriptDir     string
	engine        Engine
	symbols       Symbols
	reloadPending bool
}

// NewSlot builds a slot bound to scriptDir, ready for Init.
func NewSlot(name, scriptDir string, engine Engine, symbols Symbols) *Slot {
	return &Slot{name: name, scriptDir: scriptDir, engine: engine, symbols: symbols}
}

// Init performs the slot's first initialization. Failure here is fatal
// process-init territory (spec.md §7 class 7: "failure to create a VM
// during process init"), so it is reported as a structured api.Error the
// caller can log.Fatalf on directly.
func (s *Slot) Init() error {
	if err := s.engine.Init(s.scriptDir, s.symbols); err != nil {
		return api.NewError(api.ErrCodeInternal, "vm init failed").
			WithContext("slot", s.name).
			WithContext("script_dir", s.scriptDir).
			WithContext("cause", err.Error())
	}
	return nil
}

// Stop releases the slot's engine.
func (s *Slot) Stop() {
	s.engine.Stop()
}

// Reload marks the slot for reload at the start of its next Tick
// (spec.md §4.5: reload is consumed, not applied immediately). Reloading
// one slot never implicitly reloads any other.
func (s *Slot) Reload() {
	s.reloadPending = true
}

// Tick consumes a pending reload if present, then runs one scheduling step.
// Any engine error or panic is recovered and logged; it never reaches the
// caller (spec.md §7 class 6).
func (s *Slot) Tick() {
	if s.reloadPending {
		s.reloadPending = false
		s.engine.Stop()
		if err := s.engine.Init(s.scriptDir, s.symbols); err != nil {
			log.Printf("[vm] %s reload failed: %v", s.name, err)
		}
	}
	s.safely(func() error { return s.engine.Tick() })
}

// Dispatch delivers a generic message into the slot's engine.
func (s *Slot) Dispatch(msgType MessageType, cmd wire.Command, msg wire.Message, p1 uint64, p2 int64, p3 string) {
	s.safely(func() error { return s.engine.Dispatch(msgType, cmd, msg, p1, p2, p3) })
}

// DispatchClientMessage is the other-VM's typed hook for client-origin
// traffic: client gid and the originating worker index.
func (s *Slot) DispatchClientMessage(gid uint64, workerIdx int32, cmd wire.Command, msg wire.Message) {
	s.Dispatch(MsgClient, cmd, msg, gid, int64(workerIdx), "")
}

// DispatchIPCMessage is the other-VM's typed hook for IPC mesh traffic:
// the sender's AppId.
func (s *Slot) DispatchIPCMessage(fromAppID string, cmd wire.Command, msg wire.Message) {
	s.Dispatch(MsgIPC, cmd, msg, 0, 0, fromAppID)
}

// DispatchUDPMessage is the other-VM's typed hook for UDP traffic: the
// remote address and port.
func (s *Slot) DispatchUDPMessage(remoteIP string, remotePort int, cmd wire.Command, msg wire.Message) {
	s.Dispatch(MsgUDP, cmd, msg, 0, int64(remotePort), remoteIP)
}

func (s *Slot) safely(fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[vm] %s script error recovered: %v", s.name, r)
		}
	}()
	if err := fn(); err != nil {
		log.Printf("[vm] %s: %v", s.name, err)
	}
}
