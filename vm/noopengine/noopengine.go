// Package noopengine
// Author: momentics <momentics@gmail.com>
//
// A minimal vm.Engine implementation that records what it was asked to do
// instead of running a real interpreter. Exercises the dispatch and reload
// plumbing in vm.Slot end-to-end without depending on any particular
// scripting runtime; a real interpreter binding can implement vm.Engine the
// same way.
package noopengine

import (
	"github.com/momentics/mapsvr/vm"
	"github.com/momentics/mapsvr/wire"
)

// Received records one Dispatch call.
type Received struct {
	MsgType vm.MessageType
	Cmd     wire.Command
	Msg     wire.Message
	P1      uint64
	P2      int64
	P3      string
}

// Engine is a no-op vm.Engine for tests and for slots with no script
// directory configured yet.
type Engine struct {
	Inited    bool
	ScriptDir string
	Symbols   vm.Symbols
	TickCount int
	Received  []Received
}

// New returns a fresh, uninitialized Engine.
func New() *Engine {
	return &Engine{}
}

func (e *Engine) Init(scriptDir string, symbols vm.Symbols) error {
	e.Inited = true
	e.ScriptDir = scriptDir
	e.Symbols = symbols
	return nil
}

func (e *Engine) Stop() {
	e.Inited = false
}

func (e *Engine) Tick() error {
	e.TickCount++
	return nil
}

func (e *Engine) Dispatch(msgType vm.MessageType, cmd wire.Command, msg wire.Message, p1 uint64, p2 int64, p3 string) error {
	e.Received = append(e.Received, Received{MsgType: msgType, Cmd: cmd, Msg: msg, P1: p1, P2: p2, P3: p3})
	return nil
}
