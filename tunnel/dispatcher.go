// File: tunnel/dispatcher.go
// Author: momentics <momentics@gmail.com>

package tunnel

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/mapsvr/wire"
)

// TunnelPackage is the outer envelope from spec.md §3: a ProtoPackage plus
// routing metadata. Destination ids are not retained on the queued item —
// each destination's own queue is the routing.
type TunnelPackage struct {
	SourceTunnelID int32
	Pkg            wire.ProtoPackage
}

type mailbox struct {
	mu sync.Mutex
	q  *queue.Queue
}

// Dispatcher holds one FIFO mailbox per registered destination tunnel id.
// Forward/Drain cross process (goroutine) boundaries, which is the only
// place spec.md §5 permits synchronization; a single process's own event
// loop never needs to lock its own mailbox against itself.
type Dispatcher struct {
	mu    sync.RWMutex
	boxes map[int32]*mailbox
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{boxes: make(map[int32]*mailbox)}
}

// RegisterTunnel ensures a mailbox exists for id, so it can receive
// forwards and be enumerated by TunnelIDs before any message has arrived.
func (d *Dispatcher) RegisterTunnel(id int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.boxes[id]; !ok {
		d.boxes[id] = &mailbox{q: queue.New()}
	}
}

// TunnelIDs returns the currently registered destination ids. Callers that
// broadcast must call this fresh on every tick rather than caching the
// result (spec.md's "Supplemented features": the live list is read fresh
// every tick, not cached at other-VM init).
func (d *Dispatcher) TunnelIDs() []int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]int32, 0, len(d.boxes))
	for id := range d.boxes {
		ids = append(ids, id)
	}
	return ids
}

// Forward delivers pkg to every id in destinationIDs except sourceID itself
// (self-delivery is forbidden by policy, spec.md §4.3). Unregistered
// destinations are silently skipped — a routing miss, not an error
// (spec.md §7 class 5).
func (d *Dispatcher) Forward(sourceID int32, destinationIDs []int32, pkg wire.ProtoPackage) {
	for _, dest := range destinationIDs {
		if dest == sourceID {
			continue
		}
		box := d.box(dest)
		if box == nil {
			continue
		}
		box.mu.Lock()
		box.q.Add(TunnelPackage{SourceTunnelID: sourceID, Pkg: pkg})
		box.mu.Unlock()
	}
}

// Drain removes and returns every TunnelPackage currently queued for id, in
// submission order. A process calls this once per event-loop iteration.
func (d *Dispatcher) Drain(id int32) []TunnelPackage {
	box := d.box(id)
	if box == nil {
		return nil
	}
	box.mu.Lock()
	defer box.mu.Unlock()
	out := make([]TunnelPackage, 0, box.q.Length())
	for box.q.Length() > 0 {
		out = append(out, box.q.Remove().(TunnelPackage))
	}
	return out
}

func (d *Dispatcher) box(id int32) *mailbox {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.boxes[id]
}
