// File: udp/handler.go
// Author: momentics <momentics@gmail.com>

package udp

import (
	"log"

	"github.com/momentics/mapsvr/cmdfactory"
	"github.com/momentics/mapsvr/wire"
)

// MaxDatagramSize is the largest UDP payload this path accepts; the
// practical ceiling for a UDP datagram over IPv4 (spec.md §4.6: "oversized
// ... datagrams are dropped").
const MaxDatagramSize = 65507

// Dispatcher is the other-VM's UDP hook: remote address, command, and
// parsed message.
type Dispatcher interface {
	DispatchUDPMessage(remoteIP string, remotePort int, cmd wire.Command, msg wire.Message)
}

// Handler parses incoming datagrams and forwards them to a Dispatcher.
type Handler struct {
	factory    *cmdfactory.Factory
	dispatcher Dispatcher
}

// NewHandler builds a UDP handler bound to factory and dispatcher.
func NewHandler(factory *cmdfactory.Factory, dispatcher Dispatcher) *Handler {
	return &Handler{factory: factory, dispatcher: dispatcher}
}

// OnDatagram processes one received datagram. remoteIP/remotePort identify
// the sender, as extracted by the caller from the socket's recvfrom result.
func (h *Handler) OnDatagram(data []byte, remoteIP string, remotePort int) {
	if len(data) > MaxDatagramSize {
		log.Printf("[udp] datagram from %s:%d exceeds max size, dropping", remoteIP, remotePort)
		return
	}

	var pkg wire.ProtoPackage
	if err := pkg.Unmarshal(data); err != nil {
		log.Printf("[udp] malformed datagram from %s:%d: %v", remoteIP, remotePort, err)
		return
	}

	msg, ok, err := h.factory.Parse(pkg.Cmd, pkg.Payload)
	if err != nil {
		log.Printf("[udp] payload decode error from %s:%d cmd=%d: %v", remoteIP, remotePort, pkg.Cmd, err)
		return
	}
	if !ok {
		log.Printf("[udp] unknown cmd %d from %s:%d", pkg.Cmd, remoteIP, remotePort)
		return
	}

	h.dispatcher.DispatchUDPMessage(remoteIP, remotePort, pkg.Cmd, msg)
}
