// File: netconn/conn.go
// Author: momentics <momentics@gmail.com>

package netconn

import (
	"net"
	"syscall"

	"github.com/momentics/mapsvr/api"
)

// readChunkSize is how much is pulled from the socket per FillFromSocket
// call.
const readChunkSize = 65536

// Conn adapts a net.Conn into api.NetConn and api.ConnCtx: it owns a
// growable receive buffer (the unread-bytes region the reassemblers parse
// out of) and forwards sends synchronously to the underlying socket.
type Conn struct {
	conn      net.Conn
	gid       api.ConnectionId
	workerIdx int
	recvBuf   []byte
	closing   bool
}

// New wraps conn, tagging it with the connection handle and owning worker
// index (-1 outside worker processes) spec.md §6's reactor contract
// requires every ConnCtx to expose.
func New(conn net.Conn, gid api.ConnectionId, workerIdx int) *Conn {
	return &Conn{conn: conn, gid: gid, workerIdx: workerIdx}
}

// FillFromSocket performs one read from the underlying socket, appending
// whatever arrived to the receive buffer. The caller's event loop drives
// this once per wakeup, ahead of handing the ConnCtx to a reassembler.
func (c *Conn) FillFromSocket() (int, error) {
	tmp := make([]byte, readChunkSize)
	n, err := c.conn.Read(tmp)
	if n > 0 {
		c.recvBuf = append(c.recvBuf, tmp[:n]...)
	}
	return n, err
}

// Read satisfies api.NetConn by delegating to the underlying socket.
func (c *Conn) Read(p []byte) (int, error) { return c.conn.Read(p) }

// Write satisfies api.NetConn by delegating to the underlying socket.
func (c *Conn) Write(p []byte) (int, error) { return c.conn.Write(p) }

// Close closes the underlying socket.
func (c *Conn) Close() error { return c.conn.Close() }

// RawFD returns the underlying OS file descriptor if the socket exposes
// one, or 0 otherwise.
func (c *Conn) RawFD() uintptr {
	sc, ok := c.conn.(interface {
		SyscallConn() (syscall.RawConn, error)
	})
	if !ok {
		return 0
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0
	}
	var fd uintptr
	raw.Control(func(f uintptr) { fd = f })
	return fd
}

// GetRecvBufferSize returns the number of unread bytes currently buffered.
func (c *Conn) GetRecvBufferSize() int { return len(c.recvBuf) }

// GetRecvBufferReadPtr returns the unread bytes without copying.
func (c *Conn) GetRecvBufferReadPtr() []byte { return c.recvBuf }

// RecvBufferMoveReadPtrN advances the read cursor by n bytes.
func (c *Conn) RecvBufferMoveReadPtrN(n int) { c.recvBuf = c.recvBuf[n:] }

// GetSendBufferSize always reports 0: sends happen synchronously against
// the socket, so nothing is ever left queued between calls.
func (c *Conn) GetSendBufferSize() int { return 0 }

// SendData writes b to the socket immediately.
func (c *Conn) SendData(b []byte) (int, error) { return c.conn.Write(b) }

// SetConnIsClose marks the connection for teardown by the owning process's
// event loop.
func (c *Conn) SetConnIsClose(close bool) { c.closing = close }

// IsMarkedClose reports whether SetConnIsClose(true) has been called.
func (c *Conn) IsMarkedClose() bool { return c.closing }

// EventMod is a no-op here: the generic reactor that owns read/write
// interest is external to this module (spec.md §1, §6).
func (c *Conn) EventMod(mask int, oneshot bool) {}

// GetConnGid returns the connection's unique handle.
func (c *Conn) GetConnGid() api.ConnectionId { return c.gid }

// GetWorkerIdx returns the owning worker index.
func (c *Conn) GetWorkerIdx() int { return c.workerIdx }
