// File: ws/reassembler.go
// Author: momentics <momentics@gmail.com>
//
// The reassembler turns bytes sitting in a connection's receive buffer into
// complete application messages (spec.md §4.1). Frame headers are parsed
// directly out of the buffer slice returned by the reactor contract; each
// frame's payload is copied out before unmasking, and a completed message
// is copied once more out of the accumulator before delivery.

package ws

import (
	"encoding/binary"
	"errors"
	"log"

	"github.com/momentics/mapsvr/api"
)

// ErrSendBufferOverflow is returned by SendSyncPackage when the connection's
// send buffer already exceeds MaxBufferedBytes (spec.md §4.1).
var ErrSendBufferOverflow = errors.New("ws: send buffer overflow")

// Handler receives complete, reassembled application messages.
type Handler interface {
	OnMessage(ctx api.ConnCtx, opcode byte, payload []byte)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx api.ConnCtx, opcode byte, payload []byte)

func (f HandlerFunc) OnMessage(ctx api.ConnCtx, opcode byte, payload []byte) {
	f(ctx, opcode, payload)
}

// State is the per-connection reassembly accumulator: frame_first_opcode and
// frame_payload_data from spec.md §3. One State belongs to exactly one
// connection context for that context's lifetime.
type State struct {
	firstOpcode byte
	accumulated []byte
}

func (s *State) reset() {
	s.firstOpcode = 0
	s.accumulated = s.accumulated[:0]
}

// OnProcessConnection parses and dispatches as many complete messages as are
// currently available in ctx's receive buffer, then enforces the receive
// buffer backpressure cap. It never blocks: an incomplete frame at the head
// of the buffer simply stops the loop and is retried on the next call.
func OnProcessConnection(ctx api.ConnCtx, st *State, h Handler) {
	for {
		data := ctx.GetRecvBufferReadPtr()
		f, consumed, ok := tryParseFrame(data)
		if !ok {
			break
		}
		ctx.RecvBufferMoveReadPtrN(consumed)

		if !isDataOpcode(f.Opcode) {
			log.Printf("[ws] gid=%d disallowed opcode %#x, closing", ctx.GetConnGid(), f.Opcode)
			closeConn(ctx)
			return
		}

		payload := f.Payload
		if f.Masked {
			unmask(payload, f.MaskKey)
		}

		if f.Opcode != OpcodeContinuation {
			st.firstOpcode = f.Opcode
			st.accumulated = append(st.accumulated[:0], payload...)
		} else {
			st.accumulated = append(st.accumulated, payload...)
		}

		if len(st.accumulated) > MaxBufferedBytes {
			log.Printf("[ws] gid=%d accumulated payload exceeds cap, closing", ctx.GetConnGid())
			closeConn(ctx)
			return
		}

		if f.Fin {
			msg := append([]byte(nil), st.accumulated...)
			opcode := st.firstOpcode
			st.reset()
			h.OnMessage(ctx, opcode, msg)
		}
	}

	if ctx.GetRecvBufferSize() > MaxBufferedBytes {
		log.Printf("[ws] gid=%d receive buffer exceeds cap, closing", ctx.GetConnGid())
		closeConn(ctx)
	}
}

// tryParseFrame attempts to parse one frame from the head of data. ok=false
// means data does not yet hold a complete frame header+payload; the caller
// must not advance the read cursor and should retry once more bytes arrive.
func tryParseFrame(data []byte) (f Frame, consumed int, ok bool) {
	if len(data) < 2 {
		return Frame{}, 0, false
	}

	fin := data[0]&0x80 != 0
	opcode := data[0] & 0x0F
	masked := data[1]&0x80 != 0
	lenCode := data[1] & 0x7F
	index := 2

	var payloadLen uint64
	switch {
	case lenCode <= 125:
		payloadLen = uint64(lenCode)
	case lenCode == 126:
		if index+2 > len(data) {
			return Frame{}, 0, false
		}
		payloadLen = uint64(binary.BigEndian.Uint16(data[index:]))
		index += 2
	default: // lenCode == 127
		// Preserved quirk (spec.md §9): the source's bounds check before
		// this 8-byte read is index+7 >= all_data_len rather than the more
		// obviously-named index+8 > all_data_len. Kept as-is; for integers
		// the two tests are equivalent, so no byte past data is read.
		if index+7 >= len(data) {
			return Frame{}, 0, false
		}
		payloadLen = binary.BigEndian.Uint64(data[index : index+8])
		index += 8
	}

	var maskKey [4]byte
	if masked {
		if index+4 > len(data) {
			return Frame{}, 0, false
		}
		copy(maskKey[:], data[index:index+4])
		index += 4
	}

	if uint64(len(data)-index) < payloadLen {
		return Frame{}, 0, false
	}

	payload := append([]byte(nil), data[index:index+int(payloadLen)]...)
	index += int(payloadLen)

	return Frame{
		Fin:        fin,
		Opcode:     opcode,
		Masked:     masked,
		MaskKey:    maskKey,
		PayloadLen: payloadLen,
		Payload:    payload,
	}, index, true
}

func unmask(payload []byte, key [4]byte) {
	for i := range payload {
		payload[i] ^= key[i%4]
	}
}

// SendSyncPackage serializes data as a single, unmasked, non-continuation
// frame tagged with the given opcode and writes it to ctx, enforcing the
// send-buffer backpressure cap (spec.md §4.1).
func SendSyncPackage(ctx api.ConnCtx, opcode byte, data []byte) error {
	if ctx.GetSendBufferSize() > MaxBufferedBytes {
		closeConn(ctx)
		return ErrSendBufferOverflow
	}

	header := encodeHeader(opcode, len(data))
	buf := make([]byte, 0, len(header)+len(data))
	buf = append(buf, header...)
	buf = append(buf, data...)

	if _, err := ctx.SendData(buf); err != nil {
		return err
	}
	return nil
}

// SendBinary is the application-data emission path: every reply to a client
// is sent as a single FIN=1 BINARY frame (spec.md §4.1).
func SendBinary(ctx api.ConnCtx, data []byte) error {
	return SendSyncPackage(ctx, OpcodeBinary, data)
}

func encodeHeader(opcode byte, payloadLen int) []byte {
	b0 := byte(0x80) | (opcode & 0x0F) // FIN=1, no masking on server-origin frames
	switch {
	case payloadLen <= 125:
		return []byte{b0, byte(payloadLen)}
	case payloadLen <= 0xFFFF:
		hdr := make([]byte, 4)
		hdr[0] = b0
		hdr[1] = 126
		binary.BigEndian.PutUint16(hdr[2:], uint16(payloadLen))
		return hdr
	default:
		hdr := make([]byte, 10)
		hdr[0] = b0
		hdr[1] = 127
		binary.BigEndian.PutUint64(hdr[2:], uint64(payloadLen))
		return hdr
	}
}

func closeConn(ctx api.ConnCtx) {
	ctx.SetConnIsClose(true)
	ctx.EventMod(0, false)
}
