// File: wire/messages.go
// Author: momentics <momentics@gmail.com>
//
// Concrete inner message types carried inside ProtoPackage.Payload. Each
// follows the same protowire-primitive shape as ProtoPackage itself.

package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// AuthHandshake is exchanged as the first ProtoPackage (cmd =
// CmdIPCStreamAuthHandshake) on every IPC-stream connection (spec.md §4.2/§6).
type AuthHandshake struct {
	AppID string
}

func (m *AuthHandshake) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, m.AppID)
	return b, nil
}

func (m *AuthHandshake) Unmarshal(data []byte) error {
	*m = AuthHandshake{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("wire: AuthHandshake: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("wire: AuthHandshake.appid: %w", protowire.ParseError(n))
			}
			m.AppID = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("wire: AuthHandshake: unknown field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}

// CSReqExample is the example client-to-server application request used by
// the round-trip echo scenario (spec.md §8 scenario 1).
type CSReqExample struct {
	TestContext string
}

func (m *CSReqExample) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, m.TestContext)
	return b, nil
}

func (m *CSReqExample) Unmarshal(data []byte) error {
	*m = CSReqExample{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("wire: CSReqExample: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("wire: CSReqExample.testcontext: %w", protowire.ParseError(n))
			}
			m.TestContext = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("wire: CSReqExample: unknown field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}

// Worker2OtherEventNewClientConnection is the inner message for a client
// connect event (spec.md §4.3).
type Worker2OtherEventNewClientConnection struct {
	Gid uint64
}

func (m *Worker2OtherEventNewClientConnection) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Gid)
	return b, nil
}

func (m *Worker2OtherEventNewClientConnection) Unmarshal(data []byte) error {
	*m = Worker2OtherEventNewClientConnection{}
	return unmarshalSingleVarint(data, 1, &m.Gid)
}

// Worker2OtherEventCloseClientConnection is the inner message for a client
// close event (spec.md §4.3).
type Worker2OtherEventCloseClientConnection struct {
	Gid uint64
}

func (m *Worker2OtherEventCloseClientConnection) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Gid)
	return b, nil
}

func (m *Worker2OtherEventCloseClientConnection) Unmarshal(data []byte) error {
	*m = Worker2OtherEventCloseClientConnection{}
	return unmarshalSingleVarint(data, 1, &m.Gid)
}

// Worker2OtherLuaVM is the envelope every worker-origin client event is
// wrapped in before being tunnelled to the other process (spec.md §3/§4.3).
type Worker2OtherLuaVM struct {
	Gid       uint64
	WorkerIdx int32
	Inner     ProtoPackage
}

func (m *Worker2OtherLuaVM) Marshal() ([]byte, error) {
	inner, err := m.Inner.Marshal()
	if err != nil {
		return nil, err
	}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Gid)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(m.WorkerIdx)))
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, inner)
	return b, nil
}

func (m *Worker2OtherLuaVM) Unmarshal(data []byte) error {
	*m = Worker2OtherLuaVM{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("wire: Worker2OtherLuaVM: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("wire: Worker2OtherLuaVM.gid: %w", protowire.ParseError(n))
			}
			m.Gid = v
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("wire: Worker2OtherLuaVM.workeridx: %w", protowire.ParseError(n))
			}
			m.WorkerIdx = int32(uint32(v))
			data = data[n:]
		case 3:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("wire: Worker2OtherLuaVM.inner: %w", protowire.ParseError(n))
			}
			if err := m.Inner.Unmarshal(v); err != nil {
				return fmt.Errorf("wire: Worker2OtherLuaVM.inner: %w", err)
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("wire: Worker2OtherLuaVM: unknown field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}

// OtherLuaVM2WorkerConn is the envelope the other-VM uses to reach one
// specific client connection (spec.md §3/§4.3). Its wire shape mirrors
// Worker2OtherLuaVM exactly.
type OtherLuaVM2WorkerConn struct {
	Gid       uint64
	WorkerIdx int32
	Inner     ProtoPackage
}

func (m *OtherLuaVM2WorkerConn) Marshal() ([]byte, error) {
	inner, err := m.Inner.Marshal()
	if err != nil {
		return nil, err
	}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Gid)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(m.WorkerIdx)))
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, inner)
	return b, nil
}

func (m *OtherLuaVM2WorkerConn) Unmarshal(data []byte) error {
	*m = OtherLuaVM2WorkerConn{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("wire: OtherLuaVM2WorkerConn: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("wire: OtherLuaVM2WorkerConn.gid: %w", protowire.ParseError(n))
			}
			m.Gid = v
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("wire: OtherLuaVM2WorkerConn.workeridx: %w", protowire.ParseError(n))
			}
			m.WorkerIdx = int32(uint32(v))
			data = data[n:]
		case 3:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("wire: OtherLuaVM2WorkerConn.inner: %w", protowire.ParseError(n))
			}
			if err := m.Inner.Unmarshal(v); err != nil {
				return fmt.Errorf("wire: OtherLuaVM2WorkerConn.inner: %w", err)
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("wire: OtherLuaVM2WorkerConn: unknown field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}

// Other2WorkerTest is the periodic health broadcast (spec.md §4.3/§8
// scenario 5).
type Other2WorkerTest struct {
	Time int64
}

func (m *Other2WorkerTest) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Time))
	return b, nil
}

func (m *Other2WorkerTest) Unmarshal(data []byte) error {
	*m = Other2WorkerTest{}
	var v uint64
	if err := unmarshalSingleVarint(data, 1, &v); err != nil {
		return err
	}
	m.Time = int64(v)
	return nil
}

func unmarshalSingleVarint(data []byte, wantField protowire.Number, out *uint64) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("wire: %w", protowire.ParseError(n))
		}
		data = data[n:]
		if num == wantField {
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("wire: field %d: %w", num, protowire.ParseError(n))
			}
			*out = v
			data = data[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return fmt.Errorf("wire: unknown field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	return nil
}
