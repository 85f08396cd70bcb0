// File: wire/package.go
// Author: momentics <momentics@gmail.com>
//
// ProtoPackage is the outer wire envelope from spec.md §3: {cmd, payload}.
// Field numbers below are fixed wire-compat points: 1=cmd (varint),
// 2=payload (length-delimited bytes holding the inner message's own
// protowire-encoded fields).

package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	fieldPackageCmd     = protowire.Number(1)
	fieldPackagePayload = protowire.Number(2)
)

// ProtoPackage is the wire envelope carrying {cmd, payload_bytes}.
type ProtoPackage struct {
	Cmd     Command
	Payload []byte
}

// Marshal encodes the package to its stable binary wire form.
func (p *ProtoPackage) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldPackageCmd, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(p.Cmd)))
	b = protowire.AppendTag(b, fieldPackagePayload, protowire.BytesType)
	b = protowire.AppendBytes(b, p.Payload)
	return b, nil
}

// Unmarshal decodes a ProtoPackage from its wire form. Unknown fields are
// skipped rather than rejected, matching protobuf's forward-compatibility
// rule.
func (p *ProtoPackage) Unmarshal(data []byte) error {
	*p = ProtoPackage{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("wire: ProtoPackage: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case fieldPackageCmd:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("wire: ProtoPackage: bad cmd: %w", protowire.ParseError(n))
			}
			p.Cmd = Command(int32(uint32(v)))
			data = data[n:]
		case fieldPackagePayload:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("wire: ProtoPackage: bad payload: %w", protowire.ParseError(n))
			}
			p.Payload = append([]byte(nil), v...)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("wire: ProtoPackage: bad field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}

// Pack serializes msg and wraps it as a ProtoPackage tagged with cmd, giving
// the rest of this module a single call site to go through rather than
// inlining marshal-then-wrap everywhere.
func Pack(cmd Command, msg Message) (ProtoPackage, error) {
	b, err := msg.Marshal()
	if err != nil {
		return ProtoPackage{}, fmt.Errorf("wire: pack cmd %d: %w", cmd, err)
	}
	return ProtoPackage{Cmd: cmd, Payload: b}, nil
}

// Message is the contract every typed inner message implements.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}
