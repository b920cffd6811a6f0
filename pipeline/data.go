package pipeline

import (
	"github.com/jbvmio/bitpipe/fault"
)

// Payload is a chunk packaged as one TypeID.
// A nil Payload marks the end of the stream.
type Payload interface {
	Type() TypeID
	Len() int
}

// BytePayload carries a chunk byte for byte.
type BytePayload []byte

// Type implements Payload.
func (p BytePayload) Type() TypeID { return TypeByte }

// Len implements Payload.
func (p BytePayload) Len() int { return len(p) }

// ShortPayload carries a chunk widened to 16 bits, sign extending each byte.
type ShortPayload []int16

// Type implements Payload.
func (p ShortPayload) Type() TypeID { return TypeShort }

// Len implements Payload.
func (p ShortPayload) Len() int { return len(p) }

// CharPayload carries a chunk as one character per byte.
type CharPayload []rune

// Type implements Payload.
func (p CharPayload) Type() TypeID { return TypeChar }

// Len implements Payload.
func (p CharPayload) Len() int { return len(p) }

// Pack packages chunk as t. A nil chunk yields a nil Payload.
func Pack(t TypeID, chunk []byte) (Payload, error) {
	if chunk == nil {
		return nil, nil
	}
	switch t {
	case TypeByte:
		p := make(BytePayload, len(chunk))
		copy(p, chunk)
		return p, nil
	case TypeShort:
		p := make(ShortPayload, len(chunk))
		for i, b := range chunk {
			p[i] = int16(int8(b))
		}
		return p, nil
	case TypeChar:
		p := make(CharPayload, len(chunk))
		for i, b := range chunk {
			p[i] = rune(b)
		}
		return p, nil
	default:
		return nil, fault.Construction.Errorf("cannot pack chunk as %s", t)
	}
}

// Unpack returns the bytes held by p, keeping the low 8 bits of each element.
// A nil Payload yields a nil chunk.
func Unpack(p Payload) ([]byte, error) {
	switch v := p.(type) {
	case nil:
		return nil, nil
	case BytePayload:
		b := make([]byte, len(v))
		copy(b, v)
		return b, nil
	case ShortPayload:
		b := make([]byte, len(v))
		for i, x := range v {
			b[i] = byte(x)
		}
		return b, nil
	case CharPayload:
		b := make([]byte, len(v))
		for i, x := range v {
			b[i] = byte(x)
		}
		return b, nil
	default:
		return nil, fault.Construction.Errorf("cannot unpack payload of type %T", p)
	}
}

// Mediator exposes a producer's current chunk packaged as the TypeID negotiated
// with its consumer. It is created by the producer when the consumer is wired.
type Mediator struct {
	typ   TypeID
	chunk func() []byte
}

// NewMediator returns a Mediator packaging the result of chunk as t.
func NewMediator(t TypeID, chunk func() []byte) *Mediator {
	return &Mediator{
		typ:   t,
		chunk: chunk,
	}
}

// Type returns the negotiated TypeID.
func (m *Mediator) Type() TypeID {
	return m.typ
}

// Data returns the producer's current chunk, or nil at the end of the stream.
func (m *Mediator) Data() (Payload, error) {
	return Pack(m.typ, m.chunk())
}
