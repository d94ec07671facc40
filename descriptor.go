package machport

import (
	"fmt"

	"github.com/GriffinCanCode/MachPort/internal/machsys"
)

// DescriptorKind classifies a descriptor record. Values are the kernel's type
// tags.
type DescriptorKind uint8

const (
	KindPort        DescriptorKind = DescriptorKind(machsys.MACH_MSG_PORT_DESCRIPTOR)
	KindOOL         DescriptorKind = DescriptorKind(machsys.MACH_MSG_OOL_DESCRIPTOR)
	KindOOLPorts    DescriptorKind = DescriptorKind(machsys.MACH_MSG_OOL_PORTS_DESCRIPTOR)
	KindOOLVolatile DescriptorKind = DescriptorKind(machsys.MACH_MSG_OOL_VOLATILE_DESCRIPTOR)
)

func (k DescriptorKind) String() string {
	switch k {
	case KindPort:
		return "port"
	case KindOOL:
		return "ool"
	case KindOOLPorts:
		return "ool-ports"
	case KindOOLVolatile:
		return "ool-volatile"
	}
	return fmt.Sprintf("DescriptorKind(%d)", uint8(k))
}

// The kind tag sits in the top byte of the third 32-bit word of every
// descriptor layout, so it is readable before the record's width is known.
const kindTagOffset = 11

// Descriptor is a typed view over one descriptor record inside a message. It
// borrows its storage from the message; it owns nothing.
type Descriptor struct {
	msg *Msg
	off int
}

// Kind reads the record's self-identifying type tag. An unrecognized tag means
// the message bytes are corrupt (the kernel only ever produces known tags) and
// panics with *CorruptedMessageError.
func (d *Descriptor) Kind() DescriptorKind {
	tag := d.msg.bytes()[d.off+kindTagOffset]
	switch DescriptorKind(tag) {
	case KindPort, KindOOL, KindOOLPorts, KindOOLVolatile:
		return DescriptorKind(tag)
	}
	panic(&CorruptedMessageError{Tag: tag})
}

// size returns the record's byte width, a pure function of its kind.
func (d *Descriptor) size() int {
	switch d.Kind() {
	case KindPort:
		return machsys.SizeofPortDescriptor
	case KindOOLPorts:
		return machsys.SizeofOOLPortsDescriptor
	default: // ool and ool-volatile share a layout
		return machsys.SizeofOOLDescriptor
	}
}

// Port returns the port-typed view of this record, or nil if it is not a
// port descriptor.
func (d *Descriptor) Port() *PortDescriptor {
	if d.Kind() != KindPort {
		return nil
	}
	return &PortDescriptor{Descriptor: *d}
}

// PortDescriptor is the port-kind view over a descriptor record: an embedded
// capability name plus the disposition its right was transferred with.
type PortDescriptor struct {
	Descriptor
}

// Name reads the embedded capability name.
func (d *PortDescriptor) Name() RawPort {
	return RawPort(le.Uint32(d.msg.bytes()[d.off:]))
}

// Disposition reads the right-transfer disposition tag.
func (d *PortDescriptor) Disposition() uint32 {
	return le.Uint32(d.msg.bytes()[d.off+8:]) >> 16 & 0xff
}

// TakeRaw takes the embedded name out of the record, replacing it with NULL so
// the same right cannot be read twice. Returns false if the record holds no
// live right (name is NULL or DEAD).
func (d *PortDescriptor) TakeRaw() (RawPort, bool) {
	name := d.Name()
	if name == PortNull || name == PortDead {
		return PortNull, false
	}
	le.PutUint32(d.msg.bytes()[d.off:], uint32(PortNull))
	return name, true
}

// TakePort takes the embedded right out as an owned Port, verifying with the
// kernel which rights the name actually carries. Returns (nil, nil) if the
// record holds no live right.
func (d *PortDescriptor) TakePort() (*Port, error) {
	name, ok := d.TakeRaw()
	if !ok {
		return nil, nil
	}
	return FromRaw(name)
}

func (d *PortDescriptor) String() string {
	return fmt.Sprintf("PortDescriptor{name: %#x, disposition: %d}", uint32(d.Name()), d.Disposition())
}

// DescriptorIter walks a message's descriptor records in order. Each step
// reads the current record's kind to learn its width before advancing, so the
// walk is strictly sequential.
type DescriptorIter struct {
	msg *Msg
	off int
	rem int
}

// Next returns the next descriptor view, or nil when the chain is exhausted.
func (it *DescriptorIter) Next() *Descriptor {
	if it.rem == 0 {
		return nil
	}
	it.rem--
	d := &Descriptor{msg: it.msg, off: it.off}
	it.off += d.size()
	return d
}

// Remaining returns how many records are left to walk.
func (it *DescriptorIter) Remaining() int {
	return it.rem
}
