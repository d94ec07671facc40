package machport

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/GriffinCanCode/MachPort/internal/machsys"
)

var le = binary.LittleEndian

// Byte offsets of the header fields, followed by the body's descriptor count.
// Field order and widths are kernel ABI.
const (
	offBits    = 0
	offSize    = 4
	offRemote  = 8
	offLocal   = 12
	offVoucher = 16
	offID      = 20
	offCount   = machsys.SizeofHeader

	// startSize is header plus body: the canonical empty message.
	startSize = machsys.SizeofHeader + machsys.SizeofBody
)

// region is the narrow surface a message view needs from its backing storage:
// the logical message bytes, their total capacity, and the ability to set the
// logical length. All navigation is built against region alone, so any future
// backing representation inherits it.
type region interface {
	bytes() []byte
	setLength(n int)
	capacity() int
}

// Msg is a navigation-only view over an encoded Mach message. It never owns
// the bytes it reads; its lifetime is that of the backing region.
type Msg struct {
	region
}

// Len returns the logical message size in bytes: header through the end of the
// inline payload, excluding the trailer reservation.
func (m *Msg) Len() int {
	return len(m.bytes())
}

// Cap returns the total backing capacity, including the trailer reservation.
func (m *Msg) Cap() int {
	return m.capacity()
}

// Complex reports whether the message carries descriptors.
func (m *Msg) Complex() bool {
	return m.headerBits()&machsys.MACH_MSGH_BITS_COMPLEX != 0
}

// ID returns the 32-bit message identifier from the header.
func (m *Msg) ID() uint32 {
	return le.Uint32(m.bytes()[offID:])
}

// SetID stamps the 32-bit message identifier into the header.
func (m *Msg) SetID(id uint32) {
	le.PutUint32(m.bytes()[offID:], id)
}

// DescriptorCount reads the body's descriptor count. O(1).
func (m *Msg) DescriptorCount() int {
	return int(le.Uint32(m.bytes()[offCount:]))
}

// InlineData returns the inline payload: the bytes between the last descriptor
// record and the logical end of the message. The slice aliases the message
// storage, so writes through it mutate the payload in place.
func (m *Msg) InlineData() []byte {
	offset := startSize + m.descriptorsByteLen()
	return m.bytes()[offset:int(m.headerSize())]
}

// Descriptors returns a forward iterator over the descriptor records. Records
// have kind-dependent widths, so the iterator must be walked sequentially;
// there is no random access.
func (m *Msg) Descriptors() *DescriptorIter {
	return &DescriptorIter{msg: m, off: startSize, rem: m.DescriptorCount()}
}

// descriptorsByteLen walks the descriptor chain to find its total width.
// O(descriptor count): record widths are only known at runtime.
func (m *Msg) descriptorsByteLen() int {
	it := m.Descriptors()
	for it.Next() != nil {
	}
	return it.off - startSize
}

func (m *Msg) String() string {
	return fmt.Sprintf("Msg{complex: %t, size: %d, descriptors: %d, inline: % x}",
		m.Complex(), m.headerSize(), m.DescriptorCount(), m.InlineData())
}

func (m *Msg) headerBits() uint32 {
	return le.Uint32(m.bytes()[offBits:])
}

func (m *Msg) setHeaderBits(bits uint32) {
	le.PutUint32(m.bytes()[offBits:], bits)
}

func (m *Msg) headerSize() uint32 {
	return le.Uint32(m.bytes()[offSize:])
}

func (m *Msg) setHeaderSize(size uint32) {
	le.PutUint32(m.bytes()[offSize:], size)
}

func (m *Msg) setRemotePort(p RawPort) {
	le.PutUint32(m.bytes()[offRemote:], uint32(p))
}

func (m *Msg) setDescriptorCount(n int) {
	le.PutUint32(m.bytes()[offCount:], uint32(n))
}

// PortCopyMode selects the right copied onto a message while the sender keeps
// its own. Values are the kernel disposition tags.
type PortCopyMode uint32

const (
	CopySend     PortCopyMode = PortCopyMode(machsys.MACH_MSG_TYPE_COPY_SEND)
	MakeSend     PortCopyMode = PortCopyMode(machsys.MACH_MSG_TYPE_MAKE_SEND)
	MakeSendOnce PortCopyMode = PortCopyMode(machsys.MACH_MSG_TYPE_MAKE_SEND_ONCE)
)

// PortMoveMode selects the right transferred to a message; the sender gives
// its right up. Values are the kernel disposition tags.
type PortMoveMode uint32

const (
	MoveReceive  PortMoveMode = PortMoveMode(machsys.MACH_MSG_TYPE_MOVE_RECEIVE)
	MoveSend     PortMoveMode = PortMoveMode(machsys.MACH_MSG_TYPE_MOVE_SEND)
	MoveSendOnce PortMoveMode = PortMoveMode(machsys.MACH_MSG_TYPE_MOVE_SEND_ONCE)
)

// Buffer is a growable message buffer: the owning realization of Msg. The zero
// value is not usable; construct with NewBuffer. A Buffer must not be copied
// after first use.
//
// Capacity is tracked as two monotonic high-water marks (inline bytes and
// descriptor slots) so that a buffer reused across sends and receives settles
// into a steady state with no further allocation. The backing allocation is
// always large enough for header, reserved descriptors, reserved inline bytes
// and the receive trailer, so a receive can never overflow it.
//
// Discarded buffers do not release MOVE-attached rights or out-of-line
// regions still encoded in them; those leak unless sent or explicitly taken
// out. See TakePort for draining received rights.
type Buffer struct {
	Msg
	data           []byte
	capInline      int
	capDescriptors int
}

// NewBuffer returns an empty message buffer pre-sized for a header plus
// trailer, with the canonical empty header written.
func NewBuffer() *Buffer {
	b := &Buffer{data: make([]byte, startSize, startSize+machsys.SizeofTrailer)}
	b.Msg.region = b
	b.writeEmptyHeader()
	return b
}

// region implementation.
func (b *Buffer) bytes() []byte   { return b.data }
func (b *Buffer) setLength(n int) { b.data = b.data[:n] }
func (b *Buffer) capacity() int   { return cap(b.data) }

// writeEmptyHeader truncates to header+body and writes the canonical empty
// state: base bits COPY_SEND, size = header+body, all ports NULL, id 0,
// descriptor count 0.
func (b *Buffer) writeEmptyHeader() {
	b.data = b.data[:startSize]
	le.PutUint32(b.data[offBits:], machsys.MACH_MSG_TYPE_COPY_SEND)
	le.PutUint32(b.data[offSize:], startSize)
	le.PutUint32(b.data[offRemote:], machsys.MACH_PORT_NULL)
	le.PutUint32(b.data[offLocal:], machsys.MACH_PORT_NULL)
	le.PutUint32(b.data[offVoucher:], machsys.MACH_PORT_NULL)
	le.PutUint32(b.data[offID:], 0)
	le.PutUint32(b.data[offCount:], 0)
}

// Reset restores the canonical empty state in place. Reserved capacity is
// retained for reuse; logical content is not.
func (b *Buffer) Reset() {
	b.writeEmptyHeader()
}

// ReserveInlineData grows the inline-payload reservation so that at least n
// further bytes can be appended without reallocating. Never shrinks.
func (b *Buffer) ReserveInlineData(n int) {
	if need := len(b.InlineData()) + n; need > b.capInline {
		b.capInline = need
		b.updateReservation()
	}
}

// ReserveDescriptors grows the descriptor reservation so that at least n
// further records can be appended without reallocating. Never shrinks.
func (b *Buffer) ReserveDescriptors(n int) {
	if need := b.DescriptorCount() + n; need > b.capDescriptors {
		b.capDescriptors = need
		b.updateReservation()
	}
}

// updateReservation grows the backing allocation to cover the current
// high-water marks. Descriptor slots are reserved at the union width since a
// record's true width is not known until it is appended.
func (b *Buffer) updateReservation() {
	total := startSize + b.capDescriptors*machsys.SizeofDescriptor + b.capInline + machsys.SizeofTrailer
	if total > cap(b.data) {
		grown := make([]byte, len(b.data), total)
		copy(grown, b.data)
		b.data = grown
	}
}

// ExtendInlineData appends data to the end of the inline payload, growing the
// reservation if needed, and bumps the header size accordingly.
func (b *Buffer) ExtendInlineData(data []byte) {
	if need := len(b.InlineData()) + len(data); need > b.capInline {
		b.capInline = need
		b.updateReservation()
	}
	b.data = append(b.data, data...)
	b.setHeaderSize(b.headerSize() + uint32(len(data)))
}

// CopyRight attaches a port descriptor marking the designated right to be
// copied on transmission.
//
// The buffer records only the raw name, not ownership: the caller must keep
// port alive until the message is sent or the buffer is reset, or the kernel
// will see a stale name.
func (b *Buffer) CopyRight(mode PortCopyMode, port *Port) {
	b.CopyRightRaw(mode, port.Raw())
}

// CopyRightRaw is CopyRight for a raw name the caller owns by other means.
func (b *Buffer) CopyRightRaw(mode PortCopyMode, port RawPort) {
	b.appendPortDescriptor(uint32(mode), port)
}

// MoveRight attaches a port descriptor marking the designated right to be
// moved on transmission. Ownership of the right transfers to the message:
// port is stripped of its rights and its Close becomes a no-op for them.
func (b *Buffer) MoveRight(mode PortMoveMode, port *Port) {
	b.MoveRightRaw(mode, port.IntoRaw())
}

// MoveRightRaw is MoveRight for a raw name whose right the caller gives up.
func (b *Buffer) MoveRightRaw(mode PortMoveMode, port RawPort) {
	b.appendPortDescriptor(uint32(mode), port)
}

func (b *Buffer) appendPortDescriptor(disposition uint32, name RawPort) {
	var rec [machsys.SizeofPortDescriptor]byte
	le.PutUint32(rec[0:], uint32(name))
	// Word 3 packs pad:16 | disposition:8 | type:8, low bits first.
	le.PutUint32(rec[8:], disposition<<16|uint32(machsys.MACH_MSG_PORT_DESCRIPTOR)<<24)
	b.appendDescriptor(rec[:])
}

// appendDescriptor inserts one descriptor record directly after the last
// existing record, shifting any inline payload, then updates count, size, the
// complex bit, and the descriptor reservation.
func (b *Buffer) appendDescriptor(rec []byte) {
	offset := startSize + b.descriptorsByteLen()
	b.data = slices.Insert(b.data, offset, rec...)
	b.setDescriptorCount(b.DescriptorCount() + 1)
	b.setHeaderBits(b.headerBits() | machsys.MACH_MSGH_BITS_COMPLEX)
	b.setHeaderSize(b.headerSize() + uint32(len(rec)))
	if b.DescriptorCount() > b.capDescriptors {
		b.capDescriptors = b.DescriptorCount()
		b.updateReservation()
	}
}

// resetOnSend restores the empty state after a successful transmit. Any
// MOVE-attached resources now belong to the kernel.
func (b *Buffer) resetOnSend() {
	b.writeEmptyHeader()
}
