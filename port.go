package machport

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/MachPort/internal/machsys"
)

// RawPort is a process-wide capability name: just a bit pattern, with no
// ownership attached. Ownership of the rights behind a name is tracked by
// Port.
type RawPort uint32

const (
	// PortNull names no right.
	PortNull RawPort = RawPort(machsys.MACH_PORT_NULL)
	// PortDead names a right whose peer is gone.
	PortDead RawPort = RawPort(machsys.MACH_PORT_DEAD)
)

// Forever disables the timeout on Send and Recv: block until the kernel
// completes the operation. Any negative duration behaves the same.
const Forever time.Duration = -1

// Port owns up to two kernel rights over a single capability name: a receive
// right and/or a send right. A Port never claims a right it did not verifiably
// acquire. Each held right is released exactly once by Close; operations that
// transfer a right (MoveRight on a buffer, IntoRaw) strip it from the Port
// first so a release can never run twice.
//
// Distinct Ports are independent kernel state and safe to use concurrently;
// overlapping operations on the same Port must be serialized by the caller.
type Port struct {
	name       RawPort
	hasReceive bool
	hasSend    bool
}

// New allocates a fresh port, acquiring its receive right.
func New() (*Port, error) {
	name, kr := machsys.PortAllocate(machsys.MACH_PORT_RIGHT_RECEIVE)
	if kr != machsys.KERN_SUCCESS {
		return nil, kernelError("mach_port_allocate", kr)
	}
	return &Port{name: RawPort(name), hasReceive: true}, nil
}

// FromRaw adopts an externally supplied name, querying the kernel for the
// rights it actually holds.
//
// The caller must already own whatever rights exist at raw: the returned Port
// will release them on Close, so adopting a name someone else still releases
// double-frees the right.
func FromRaw(raw RawPort) (*Port, error) {
	ptype, kr := machsys.PortType(uint32(raw))
	if kr != machsys.KERN_SUCCESS {
		return nil, kernelError("mach_port_type", kr)
	}
	return &Port{
		name:       raw,
		hasReceive: ptype&machsys.MACH_PORT_TYPE_RECEIVE != 0,
		hasSend:    ptype&machsys.MACH_PORT_TYPE_SEND != 0,
	}, nil
}

// MakeSender extracts a send right to this port from its receive right,
// returning it as a new Port.
func (p *Port) MakeSender() (*Port, error) {
	name, acquired, kr := machsys.PortExtractRight(uint32(p.name), machsys.MACH_MSG_TYPE_MAKE_SEND)
	if kr != machsys.KERN_SUCCESS {
		return nil, kernelError("mach_port_extract_right", kr)
	}
	if acquired != machsys.MACH_MSG_TYPE_PORT_SEND {
		return nil, fmt.Errorf("%w: mach_port_extract_right granted type %d", ErrUnexpectedRight, acquired)
	}
	return &Port{name: RawPort(name), hasSend: true}, nil
}

// Raw returns the capability name without transferring ownership.
func (p *Port) Raw() RawPort {
	return p.name
}

// IntoRaw extracts the capability name and gives up ownership of the held
// rights: after IntoRaw, Close is a no-op and releasing becomes the caller's
// responsibility.
func (p *Port) IntoRaw() RawPort {
	name := p.name
	p.name = PortNull
	p.hasReceive = false
	p.hasSend = false
	return name
}

// HasReceive reports whether this Port owns the receive right.
func (p *Port) HasReceive() bool { return p.hasReceive }

// HasSend reports whether this Port owns a send right.
func (p *Port) HasSend() bool { return p.hasSend }

// Send transmits msg to this port, blocking until the kernel accepts it, the
// timeout elapses, or the call fails. Pass Forever to block indefinitely.
//
// On success the buffer is reset to its canonical empty state: any MOVE-mode
// resources attached to it now belong to the kernel. On failure the buffer is
// left intact, with the remote-port header slot cleared, so it can be resent.
// Timeouts satisfy errors.Is(err, ErrTimeout).
func (p *Port) Send(msg *Buffer, timeout time.Duration) error {
	options := machsys.MACH_SEND_MSG
	timeoutArg := machsys.MACH_MSG_TIMEOUT_NONE
	if timeout >= 0 {
		options |= machsys.MACH_SEND_TIMEOUT
		timeoutArg = timeoutMillis(timeout)
	}
	msg.setRemotePort(p.name)
	kr := machsys.MachMsg(
		msg.data,
		options,
		msg.headerSize(),
		0,
		machsys.MACH_PORT_NULL,
		timeoutArg,
		machsys.MACH_PORT_NULL,
	)
	// Unbind the destination unconditionally so a failed buffer carries no
	// stale state into a later send.
	msg.setRemotePort(PortNull)
	if kr != machsys.KERN_SUCCESS {
		return kernelError("mach_msg", kr)
	}
	msg.resetOnSend()
	return nil
}

// Recv blocks until a message arrives on this port's receive right, the
// timeout elapses, or the call fails, then exposes the received bytes through
// msg. Pass Forever to block indefinitely.
//
// The kernel writes into the buffer's full capacity. MACH_RCV_LARGE makes an
// oversized incoming message fail with a TooLarge kernel error instead of
// being truncated; growing the buffer (ReserveInlineData, ReserveDescriptors)
// and retrying is the caller's loop. Timeouts satisfy
// errors.Is(err, ErrTimeout).
func (p *Port) Recv(msg *Buffer, timeout time.Duration) error {
	options := machsys.MACH_RCV_MSG | machsys.MACH_RCV_LARGE
	timeoutArg := machsys.MACH_MSG_TIMEOUT_NONE
	if timeout >= 0 {
		options |= machsys.MACH_RCV_TIMEOUT
		timeoutArg = timeoutMillis(timeout)
	}
	kr := machsys.MachMsg(
		msg.data[:msg.capacity()],
		options,
		0,
		uint32(msg.capacity()),
		uint32(p.name),
		timeoutArg,
		machsys.MACH_PORT_NULL,
	)
	if kr != machsys.KERN_SUCCESS {
		return kernelError("mach_msg", kr)
	}
	// Truncate to the logical size the kernel reported; the trailer beyond it
	// stays in spare capacity.
	msg.setLength(int(msg.headerSize()))
	return nil
}

// Close releases each held right exactly once. It is idempotent: rights are
// marked released before the kernel call, so a second Close does nothing.
//
// A send-right release that finds the receive right already dead
// (KERN_INVALID_RIGHT) is an expected outcome, not an error. Other failures
// are returned and also logged, since Close often runs in cleanup paths that
// discard its error; it never panics.
func (p *Port) Close() error {
	var errs []error
	if p.hasReceive {
		p.hasReceive = false
		if kr := machsys.PortModRefs(uint32(p.name), machsys.MACH_PORT_RIGHT_RECEIVE, -1); kr != machsys.KERN_SUCCESS {
			err := kernelError("mach_port_mod_refs", kr)
			logger().Error("releasing receive right failed",
				zap.Uint32("port", uint32(p.name)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	if p.hasSend {
		p.hasSend = false
		switch kr := machsys.PortModRefs(uint32(p.name), machsys.MACH_PORT_RIGHT_SEND, -1); kr {
		case machsys.KERN_SUCCESS, machsys.KERN_INVALID_RIGHT:
			// KERN_INVALID_RIGHT: the peer's receive right died first and the
			// send right became a dead name. Still a clean release.
		default:
			err := kernelError("mach_port_mod_refs", kr)
			logger().Error("releasing send right failed",
				zap.Uint32("port", uint32(p.name)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Port) String() string {
	return fmt.Sprintf("Port{name: %#x, receive: %t, send: %t}", uint32(p.name), p.hasReceive, p.hasSend)
}

// timeoutMillis converts a non-negative duration to kernel milliseconds,
// saturating at the platform's maximum 32-bit signed timeout.
func timeoutMillis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return uint32(ms)
}
