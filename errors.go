package machport

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/MachPort/internal/machsys"
)

// ErrTimeout reports that the kernel gave up on a send or receive before a
// peer was ready. Match with errors.Is.
var ErrTimeout = errors.New("machport: operation timed out")

// ErrUnexpectedRight reports that a right extraction returned a right of a
// different kind than requested.
var ErrUnexpectedRight = errors.New("machport: extracted right has unexpected type")

// KernelError wraps a non-success status from a Mach kernel call. Code is the
// raw kern_return_t / mach_msg_return_t for diagnostics.
type KernelError struct {
	Call string
	Code int32
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("machport: %s failed: %s (%#x)", e.Call, machsys.ErrorString(e.Code), uint32(e.Code))
}

// Is matches ErrTimeout for the kernel's explicit timed-out statuses.
func (e *KernelError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout()
}

// Timeout reports whether the kernel explicitly timed the operation out.
func (e *KernelError) Timeout() bool {
	return e.Code == machsys.MACH_SEND_TIMED_OUT || e.Code == machsys.MACH_RCV_TIMED_OUT
}

// TooLarge reports a receive that failed because the incoming message did not
// fit the buffer. MACH_RCV_LARGE makes the kernel report this instead of
// truncating; growing the buffer and retrying is the caller's loop.
func (e *KernelError) TooLarge() bool {
	return e.Code == machsys.MACH_RCV_TOO_LARGE
}

func kernelError(call string, code int32) error {
	return &KernelError{Call: call, Code: code}
}

// CorruptedMessageError carries an unrecognized descriptor kind tag. Only the
// kernel produces descriptor tags on the receive path, so an unknown tag is a
// version-skew or memory-corruption bug, not recoverable input: it is raised
// as a panic value, never returned.
type CorruptedMessageError struct {
	Tag uint8
}

func (e *CorruptedMessageError) Error() string {
	return fmt.Sprintf("machport: corrupted message: unknown descriptor type %d", e.Tag)
}
