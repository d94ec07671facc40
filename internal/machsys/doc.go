// Package machsys exposes the fixed Mach kernel call surface and the wire
// constants the message layout depends on.
//
// The constants mirror <mach/port.h>, <mach/message.h> and <mach/kern_return.h>
// and keep their canonical names; they are part of the kernel ABI and must
// match it bit for bit. The call wrappers are bound with cgo on darwin; on
// other platforms they return KERN_NOT_SUPPORTED so that the pure message
// codec still compiles and tests everywhere.
package machsys
