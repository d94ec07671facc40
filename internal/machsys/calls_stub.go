//go:build !darwin

package machsys

import "fmt"

// Mach ports exist only on darwin. The stubs fail with KERN_NOT_SUPPORTED so
// callers get a regular kernel error instead of a build break.

func PortAllocate(right uint32) (uint32, int32) {
	return MACH_PORT_NULL, KERN_NOT_SUPPORTED
}

func PortModRefs(name uint32, right uint32, delta int32) int32 {
	return KERN_NOT_SUPPORTED
}

func PortType(name uint32) (uint32, int32) {
	return 0, KERN_NOT_SUPPORTED
}

func PortExtractRight(name uint32, desired uint32) (uint32, uint32, int32) {
	return MACH_PORT_NULL, 0, KERN_NOT_SUPPORTED
}

func MachMsg(buf []byte, options int32, sendSize, rcvSize uint32, rcvName uint32, timeout uint32, notify uint32) int32 {
	return KERN_NOT_SUPPORTED
}

// ErrorString has no mach_error_string to call off-darwin; report the code.
func ErrorString(code int32) string {
	return fmt.Sprintf("kern_return_t %#x", uint32(code))
}
