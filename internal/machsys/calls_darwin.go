//go:build darwin

package machsys

/*
#include <mach/mach.h>
#include <mach/mach_error.h>
*/
import "C"

import "unsafe"

// PortAllocate asks the kernel for a fresh right of the given kind in the
// current task, returning its new name.
func PortAllocate(right uint32) (uint32, int32) {
	var name C.mach_port_name_t
	kr := C.mach_port_allocate(C.mach_task_self_, C.mach_port_right_t(right), &name)
	return uint32(name), int32(kr)
}

// PortModRefs adjusts the user reference count held on name for the given
// right kind by delta. Releasing a right is delta -1.
func PortModRefs(name uint32, right uint32, delta int32) int32 {
	kr := C.mach_port_mod_refs(C.mach_task_self_, C.mach_port_name_t(name), C.mach_port_right_t(right), C.mach_port_delta_t(delta))
	return int32(kr)
}

// PortType queries the right-type bitmask the current task holds for name.
func PortType(name uint32) (uint32, int32) {
	var ptype C.mach_port_type_t
	kr := C.mach_port_type(C.mach_task_self_, C.mach_port_name_t(name), &ptype)
	return uint32(ptype), int32(kr)
}

// PortExtractRight extracts a right of the requested disposition from name,
// returning the new name and the right type the kernel actually granted.
func PortExtractRight(name uint32, desired uint32) (uint32, uint32, int32) {
	var out C.mach_port_t
	var acquired C.mach_msg_type_name_t
	kr := C.mach_port_extract_right(C.mach_task_self_, C.mach_port_name_t(name), C.mach_msg_type_name_t(desired), &out, &acquired)
	return uint32(out), uint32(acquired), int32(kr)
}

// MachMsg is the blocking message-transfer trap. buf must start with a
// mach_msg_header_t and, for receives, extend to the full receive capacity.
func MachMsg(buf []byte, options int32, sendSize, rcvSize uint32, rcvName uint32, timeout uint32, notify uint32) int32 {
	kr := C.mach_msg(
		(*C.mach_msg_header_t)(unsafe.Pointer(&buf[0])),
		C.mach_msg_option_t(options),
		C.mach_msg_size_t(sendSize),
		C.mach_msg_size_t(rcvSize),
		C.mach_port_name_t(rcvName),
		C.mach_msg_timeout_t(timeout),
		C.mach_port_name_t(notify),
	)
	return int32(kr)
}

// ErrorString renders a kernel return code through mach_error_string.
func ErrorString(code int32) string {
	return C.GoString(C.mach_error_string(C.mach_error_t(code)))
}
