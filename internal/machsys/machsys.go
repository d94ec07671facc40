package machsys

// Reserved port names.
const (
	MACH_PORT_NULL uint32 = 0
	MACH_PORT_DEAD uint32 = 0xffffffff
)

// Port right kinds, for mach_port_allocate and mach_port_mod_refs.
const (
	MACH_PORT_RIGHT_SEND      uint32 = 0
	MACH_PORT_RIGHT_RECEIVE   uint32 = 1
	MACH_PORT_RIGHT_SEND_ONCE uint32 = 2
)

// Right-type bitmask values reported by mach_port_type. The mask for a right
// is 1 << (right + 16).
const (
	MACH_PORT_TYPE_SEND      uint32 = 1 << (MACH_PORT_RIGHT_SEND + 16)
	MACH_PORT_TYPE_RECEIVE   uint32 = 1 << (MACH_PORT_RIGHT_RECEIVE + 16)
	MACH_PORT_TYPE_SEND_ONCE uint32 = 1 << (MACH_PORT_RIGHT_SEND_ONCE + 16)
)

// Message disposition tags. The MOVE variants transfer the right to the
// message, the COPY/MAKE variants leave the sender's right untouched. The
// PORT aliases are what the kernel reports for a right it granted.
const (
	MACH_MSG_TYPE_MOVE_RECEIVE   uint32 = 16
	MACH_MSG_TYPE_MOVE_SEND      uint32 = 17
	MACH_MSG_TYPE_MOVE_SEND_ONCE uint32 = 18
	MACH_MSG_TYPE_COPY_SEND      uint32 = 19
	MACH_MSG_TYPE_MAKE_SEND      uint32 = 20
	MACH_MSG_TYPE_MAKE_SEND_ONCE uint32 = 21

	MACH_MSG_TYPE_PORT_RECEIVE   = MACH_MSG_TYPE_MOVE_RECEIVE
	MACH_MSG_TYPE_PORT_SEND      = MACH_MSG_TYPE_MOVE_SEND
	MACH_MSG_TYPE_PORT_SEND_ONCE = MACH_MSG_TYPE_MOVE_SEND_ONCE
)

// mach_msg operation flags.
const (
	MACH_MSG_OPTION_NONE int32 = 0x0
	MACH_SEND_MSG        int32 = 0x1
	MACH_RCV_MSG         int32 = 0x2
	MACH_RCV_LARGE       int32 = 0x4
	MACH_SEND_TIMEOUT    int32 = 0x10
	MACH_RCV_TIMEOUT     int32 = 0x100
)

// MACH_MSG_TIMEOUT_NONE blocks indefinitely.
const MACH_MSG_TIMEOUT_NONE uint32 = 0

// MACH_MSGH_BITS_COMPLEX marks a message that carries descriptors.
const MACH_MSGH_BITS_COMPLEX uint32 = 0x80000000

// Descriptor kind tags, stored in the type byte of every descriptor record.
const (
	MACH_MSG_PORT_DESCRIPTOR         uint8 = 0
	MACH_MSG_OOL_DESCRIPTOR          uint8 = 1
	MACH_MSG_OOL_PORTS_DESCRIPTOR    uint8 = 2
	MACH_MSG_OOL_VOLATILE_DESCRIPTOR uint8 = 3
)

// Struct widths of the LP64 wire layout. The descriptor union width is the
// widest member; per-kind records are narrower and self-sized.
const (
	SizeofHeader             = 24 // mach_msg_header_t
	SizeofBody               = 4  // mach_msg_body_t
	SizeofPortDescriptor     = 12 // mach_msg_port_descriptor_t
	SizeofOOLDescriptor      = 16 // mach_msg_ool_descriptor_t
	SizeofOOLPortsDescriptor = 16 // mach_msg_ool_ports_descriptor_t
	SizeofDescriptor         = 16 // mach_msg_descriptor_t union
	SizeofTrailer            = 8  // mach_msg_trailer_t
)

// Return codes this library classifies. Anything else is passed through
// verbatim inside a kernel error.
const (
	KERN_SUCCESS        int32 = 0
	KERN_INVALID_RIGHT  int32 = 17
	KERN_NOT_SUPPORTED  int32 = 46
	MACH_SEND_TIMED_OUT int32 = 0x10000004
	MACH_RCV_TIMED_OUT  int32 = 0x10004003
	MACH_RCV_TOO_LARGE  int32 = 0x10004004
)
