// Package machport is a safe layer over Mach port IPC: kernel-managed
// capability endpoints ("ports") carrying variable-layout messages of inline
// bytes plus typed descriptors (embedded port rights, out-of-line memory).
//
// The two problems it owns:
//   - Right lifecycle. Send and receive rights are reference-counted by the
//     kernel and must be released exactly once. Port tracks which rights it
//     holds and Close decrements each exactly once; operations that transfer
//     a right (MoveRight, IntoRaw) strip it from the owner so it can never be
//     double-released.
//   - Message layout. Buffer encodes and decodes the Mach message wire format
//     by hand: fixed header, count-prefixed array of variable-width descriptor
//     records, inline payload, and a reserved trailer region, with amortized
//     allocation via reservation high-water marks.
//
// Typical use:
//
//	p, err := machport.New()          // receive right
//	s, err := p.MakeSender()          // send right to the same port
//	buf := machport.NewBuffer()
//	buf.ExtendInlineData([]byte{1, 2, 3, 4})
//	err = s.Send(buf, machport.Forever)
//	err = p.Recv(buf, machport.Forever)
//	data := buf.InlineData()
//
// Send and Recv block the calling goroutine; cancellation is only expressible
// through the timeout argument. Distinct Port values are safe to use from
// multiple goroutines; concurrent operations on the same Port or Buffer must
// be serialized by the caller.
//
// Ports are native kernel state on darwin only. The message codec is pure and
// portable; kernel calls on other platforms fail with KERN_NOT_SUPPORTED.
package machport
