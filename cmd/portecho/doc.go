// Package main is the entry point for portecho, a self-loop Mach port
// exerciser.
//
// portecho allocates a port, derives a send right to it, and bounces a batch
// of messages through the kernel and back into the same process, reporting
// per-message round-trip latency. It exists to smoke-test the full library
// path (allocate, derive, encode, send, receive, decode) on a real kernel.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# 1000 messages of 256 bytes, 500ms per-operation timeout
//	./portecho -n 1000 -payload 256 -timeout 500ms
//
//	# Development mode (colored logs, debug level)
//	./portecho -dev
//
// Mach ports are native kernel objects on darwin; elsewhere the run fails
// with KERN_NOT_SUPPORTED.
package main
