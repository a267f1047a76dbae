// Package sim provides the discrete-event simulation kernel for the drive-thru simulator.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: Event ordering (time, then insertion sequence) and the pending-event heap
//   - scheduler.go: the logical clock and the event loop
//   - future.go: suspension points expressed as futures that resume continuations
//   - resource.go: capacity-limited servers with a FIFO wait line
//
// # Execution model
//
// The kernel is strictly single-threaded and cooperative. A "process" is a chain of
// continuations: whenever it needs to wait for a resource slot, a downstream vacancy,
// or a timed delay, it registers a continuation on a Future and returns control to
// the Scheduler. Exactly one continuation runs at a time, so kernel state needs no locks.
//
// Events scheduled for the same simulated instant run in the order they were scheduled.
// Together with a fixed seed for Streams this makes every run reproducible.
//
// # Sub-packages
//   - sim/restaurant/: the drive-thru queueing network built on the kernel
//   - sim/trace/: customer event trace records and sinks
//   - sim/telemetry/: prometheus collector fed from the trace
//   - sim/export/: per-customer result export (Parquet, CSV)
package sim
