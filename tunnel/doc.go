// Package tunnel
// Author: momentics <momentics@gmail.com>
//
// Implements the cross-process tunnel dispatcher from spec.md §4.3: envelope
// (un)wrapping for worker<->other traffic and the fan-out delivery contract
// that never delivers back to its own source. Each destination tunnel id
// owns one FIFO backed by github.com/eapache/queue, the same queue the
// teacher's internal/concurrency.Executor uses for task dispatch — here
// repurposed as the per-tunnel mailbox a process drains once per event-loop
// iteration (spec.md §5: single-threaded cooperative per process).
package tunnel
