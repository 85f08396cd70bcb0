// Package process
// Author: momentics <momentics@gmail.com>
//
// Models the three process roles from spec.md §2 as explicit context values
// (spec.md §9: replace the source's process-wide singletons with per-process
// state threaded through the event loop) plus the cooperative event loop
// each one runs (spec.md §5). WorkerContext and OtherContext wire together
// the ws, ipcstream, tunnel, cmdfactory, vm, and udp packages into the data
// flows spec.md §2 describes.
package process
