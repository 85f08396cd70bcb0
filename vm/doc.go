// Package vm
// Author: momentics <momentics@gmail.com>
//
// Implements the VM lifecycle and dispatch contract from spec.md §4.5: the
// six lifecycle hooks (Init/Stop/Tick/Reload, generic and typed dispatch)
// shared by the main, worker, and other VM slots, reload-at-next-tick
// semantics, and symbol mounting. The embedded script interpreter itself is
// out of scope (spec.md §1); Engine is the opaque, owned resource spec.md
// §9 calls for in place of the source's raw interpreter handle, and any
// script failure is caught here and logged rather than allowed to
// propagate out of the host call (spec.md §7 class 6), the same shape as
// adapters.RecoveryMiddleware.
package vm
