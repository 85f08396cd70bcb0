// Package netconn
// Author: momentics <momentics@gmail.com>
//
// Adapts a real net.Conn to the api.NetConn / api.ConnCtx contracts this
// repository's reassemblers and dispatchers are written against (spec.md
// §6), holding a growable receive buffer rather than a pool-backed
// zero-copy one, since the generic reactor/buffer-pool machinery itself is
// out of scope here (spec.md §1) and this repository only needs to satisfy
// the contract, not reimplement a high-throughput reactor.
package netconn
