// File: process/context.go
// Author: momentics <momentics@gmail.com>
//
// spec.md §9 redesigns the source's process-wide singletons (a global
// connection table, a global auth table, a global VM pointer) into explicit
// state owned by one process's context value and threaded through that
// process's own event loop, rather than reached via file-scope globals.
// Role tags which of those context shapes a running binary is currently
// acting as.

package process

// Role identifies which of the three process kinds (spec.md §2) a running
// binary is acting as.
type Role int

const (
	RoleMain Role = iota
	RoleWorker
	RoleOther
)

func (r Role) String() string {
	switch r {
	case RoleMain:
		return "main"
	case RoleWorker:
		return "worker"
	case RoleOther:
		return "other"
	default:
		return "unknown"
	}
}
