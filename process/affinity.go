// File: process/affinity.go
// Author: momentics <momentics@gmail.com>
//
// CPU pinning helpers over the affinity package (golang.org/x/sys-backed,
// see affinity/affinity_linux.go and affinity/affinity_windows.go).
// cmd/mapsvr/main.go calls PinSelf for its -cpu flag; nothing in this
// module forks child processes, so PinWorker has no caller here.

package process

import "github.com/momentics/mapsvr/affinity"

// PinWorker pins the worker process identified by pid to cpuID, for a
// supervisor that has already started that process (spec.md §2: "process
// fork/supervision plumbing" is an external collaborator).
func PinWorker(pid, cpuID int) error {
	return affinity.PinProcess(pid, cpuID)
}

// PinSelf pins the calling OS thread to cpuID (see affinity.SetAffinity);
// other threads of the process are not pinned.
func PinSelf(cpuID int) error {
	return affinity.SetAffinity(cpuID)
}
