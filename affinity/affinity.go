// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for pinning a supervised child process to a CPU core.
// Platform-specific implementations live in separate files (affinity_linux.go,
// affinity_windows.go, affinity_stub.go) guarded by build tags.

package affinity

// SetAffinity pins the calling OS thread to a given logical CPU/core on
// supported platforms. On unsupported platforms it returns an error.
func SetAffinity(cpuID int) error {
	return setAffinityPlatform(cpuID)
}

// PinProcess pins an already-running process (identified by OS pid) to a
// given logical CPU/core. Wrapped by process.PinWorker.
func PinProcess(pid, cpuID int) error {
	return pinProcessPlatform(pid, cpuID)
}
