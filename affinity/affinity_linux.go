//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux implementation of CPU affinity pinning, backed by golang.org/x/sys/unix
// rather than cgo so the binary stays a static, cross-compilable Go artifact.

package affinity

import "golang.org/x/sys/unix"

// setAffinityPlatform pins the calling thread to cpuID.
func setAffinityPlatform(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(0, &set)
}

// pinProcessPlatform pins the process pid to cpuID.
func pinProcessPlatform(pid, cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(pid, &set)
}
