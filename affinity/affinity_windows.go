//go:build windows
// +build windows

// File: affinity/affinity_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows implementation of CPU affinity pinning via golang.org/x/sys/windows,
// matching the kernel32 LazyDLL pattern the rest of the pack uses for NUMA calls.

package affinity

import "golang.org/x/sys/windows"

var (
	modkernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask = modkernel32.NewProc("SetThreadAffinityMask")
	procGetCurrentThread      = modkernel32.NewProc("GetCurrentThread")
	procOpenProcess           = modkernel32.NewProc("OpenProcess")
	procSetProcessAffinityM   = modkernel32.NewProc("SetProcessAffinityMask")
	procCloseHandle           = modkernel32.NewProc("CloseHandle")
)

const procAllAccess = 0x1F0FFF

// setAffinityPlatform pins the calling thread to cpuID.
func setAffinityPlatform(cpuID int) error {
	hThread, _, _ := procGetCurrentThread.Call()
	mask := uintptr(1) << uint(cpuID)
	ret, _, err := procSetThreadAffinityMask.Call(hThread, mask)
	if ret == 0 {
		return err
	}
	return nil
}

// pinProcessPlatform pins the process pid to cpuID.
func pinProcessPlatform(pid, cpuID int) error {
	h, _, err := procOpenProcess.Call(uintptr(procAllAccess), 0, uintptr(pid))
	if h == 0 {
		return err
	}
	defer procCloseHandle.Call(h)
	mask := uintptr(1) << uint(cpuID)
	ret, _, err := procSetProcessAffinityM.Call(h, mask)
	if ret == 0 {
		return err
	}
	return nil
}
