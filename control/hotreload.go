// control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// Process-wide fan-out for the CLI "reload" command (spec.md §6). Each VM
// slot marks its own pending-reload flag independently and consumes it at
// the start of its next tick (spec.md §4.5); this file is only the
// control-plane signal that fans RELOAD out to every slot's Reload
// method — it never reloads a slot directly, and reloading one slot never
// implies reloading another.

package control

var reloadHooks []func()

// RegisterReloadHook adds a component reload listener, typically a VM
// slot's Reload method.
func RegisterReloadHook(fn func()) {
	reloadHooks = append(reloadHooks, fn)
}

// TriggerHotReload dispatches every registered reload listener. Each runs on
// its own goroutine so a slow or wedged listener cannot delay the others.
func TriggerHotReload() {
	for _, fn := range reloadHooks {
		go fn()
	}
}
