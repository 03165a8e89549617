package mods

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	moduser32mods        = windows.NewLazySystemDLL("user32.dll")
	procFindWindowA      = moduser32mods.NewProc("FindWindowA")
	procGetModuleHandleW = modkernel32mods.NewProc("GetModuleHandleW")
)

// scan looks for known MQ2 modules in this process and for the injector's
// window class on the desktop.
func (m *Mq2Prevention) scan() (string, bool) {
	for _, name := range mq2Modules {
		p, err := windows.UTF16PtrFromString(name)
		if err != nil {
			continue
		}
		if h, _, _ := procGetModuleHandleW.Call(uintptr(unsafe.Pointer(p))); h != 0 {
			return "module " + name, true
		}
	}

	cls := append([]byte(mq2WindowClass), 0)
	h, _, _ := procFindWindowA.Call(uintptr(unsafe.Pointer(&cls[0])), 0)
	if h != 0 {
		return "window class " + mq2WindowClass, true
	}
	return "", false
}
