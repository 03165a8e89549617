package memory

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// writeProtected flips the target page to RWX, copies the bytes, restores
// the previous protection, then flushes the instruction cache in case the
// bytes were code.
func writeProtected(addr uintptr, data []byte) error {
	var oldProtect uint32
	if err := windows.VirtualProtect(addr, uintptr(len(data)), windows.PAGE_EXECUTE_READWRITE, &oldProtect); err != nil {
		return err
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(data)), data)
	var scratch uint32
	_ = windows.VirtualProtect(addr, uintptr(len(data)), oldProtect, &scratch)
	h := windows.CurrentProcess()
	_ = flushInstructionCache(h, addr, uintptr(len(data)))
	return nil
}

var (
	modkernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procFlushInstructionCache = modkernel32.NewProc("FlushInstructionCache")
)

func flushInstructionCache(h windows.Handle, addr, size uintptr) error {
	r, _, err := procFlushInstructionCache.Call(uintptr(h), addr, size)
	if r == 0 {
		return err
	}
	return nil
}
