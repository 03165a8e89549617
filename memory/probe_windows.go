package memory

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// probeReadable asks the memory manager whether the span is committed and
// readable. Spawn and window structures are freed behind our back between
// pulses, so every guarded read goes through here.
func probeReadable(addr, size uintptr) bool {
	if addr == 0 || size == 0 {
		return false
	}
	var mbi windows.MemoryBasicInformation
	if err := windows.VirtualQuery(addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
		return false
	}
	if mbi.State != windows.MEM_COMMIT {
		return false
	}
	switch mbi.Protect {
	case windows.PAGE_NOACCESS, windows.PAGE_EXECUTE:
		return false
	}
	if mbi.Protect&windows.PAGE_GUARD != 0 {
		return false
	}
	// The span may straddle a region boundary.
	end := mbi.BaseAddress + mbi.RegionSize
	if addr+size > end {
		return probeReadable(end, addr+size-end)
	}
	return true
}
