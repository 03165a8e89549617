package memory

import "unsafe"

// SafeRead reads a value of type T at addr only if the address range first
// passes a probe. The zero value and false come back for anything the probe
// rejects, so UI-tree walkers can follow stale pointers without faulting.
func SafeRead[T any](addr uintptr) (T, bool) {
	var zero T
	if !PointerLooksValid(addr) {
		return zero, false
	}
	if !probeReadable(addr, sizeOf[T]()) {
		return zero, false
	}
	return Read[T](addr), true
}

// SafeReadBytes is SafeRead for a raw byte span.
func SafeReadBytes(addr uintptr, n int) ([]byte, bool) {
	if n <= 0 || !PointerLooksValid(addr) {
		return nil, false
	}
	if !probeReadable(addr, uintptr(n)) {
		return nil, false
	}
	return ReadBytes(addr, n), true
}

// SafeReadCString reads a NUL-terminated string, probing the whole window
// before touching it.
func SafeReadCString(addr uintptr, maxLen int) (string, bool) {
	if maxLen <= 0 || !PointerLooksValid(addr) {
		return "", false
	}
	if !probeReadable(addr, uintptr(maxLen)) {
		return "", false
	}
	return ReadCString(addr, maxLen), true
}

func sizeOf[T any]() uintptr {
	var v T
	return unsafe.Sizeof(v)
}
