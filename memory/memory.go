// Package memory holds the byte-patching and guarded-read primitives. It is
// the only place in the framework that reasons about page protection.
package memory

import "unsafe"

// Read performs an unchecked typed read. The caller must have validated the
// address (see SafeRead for the guarded variant).
func Read[T any](addr uintptr) T {
	return *(*T)(unsafe.Pointer(addr))
}

// Write performs an unchecked typed write to writable memory. For memory
// that may be protected, use Patch.
func Write[T any](addr uintptr, v T) {
	*(*T)(unsafe.Pointer(addr)) = v
}

// ReadBytes copies n bytes starting at addr.
func ReadBytes(addr uintptr, n int) []byte {
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(addr)), n))
	return out
}

// ReadCString reads a NUL-terminated string of at most maxLen bytes.
func ReadCString(addr uintptr, maxLen int) string {
	if addr == 0 || maxLen <= 0 {
		return ""
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(addr)), maxLen)
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// userAddressLow / userAddressHigh bound the plausible user-mode address
// window. Anything outside is treated as garbage by the UI-tree walkers
// before a read is even attempted. The client process is 32-bit; the wide
// bound only matters for the host simulator and tests.
const userAddressLow uintptr = 0x10000

var userAddressHigh = func() uintptr {
	if unsafe.Sizeof(uintptr(0)) == 4 {
		return 0x7FFF0000
	}
	return 0x7FFFFFFE0000
}()

// PointerLooksValid is a coarse range check, not a mapping check. Use
// SafeRead when the memory may genuinely be unmapped.
func PointerLooksValid(p uintptr) bool {
	return p >= userAddressLow && p < userAddressHigh
}
