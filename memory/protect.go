//go:build !windows

package memory

import "unsafe"

// writeProtected on non-Windows builds writes directly. The portable build
// exists for the host simulator and for tests, which only ever point this
// at Go-allocated buffers.
func writeProtected(addr uintptr, data []byte) error {
	copy(unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(data)), data)
	return nil
}
