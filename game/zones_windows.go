package game

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// allocZoneRecord copies record into process-heap memory the client can
// hold a pointer to for as long as we stay loaded.
func allocZoneRecord(record []byte) (uintptr, error) {
	buf, err := windows.VirtualAlloc(0, uintptr(len(record)),
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return 0, err
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), len(record))
	copy(dst, record)
	return buf, nil
}

func freeZoneRecord(buf uintptr) {
	if buf != 0 {
		windows.VirtualFree(buf, 0, windows.MEM_RELEASE)
	}
}
