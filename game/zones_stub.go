//go:build !windows

package game

import (
	"unsafe"

	"github.com/thjmod/edgeproxy/utils"
)

// Zone record buffers on non-windows builds come from the Go heap; the
// registry keeps them reachable for as long as they are linked. Link runs
// on the init worker and UnlinkAll on the shutdown thread, hence the
// concurrent map.
var stubZoneRecords utils.SyncMap[uintptr, []byte]

func allocZoneRecord(record []byte) (uintptr, error) {
	buf := make([]byte, len(record))
	copy(buf, record)
	if len(buf) == 0 {
		return 0, nil
	}
	addr := uintptr(unsafe.Pointer(&buf[0]))
	stubZoneRecords.Store(addr, buf)
	return addr, nil
}

func freeZoneRecord(buf uintptr) {
	stubZoneRecords.Delete(buf)
}
