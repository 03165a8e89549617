package host

import (
	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

// presenceMutexName marks a process that already carries the proxy.
// External tools (and a second copy of the DLL) check for it by name.
const presenceMutexName = "THJ_DInput8_Proxy_Active"

// PresenceLock is the named mutex advertising the proxy inside this
// process. Held for the DLL's whole lifetime.
type PresenceLock struct {
	handle windows.Handle
}

// AcquirePresenceLock creates the presence mutex. Finding it already
// there means another copy of the proxy loaded first; that is logged
// and tolerated, the new copy keeps running.
func AcquirePresenceLock() *PresenceLock {
	log := zap.S().Named("host")
	name, err := windows.UTF16PtrFromString(presenceMutexName)
	if err != nil {
		log.Warnf("presence mutex name: %v", err)
		return &PresenceLock{}
	}
	h, err := windows.CreateMutex(nil, false, name)
	if err == windows.ERROR_ALREADY_EXISTS {
		log.Warnf("presence mutex %s already exists, another proxy copy is loaded", presenceMutexName)
	} else if err != nil {
		log.Warnf("create presence mutex: %v", err)
		return &PresenceLock{}
	}
	return &PresenceLock{handle: h}
}

// Release closes the mutex handle. Safe on a lock that never acquired.
func (l *PresenceLock) Release() {
	if l == nil || l.handle == 0 {
		return
	}
	windows.CloseHandle(l.handle)
	l.handle = 0
}
