package memory

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Patch overwrites len(data) bytes at addr after making the page writable,
// and returns the bytes that were there before so the caller can restore
// them on shutdown. A zero-length patch is a no-op returning an empty slice.
func Patch(addr uintptr, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	if addr == 0 {
		return nil, errors.New("memory: patch at nil address")
	}
	old := ReadBytes(addr, len(data))
	if err := writeProtected(addr, data); err != nil {
		return nil, errors.Wrapf(err, "memory: patch %d bytes at %#x", len(data), addr)
	}
	zap.S().Named("memory").Debugf("patched %d bytes at %#x", len(data), addr)
	return old, nil
}

// Restore puts previously saved bytes back. It is Patch with the saved
// slice; kept separate so call sites read naturally.
func Restore(addr uintptr, saved []byte) error {
	_, err := Patch(addr, saved)
	return err
}
