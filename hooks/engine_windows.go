package hooks

import (
	"encoding/binary"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/thjmod/edgeproxy/memory"
)

const jmpRel32Size = 5

// nativeEngine rewrites function prologues with a 5-byte JMP rel32 and
// parks the displaced instructions in a VirtualAlloc'd trampoline followed
// by a jump back to the remainder of the target.
type nativeEngine struct{}

// NewNativeEngine returns the in-process prologue-rewriting engine.
func NewNativeEngine() Engine {
	return &nativeEngine{}
}

type pendingAttach struct {
	target     uintptr
	detour     uintptr
	trampoline uintptr
	stolen     []byte
}

type pendingDetach struct {
	rec Record
}

// nativeTxn stages attach/detach work. Trampolines are built eagerly at
// Attach time (so the original pointer can be handed out), but the target
// prologues are only rewritten at Commit. Abort releases any trampolines
// built so far and leaves every target untouched.
type nativeTxn struct {
	attaches []pendingAttach
	detaches []pendingDetach
	done     bool
}

func (e *nativeEngine) Begin() (Txn, error) {
	return &nativeTxn{}, nil
}

func (t *nativeTxn) Attach(target, detour uintptr) (uintptr, error) {
	if t.done {
		return 0, errors.New("hooks: attach on finished transaction")
	}
	stolenLen, err := prologueLength(target, jmpRel32Size)
	if err != nil {
		return 0, err
	}
	stolen := memory.ReadBytes(target, stolenLen)
	tramp, err := buildTrampoline(target, stolen)
	if err != nil {
		return 0, err
	}
	t.attaches = append(t.attaches, pendingAttach{
		target: target, detour: detour, trampoline: tramp, stolen: stolen,
	})
	return tramp, nil
}

func (t *nativeTxn) Detach(rec Record) error {
	if t.done {
		return errors.New("hooks: detach on finished transaction")
	}
	cur := memory.ReadBytes(rec.Target, 1)
	if cur[0] != 0xE9 {
		return errors.Errorf("hooks: target %#x no longer starts with a jump", rec.Target)
	}
	t.detaches = append(t.detaches, pendingDetach{rec: rec})
	return nil
}

func (t *nativeTxn) Commit() error {
	if t.done {
		return errors.New("hooks: commit on finished transaction")
	}
	t.done = true

	// Detaches first: restore the stolen prologues out of the trampolines.
	for _, d := range t.detaches {
		stolenLen, err := trampolineStolenLength(d.rec.Original, d.rec.Target)
		if err != nil {
			return err
		}
		stolen := memory.ReadBytes(d.rec.Original, stolenLen)
		if _, err := memory.Patch(d.rec.Target, stolen); err != nil {
			return err
		}
		freeTrampoline(d.rec.Original)
	}

	for _, a := range t.attaches {
		jmp := make([]byte, jmpRel32Size)
		jmp[0] = 0xE9
		rel := int32(int64(a.detour) - int64(a.target) - jmpRel32Size)
		binary.LittleEndian.PutUint32(jmp[1:], uint32(rel))
		// Pad the rest of the stolen span with INT3 so a stray jump into
		// the middle of the old prologue lands loudly.
		patch := jmp
		for len(patch) < len(a.stolen) {
			patch = append(patch, 0xCC)
		}
		if _, err := memory.Patch(a.target, patch); err != nil {
			return err
		}
	}
	return nil
}

func (t *nativeTxn) Abort() {
	if t.done {
		return
	}
	t.done = true
	for _, a := range t.attaches {
		freeTrampoline(a.trampoline)
	}
}

// buildTrampoline allocates stolen + JMP-back and returns its address.
func buildTrampoline(target uintptr, stolen []byte) (uintptr, error) {
	size := uintptr(len(stolen) + jmpRel32Size)
	addr, err := windows.VirtualAlloc(0, size,
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return 0, errors.Wrap(err, "hooks: allocate trampoline")
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	copy(buf, stolen)
	if err := relocateStolen(buf[:len(stolen)], target, addr); err != nil {
		freeTrampoline(addr)
		return 0, err
	}
	back := target + uintptr(len(stolen))
	buf[len(stolen)] = 0xE9
	rel := int32(int64(back) - int64(addr) - int64(len(stolen)) - jmpRel32Size)
	binary.LittleEndian.PutUint32(buf[len(stolen)+1:], uint32(rel))
	return addr, nil
}

// trampolineStolenLength recovers how many bytes a trampoline displaced by
// locating its trailing jump back into the target.
func trampolineStolenLength(tramp, target uintptr) (int, error) {
	// The stolen span is never longer than jmpRel32Size + the longest
	// instruction we decode (15 bytes).
	for n := jmpRel32Size; n <= jmpRel32Size+15; n++ {
		b, ok := memory.SafeRead[byte](tramp + uintptr(n))
		if !ok {
			break
		}
		if b != 0xE9 {
			continue
		}
		rel, ok := memory.SafeRead[int32](tramp + uintptr(n) + 1)
		if !ok {
			break
		}
		dest := tramp + uintptr(n) + jmpRel32Size + uintptr(rel)
		if dest == target+uintptr(n) {
			return n, nil
		}
	}
	return 0, errors.Errorf("hooks: trampoline at %#x has no jump back to %#x", tramp, target)
}

func freeTrampoline(addr uintptr) {
	if addr != 0 {
		_ = windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
	}
}
