package game

import (
	"github.com/thjmod/edgeproxy/host/types"
	"github.com/thjmod/edgeproxy/memory"
)

// rawTargetList wraps the client's ExtendedTargetList.
type rawTargetList uintptr

func (l rawTargetList) SlotCount() int {
	n, ok := memory.SafeRead[uint32](uintptr(l) + offXTLLength)
	if !ok || n > 64 {
		return 0
	}
	return int(n)
}

func (l rawTargetList) slotAddr(i int) uintptr {
	arr, ok := memory.SafeRead[uint32](uintptr(l) + offXTLArray)
	if !ok || !memory.PointerLooksValid(uintptr(arr)) {
		return 0
	}
	return uintptr(arr) + uintptr(i)*xtargetSlotSize
}

func (l rawTargetList) Slot(i int) (types.TargetSlot, bool) {
	if i < 0 || i >= l.SlotCount() {
		return types.TargetSlot{}, false
	}
	addr := l.slotAddr(i)
	if addr == 0 {
		return types.TargetSlot{}, false
	}
	var out types.TargetSlot
	var ok bool
	if out.Type, ok = memory.SafeRead[uint32](addr + offXTSType); !ok {
		return types.TargetSlot{}, false
	}
	if out.Status, ok = memory.SafeRead[uint32](addr + offXTSStatus); !ok {
		return types.TargetSlot{}, false
	}
	if out.SpawnID, ok = memory.SafeRead[uint32](addr + offXTSSpawnID); !ok {
		return types.TargetSlot{}, false
	}
	out.Name, _ = memory.SafeReadCString(addr+offXTSName, xtargetNameLen)
	return out, true
}

func (l rawTargetList) SetSlot(i int, s types.TargetSlot) bool {
	if i < 0 || i >= l.SlotCount() {
		return false
	}
	addr := l.slotAddr(i)
	if addr == 0 {
		return false
	}
	memory.Write(addr+offXTSType, s.Type)
	memory.Write(addr+offXTSStatus, s.Status)
	memory.Write(addr+offXTSSpawnID, s.SpawnID)
	name := make([]byte, xtargetNameLen)
	copy(name, s.Name)
	name[xtargetNameLen-1] = 0
	for j, b := range name {
		memory.Write(addr+offXTSName+uintptr(j), b)
	}
	return true
}
