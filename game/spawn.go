package game

import (
	"github.com/thjmod/edgeproxy/host/types"
	"github.com/thjmod/edgeproxy/memory"
)

// rawSpawn wraps a live PlayerClient record. The record is owned by the
// client and may be freed at any time; every accessor degrades to a zero
// value on a failed read.
type rawSpawn uintptr

// WrapSpawn exposes a raw spawn pointer as a types.Spawn. The bridge uses
// it for the add/remove events, which carry the record pointer directly.
func WrapSpawn(addr uintptr) types.Spawn {
	if addr == 0 {
		return nil
	}
	return rawSpawn(addr)
}

func (s rawSpawn) Raw() uintptr { return uintptr(s) }

func (s rawSpawn) ID() uint32 {
	v, _ := memory.SafeRead[uint32](uintptr(s) + offSpawnID)
	return v
}

func (s rawSpawn) SpawnName() string {
	name, _ := memory.SafeReadCString(uintptr(s)+offSpawnName, spawnNameLen)
	return name
}

func (s rawSpawn) MasterID() uint32 {
	v, _ := memory.SafeRead[uint32](uintptr(s) + offSpawnMasterID)
	return v
}

func (s rawSpawn) PetID() int {
	v, _ := memory.SafeRead[int32](uintptr(s) + offSpawnPetID)
	return int(v)
}

func (s rawSpawn) SetPetID(id int) {
	if memory.PointerLooksValid(uintptr(s)) {
		memory.Write(uintptr(s)+offSpawnPetID, int32(id))
	}
}
