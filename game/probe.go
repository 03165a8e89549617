package game

import (
	"github.com/thjmod/edgeproxy/host/types"
	"github.com/thjmod/edgeproxy/memory"
)

// Probe resolves the client's singleton pointers on every call. Nothing is
// cached: the pointers go stale on every zone line and out-of-world
// transition, and a fresh read is cheap.
type Probe struct {
	base uintptr

	// callGetSpawnByID invokes the client's own lookup when the platform
	// glue has wired it. Without it the probe falls back to walking the
	// spawn list.
	callGetSpawnByID func(mgr uintptr, id uint32) uintptr
}

func NewProbe(base uintptr) *Probe {
	return &Probe{base: base}
}

// SetSpawnLookup wires the client's GetSpawnByID through platform glue.
func (p *Probe) SetSpawnLookup(fn func(mgr uintptr, id uint32) uintptr) {
	p.callGetSpawnByID = fn
}

func (p *Probe) BaseAddress() uintptr { return p.base }

func (p *Probe) fix(raw uintptr) uintptr { return FixAddr(p.base, raw) }

// instance dereferences a singleton slot, validating both the slot and the
// object it points at.
func (p *Probe) instance(raw uintptr) uintptr {
	ptr, ok := memory.SafeRead[uint32](p.fix(raw))
	if !ok || !memory.PointerLooksValid(uintptr(ptr)) {
		return 0
	}
	return uintptr(ptr)
}

// GameState reads the client's lifecycle integer. Unknown is -1.
func (p *Probe) GameState() int {
	eq := p.instance(rawInstEverQuest)
	if eq == 0 {
		return -1
	}
	v, ok := memory.SafeRead[int32](eq + offEverQuestGameState)
	if !ok {
		return -1
	}
	return int(v)
}

func (p *Probe) LocalPlayer() types.Spawn {
	addr := p.instance(rawInstLocalPlayer)
	if addr == 0 {
		return nil
	}
	return rawSpawn(addr)
}

func (p *Probe) localPC() uintptr       { return p.instance(rawInstLocalPC) }
func (p *Probe) spawnManager() uintptr  { return p.instance(rawInstSpawnManager) }
func (p *Probe) windowManager() uintptr { return p.instance(rawInstWndManager) }

// SpawnByID resolves a spawn record by ID, preferring the client's own
// lookup over a list walk.
func (p *Probe) SpawnByID(id uint32) types.Spawn {
	mgr := p.spawnManager()
	if mgr == 0 {
		return nil
	}
	if p.callGetSpawnByID != nil {
		if addr := p.callGetSpawnByID(mgr, id); addr != 0 {
			return rawSpawn(addr)
		}
		return nil
	}
	// Fallback: the manager's list is a chain of spawn records.
	first, ok := memory.SafeRead[uint32](mgr)
	if !ok {
		return nil
	}
	cur := uintptr(first)
	for i := 0; cur != 0 && i < 8192; i++ {
		sp := rawSpawn(cur)
		if sp.ID() == id {
			return sp
		}
		next, ok := memory.SafeRead[uint32](cur + offSpawnNext)
		if !ok {
			return nil
		}
		cur = uintptr(next)
	}
	return nil
}

// NextSpawnID reports the ID the client will assign to the next spawn.
func (p *Probe) NextSpawnID() uint32 {
	mgr := p.spawnManager()
	if mgr == 0 {
		return 0
	}
	v, _ := memory.SafeRead[uint32](mgr + offMgrNextID)
	return v
}

// Targets exposes the local PC's extended target list, or nil when out of
// world.
func (p *Probe) Targets() types.TargetList {
	pc := p.localPC()
	if pc == 0 {
		return nil
	}
	ptr, ok := memory.SafeRead[uint32](pc + offPCXTargetList)
	if !ok || !memory.PointerLooksValid(uintptr(ptr)) {
		return nil
	}
	return rawTargetList(uintptr(ptr))
}

// Windows snapshots the window manager's top-level list.
func (p *Probe) Windows() []types.Window {
	mgr := p.windowManager()
	if mgr == 0 {
		return nil
	}
	count, ok := memory.SafeRead[uint32](mgr + offWndMgrCount)
	if !ok || count == 0 || count > 4096 {
		return nil
	}
	arr, ok := memory.SafeRead[uint32](mgr + offWndMgrArray)
	if !ok || !memory.PointerLooksValid(uintptr(arr)) {
		return nil
	}
	out := make([]types.Window, 0, count)
	for i := uintptr(0); i < uintptr(count); i++ {
		w, ok := memory.SafeRead[uint32](uintptr(arr) + i*4)
		if !ok {
			break
		}
		if memory.PointerLooksValid(uintptr(w)) {
			out = append(out, rawWindow(uintptr(w)))
		}
	}
	return out
}
