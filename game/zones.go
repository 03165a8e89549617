package game

import (
	"github.com/pkg/errors"

	"github.com/thjmod/edgeproxy/memory"
)

// ZoneTable links custom zone records into EQWorldData's zone array. The
// array is a flat table of record pointers indexed by zone id; records we
// insert live in buffers this table owns and are unlinked again at
// shutdown.
type ZoneTable struct {
	base  uintptr
	owned map[int]uintptr
}

func NewZoneTable(base uintptr) *ZoneTable {
	return &ZoneTable{base: base, owned: make(map[int]uintptr)}
}

// arrayBase resolves the zone array inside the live EQWorldData instance,
// 0 when the world singleton is down.
func (t *ZoneTable) arrayBase() uintptr {
	slot := FixAddr(t.base, rawInstWorldData)
	world, ok := memory.SafeRead[uint32](slot)
	if !ok || !memory.PointerLooksValid(uintptr(world)) {
		return 0
	}
	return uintptr(world) + offWorldZoneArray
}

// Occupied reports whether the client already has a record at this id.
// Out-of-range ids and an unresolved world count as occupied; callers
// must not link there.
func (t *ZoneTable) Occupied(id int) bool {
	if id < 0 || id >= zoneArrayLen {
		return true
	}
	arr := t.arrayBase()
	if arr == 0 {
		return true
	}
	ptr, ok := memory.SafeRead[uint32](arr + uintptr(id)*4)
	return !ok || ptr != 0
}

// Link copies record into an owned buffer and writes the buffer's address
// into the zone array slot for id.
func (t *ZoneTable) Link(id int, record []byte) error {
	if id < 0 || id >= zoneArrayLen {
		return errors.Errorf("game: zone id %d out of range [0..%d]", id, zoneArrayLen-1)
	}
	arr := t.arrayBase()
	if arr == 0 {
		return errors.New("game: world data unresolved")
	}
	buf, err := allocZoneRecord(record)
	if err != nil {
		return errors.Wrapf(err, "game: allocate zone record %d", id)
	}
	memory.Write(arr+uintptr(id)*4, uint32(buf))
	t.owned[id] = buf
	return nil
}

// UnlinkAll clears every slot this table populated and frees the record
// buffers.
func (t *ZoneTable) UnlinkAll() {
	arr := t.arrayBase()
	for id, buf := range t.owned {
		if arr != 0 {
			memory.Write(arr+uintptr(id)*4, uint32(0))
		}
		freeZoneRecord(buf)
	}
	t.owned = make(map[int]uintptr)
}
