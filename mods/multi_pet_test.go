package mods_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thjmod/edgeproxy/host"
	"github.com/thjmod/edgeproxy/host/hosttest"
	"github.com/thjmod/edgeproxy/host/types"
	"github.com/thjmod/edgeproxy/mods"
)

func buildPetList(pets ...[2]uint32) []byte {
	buf := make([]byte, 4+8*len(pets))
	binary.LittleEndian.PutUint32(buf, uint32(len(pets)))
	for i, p := range pets {
		binary.LittleEndian.PutUint32(buf[4+i*8:], p[0])
		binary.LittleEndian.PutUint32(buf[8+i*8:], p[1])
	}
	return buf
}

func buildXTargetUpdate(entries ...struct {
	slot    uint32
	spawnID uint32
	name    string
}) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf, 20) // max targets
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(entries)))
	for _, e := range entries {
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], e.slot)
		buf = append(buf, tmp[:]...)
		buf = append(buf, 1) // status
		binary.LittleEndian.PutUint32(tmp[:], e.spawnID)
		buf = append(buf, tmp[:]...)
		buf = append(buf, e.name...)
		buf = append(buf, 0)
	}
	return buf
}

func newPetHarness(t *testing.T) (*host.Host, *hosttest.FakeProbe, *mods.MultiPet) {
	t.Helper()
	p := hosttest.NewFakeProbe()
	h := host.New(p)
	h.SetChatSink(func(string) {})
	m := mods.NewMultiPet()
	require.NoError(t, h.Register(m))
	h.InitializeAll()
	return h, p, m
}

func TestMultiPetListPopulatesXTarget(t *testing.T) {
	as := assert.New(t)
	h, p, m := newPetHarness(t)

	p.Player.Pet = 5
	p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 5, Name: "Gobaner", Master: 1})
	skel := p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 6, Name: "Xalanir", Master: 1})
	h.SpawnAdded(p.Spawns[5])
	h.SpawnAdded(skel)

	pkt := buildPetList([2]uint32{5, 13}, [2]uint32{6, 11})
	as.Equal(types.MessageSuppress, h.IncomingMessage(mods.OpPetList, pkt))

	// Only the non-UI pet is tracked.
	as.Equal([]uint32{6}, m.Pets())

	h.Pulse()
	slot, ok := p.TargetL.Slot(0)
	as.True(ok)
	as.Equal(types.XTargetSpecificNPC, slot.Type)
	as.Equal(types.XTStatusCurrentZone, slot.Status)
	as.Equal(uint32(6), slot.SpawnID)
	as.Equal("Xalanir", slot.Name)
}

func TestMultiPetMasterIDDetection(t *testing.T) {
	as := assert.New(t)
	h, p, m := newPetHarness(t)

	// Owned by the local player (id 1) but never announced via OP_PetList.
	pet := p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 9, Name: "Jibarn", Master: 1})
	other := p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 10, Name: "Kobold", Master: 3})
	h.SpawnAdded(pet)
	h.SpawnAdded(other)

	as.Equal([]uint32{9}, m.Pets())
}

func TestMultiPetServerReclaimReassigns(t *testing.T) {
	as := assert.New(t)
	h, p, m := newPetHarness(t)

	pet := p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 6, Name: "Xalanir", Master: 1})
	h.SpawnAdded(pet)
	h.Pulse()

	slot, _ := p.TargetL.Slot(0)
	as.Equal(uint32(6), slot.SpawnID)

	// Server assigns slot 0 to something else; the update passes through
	// and the pet is released.
	upd := buildXTargetUpdate(struct {
		slot    uint32
		spawnID uint32
		name    string
	}{slot: 0, spawnID: 77, name: "a_hater"})
	as.Equal(types.MessagePass, h.IncomingMessage(mods.OpXTargetResponse, upd))

	p.TargetL.SetSlot(0, types.TargetSlot{
		Type: types.XTargetAutoHater, Status: types.XTStatusCurrentZone, SpawnID: 77, Name: "a_hater",
	})

	h.Pulse()
	as.Equal([]uint32{6}, m.Pets())
	slot1, _ := p.TargetL.Slot(1)
	as.Equal(uint32(6), slot1.SpawnID)
	as.Equal(types.XTargetSpecificNPC, slot1.Type)
}

func TestMultiPetDespawnClearsSlot(t *testing.T) {
	as := assert.New(t)
	h, p, m := newPetHarness(t)

	pet := p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 6, Name: "Xalanir", Master: 1})
	h.SpawnAdded(pet)
	h.Pulse()

	delete(p.Spawns, 6)
	h.SpawnRemoved(pet)

	as.Empty(m.Pets())
	slot, _ := p.TargetL.Slot(0)
	as.Equal(types.XTargetAutoHater, slot.Type)
	as.Equal(uint32(0), slot.SpawnID)
	as.Empty(slot.Name)
}

func TestMultiPetLeavingWorldClearsTracking(t *testing.T) {
	as := assert.New(t)
	h, p, m := newPetHarness(t)

	pet := p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 6, Name: "Xalanir", Master: 1})
	h.SpawnAdded(pet)
	h.Pulse()

	h.GameStateChanged(types.GameStateCharSelect)
	as.Empty(m.Pets())
	slot, _ := p.TargetL.Slot(0)
	as.Equal(uint32(0), slot.SpawnID)
}

func TestMultiPetCycle(t *testing.T) {
	as := assert.New(t)
	h, p, m := newPetHarness(t)

	p.Player.Pet = 5
	ui := p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 5, Name: "Gobaner", Master: 1})
	sec := p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 6, Name: "Xalanir", Master: 1})
	h.SpawnAdded(ui)
	h.SpawnAdded(sec)

	as.Equal([]uint32{6}, m.Pets())

	as.True(h.DispatchCommand(p.Player, "/petcycle"))

	// The window now shows the old secondary; the old UI pet is tracked.
	as.Equal(6, p.Player.Pet)
	as.Equal([]uint32{5}, m.Pets())
}

func TestMultiPetMalformedListStillSuppressed(t *testing.T) {
	as := assert.New(t)
	h, _, m := newPetHarness(t)

	short := buildPetList([2]uint32{6, 11})[:8] // count says 1, body truncated
	as.Equal(types.MessageSuppress, h.IncomingMessage(mods.OpPetList, short))
	as.Empty(m.Pets())
}

func TestMultiPetRebuildFromSpawnManager(t *testing.T) {
	as := assert.New(t)
	h, p, m := newPetHarness(t)

	// Spawns exist in the manager but no add events were seen (loaded
	// mid-session). First pulse rebuilds and finds the pet by MasterID.
	p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 6, Name: "Xalanir", Master: 1})
	p.AddSpawn(&hosttest.FakeSpawn{SpawnID: 7, Name: "Rat", Master: 0})

	h.Pulse()
	as.Equal([]uint32{6}, m.Pets())
}
