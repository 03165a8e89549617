package mods

import (
	"encoding/binary"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/thjmod/edgeproxy/host/types"
)

// Opcodes MultiPet cares about. OP_PetList is a custom server broadcast
// carrying every pet's spawn id; OP_XTargetResponse is the stock XTarget
// update, observed only.
const (
	OpPetList         uint32 = 0x1339
	OpXTargetResponse uint32 = 0x4D59
)

// petListEntrySize is one {spawnID uint32, classID uint32} pair.
const petListEntrySize = 8

// spawnScanCap bounds the spawn manager walk when NextID looks bogus.
const spawnScanCap = 10000

// trackedPet is one secondary pet (everything but the pet-window pet).
type trackedPet struct {
	spawnID uint32
	classID uint32
	name    string
	spawn   types.Spawn
	xtSlot  int
}

// MultiPet tracks every simultaneous pet a multiclass character controls.
// The stock client models exactly one pet, so secondary pets are invisible:
// no HP bar, no window. Tracked pets are written into free AutoHater slots
// of the extended target window, which gives each one a live HP bar, and
// /petcycle rotates which pet the stock pet window shows.
//
// Pets are identified two ways: authoritatively by OP_PetList, and by
// scanning spawn records whose MasterID is the local player (covers pets
// summoned before the list arrives).
type MultiPet struct {
	types.NopMod

	host types.HostLike
	log  *zap.SugaredLogger

	spawnMap     map[uint32]types.Spawn
	pets         []*trackedPet
	localSpawnID uint32
	needsResolve bool
	rescan       rate.Sometimes
}

func NewMultiPet() *MultiPet {
	return &MultiPet{
		spawnMap: make(map[uint32]types.Spawn),
		rescan:   rate.Sometimes{Interval: 2 * time.Second},
	}
}

func (m *MultiPet) Name() string { return "multi_pet" }

func (m *MultiPet) Initialize(h types.HostLike) error {
	m.host = h
	m.log = zap.S().Named("multi_pet")

	if err := h.AddCommand("pets", m.cmdPets); err != nil {
		return err
	}
	if err := h.AddCommand("petcycle", m.cmdPetCycle); err != nil {
		return err
	}
	if err := h.AddCommand("petdebug", m.cmdPetDebug); err != nil {
		return err
	}

	m.log.Infof("listening for OP_PetList (%#04x)", OpPetList)
	return nil
}

func (m *MultiPet) Shutdown() {
	m.clearAll()
	m.host.RemoveCommand("pets")
	m.host.RemoveCommand("petcycle")
	m.host.RemoveCommand("petdebug")
}

func (m *MultiPet) OnGameStateChange(state int) {
	if state != types.GameStateInGame {
		m.log.Infof("game state %d, clearing tracking", state)
		m.clearAll()
	}
}

func (m *MultiPet) OnAddSpawn(sp types.Spawn) {
	if sp == nil {
		return
	}
	id := sp.ID()
	if id == 0 {
		return
	}
	m.spawnMap[id] = sp

	m.tryTrackPet(sp)
	if m.needsResolve {
		m.resolvePetSpawns()
	}
}

func (m *MultiPet) OnRemoveSpawn(sp types.Spawn) {
	if sp == nil {
		return
	}
	id := sp.ID()
	delete(m.spawnMap, id)

	for i, pet := range m.pets {
		if pet.spawnID != id {
			continue
		}
		m.log.Infof("pet %q (id %d) despawned", pet.name, pet.spawnID)
		if pet.xtSlot >= 0 {
			m.clearTargetSlot(pet.xtSlot)
		}
		m.pets = append(m.pets[:i], m.pets[i+1:]...)
		return
	}
}

func (m *MultiPet) OnPulse() {
	probe := m.host.Game()
	if probe.GameState() != types.GameStateInGame {
		return
	}
	local := probe.LocalPlayer()
	if local == nil {
		return
	}

	// A changed local spawn id means the character zoned; every cached
	// record is stale.
	localID := local.ID()
	if m.localSpawnID != 0 && m.localSpawnID != localID {
		m.log.Infof("local spawn id changed (%d -> %d), clearing", m.localSpawnID, localID)
		m.clearAll()
	}
	m.localSpawnID = localID

	// Empty map means we loaded mid-session or just zoned in; rebuild from
	// the spawn manager.
	if len(m.spawnMap) == 0 {
		m.rebuildSpawnMap()
		m.scanForPets()
	}

	// MasterID is sometimes set after the add-spawn event fires.
	m.rescan.Do(m.scanForPets)

	m.populateTargetSlots()
}

func (m *MultiPet) OnIncomingMessage(opcode uint32, data []byte) types.MessageAction {
	switch opcode {
	case OpPetList:
		return m.handlePetList(data)
	case OpXTargetResponse:
		m.observeXTargetUpdate(data)
	}
	return types.MessagePass
}

// handlePetList replaces the tracked set with the server's authoritative
// list. The packet is [count uint32] then count pairs of
// [spawnID uint32][classID uint32]. The opcode is custom, so it is always
// suppressed, even when malformed.
func (m *MultiPet) handlePetList(data []byte) types.MessageAction {
	if len(data) < 4 {
		return types.MessageSuppress
	}
	count := binary.LittleEndian.Uint32(data)
	if uint64(len(data)) < 4+uint64(count)*petListEntrySize {
		m.log.Warnf("pet list size mismatch: count=%d size=%d", count, len(data))
		return types.MessageSuppress
	}
	m.log.Infof("pet list: %d pet(s)", count)

	for _, pet := range m.pets {
		if pet.xtSlot >= 0 {
			m.clearTargetSlot(pet.xtSlot)
		}
	}
	m.pets = nil

	uiPetID := m.uiPetID()

	for i := uint32(0); i < count; i++ {
		off := 4 + int(i)*petListEntrySize
		spawnID := binary.LittleEndian.Uint32(data[off:])
		classID := binary.LittleEndian.Uint32(data[off+4:])

		// The pet window already shows the UI pet.
		if int(spawnID) == uiPetID {
			continue
		}

		pet := &trackedPet{spawnID: spawnID, classID: classID, xtSlot: -1}
		if sp, ok := m.spawnMap[spawnID]; ok {
			pet.spawn = sp
			pet.name = sp.SpawnName()
			m.log.Infof("tracking pet %q (id %d, %s)", pet.name, spawnID, petClassName(classID))
		} else {
			m.log.Infof("tracking pet id %d (%s), spawn not yet seen", spawnID, petClassName(classID))
		}
		m.pets = append(m.pets, pet)
	}

	m.needsResolve = true
	m.resolvePetSpawns()
	return types.MessageSuppress
}

// observeXTargetUpdate releases any slot the server reassigns so the next
// pulse can find the pet a new home. The packet passes through untouched.
func (m *MultiPet) observeXTargetUpdate(data []byte) {
	if len(data) < 8 {
		return
	}
	count := binary.LittleEndian.Uint32(data[4:])
	off := 8
	for i := uint32(0); i < count; i++ {
		if off+9 > len(data) {
			return
		}
		slot := binary.LittleEndian.Uint32(data[off:])
		off += 5 // slot index + status byte
		off += 4 // spawn id

		// Skip the NUL-terminated name.
		for off < len(data) && data[off] != 0 {
			off++
		}
		if off < len(data) {
			off++
		}

		for _, pet := range m.pets {
			if pet.xtSlot == int(slot) {
				m.log.Infof("server reclaimed slot %d, will reassign pet %q", slot, pet.name)
				pet.xtSlot = -1
				break
			}
		}
	}
}

// tryTrackPet tracks a freshly added spawn whose MasterID is the local
// player.
func (m *MultiPet) tryTrackPet(sp types.Spawn) {
	local := m.host.Game().LocalPlayer()
	if local == nil {
		return
	}
	localID := local.ID()
	if sp.MasterID() != localID || localID == 0 {
		return
	}
	id := sp.ID()
	if int(id) == local.PetID() {
		return
	}
	for _, pet := range m.pets {
		if pet.spawnID == id {
			return
		}
	}
	pet := &trackedPet{spawnID: id, spawn: sp, name: sp.SpawnName(), xtSlot: -1}
	m.pets = append(m.pets, pet)
	m.log.Infof("detected pet %q (id %d) via MasterID", pet.name, id)
}

func (m *MultiPet) resolvePetSpawns() {
	all := true
	for _, pet := range m.pets {
		if pet.spawn != nil {
			continue
		}
		sp, ok := m.spawnMap[pet.spawnID]
		if !ok {
			all = false
			continue
		}
		pet.spawn = sp
		pet.name = sp.SpawnName()
		m.log.Infof("resolved pet %q (id %d)", pet.name, pet.spawnID)
	}
	if all {
		m.needsResolve = false
	}
}

// rebuildSpawnMap walks the spawn manager by id. NextSpawnID bounds the
// walk; a zero or absurd value falls back to a fixed range.
func (m *MultiPet) rebuildSpawnMap() {
	probe := m.host.Game()
	next := probe.NextSpawnID()
	if next == 0 || next > spawnScanCap {
		next = 1000
	}
	n := 0
	for id := uint32(1); id < next; id++ {
		if sp := probe.SpawnByID(id); sp != nil {
			m.spawnMap[id] = sp
			n++
		}
	}
	m.log.Infof("rebuilt spawn map: %d spawns (scanned 1-%d)", n, next-1)
}

func (m *MultiPet) scanForPets() {
	local := m.host.Game().LocalPlayer()
	if local == nil {
		return
	}
	localID := local.ID()
	uiPetID := local.PetID()

	for id, sp := range m.spawnMap {
		if sp == nil || sp.MasterID() != localID || localID == 0 {
			continue
		}
		if int(id) == uiPetID {
			continue
		}
		tracked := false
		for _, pet := range m.pets {
			if pet.spawnID == id {
				tracked = true
				break
			}
		}
		if tracked {
			continue
		}
		pet := &trackedPet{spawnID: id, spawn: sp, name: sp.SpawnName(), xtSlot: -1}
		m.pets = append(m.pets, pet)
		m.log.Infof("detected pet %q (id %d) via scan", pet.name, id)
	}
}

// populateTargetSlots gives each resolved secondary pet a free XTarget
// slot. A slot is free when it is empty or an AutoHater slot with no
// current target; anything the player or server assigned stays untouched.
func (m *MultiPet) populateTargetSlots() {
	targets := m.host.Game().Targets()
	if targets == nil {
		return
	}
	n := targets.SlotCount()
	if n <= 0 {
		return
	}

	// Drop claims the server or UI overwrote.
	for _, pet := range m.pets {
		if pet.xtSlot < 0 {
			continue
		}
		slot, ok := targets.Slot(pet.xtSlot)
		if !ok || slot.Type != types.XTargetSpecificNPC || slot.SpawnID != pet.spawnID {
			pet.xtSlot = -1
		}
	}

	for _, pet := range m.pets {
		if pet.xtSlot >= 0 || pet.spawn == nil {
			continue
		}
		for i := 0; i < n; i++ {
			slot, ok := targets.Slot(i)
			if !ok {
				continue
			}
			free := slot.SpawnID == 0 &&
				(slot.Type == types.XTargetEmpty || slot.Type == types.XTargetAutoHater)
			if !free || m.slotClaimed(i) {
				continue
			}
			targets.SetSlot(i, types.TargetSlot{
				Type:    types.XTargetSpecificNPC,
				Status:  types.XTStatusCurrentZone,
				SpawnID: pet.spawnID,
				Name:    pet.name,
			})
			pet.xtSlot = i
			m.log.Infof("assigned pet %q (id %d) to slot %d", pet.name, pet.spawnID, i)
			break
		}
	}
}

func (m *MultiPet) slotClaimed(i int) bool {
	return lo.SomeBy(m.pets, func(pet *trackedPet) bool { return pet.xtSlot == i })
}

// clearTargetSlot restores a slot to the default AutoHater-with-no-target
// state.
func (m *MultiPet) clearTargetSlot(i int) {
	targets := m.host.Game().Targets()
	if targets == nil {
		return
	}
	targets.SetSlot(i, types.TargetSlot{
		Type:   types.XTargetAutoHater,
		Status: types.XTStatusEmpty,
	})
}

func (m *MultiPet) clearAll() {
	for _, pet := range m.pets {
		if pet.xtSlot >= 0 {
			m.clearTargetSlot(pet.xtSlot)
		}
	}
	m.pets = nil
	m.spawnMap = make(map[uint32]types.Spawn)
	m.localSpawnID = 0
	m.needsResolve = false
}

// Pets returns the tracked secondary pet spawn ids, for cross-mod use.
func (m *MultiPet) Pets() []uint32 {
	return lo.Map(m.pets, func(pet *trackedPet, _ int) uint32 { return pet.spawnID })
}

func (m *MultiPet) uiPetID() int {
	if local := m.host.Game().LocalPlayer(); local != nil {
		return local.PetID()
	}
	return 0
}

func (m *MultiPet) cmdPets(player types.Spawn, _ string) {
	if player == nil {
		m.host.WriteChat("No pets found.")
		return
	}
	m.host.WriteChat("--- Your Pets ---")
	any := false

	if uiPet := player.PetID(); uiPet > 0 {
		if sp, ok := m.spawnMap[uint32(uiPet)]; ok {
			m.host.WriteChat("  [UI Pet] %s - ID %d", sp.SpawnName(), uiPet)
		} else {
			m.host.WriteChat("  [UI Pet] (not resolved) - ID %d", uiPet)
		}
		any = true
	}
	for _, pet := range m.pets {
		cls := petClassName(pet.classID)
		switch {
		case pet.xtSlot >= 0:
			m.host.WriteChat("  %s - ID %d (%s) [XTarget slot %d]", pet.name, pet.spawnID, cls, pet.xtSlot)
		case pet.spawn != nil:
			m.host.WriteChat("  %s - ID %d (%s) [no XTarget slot]", pet.name, pet.spawnID, cls)
		default:
			m.host.WriteChat("  (unresolved) - ID %d (%s)", pet.spawnID, cls)
		}
		any = true
	}
	if !any {
		m.host.WriteChat("  No pets found.")
	}
	m.host.WriteChat("-----------------")
}

// cmdPetCycle rotates which pet the stock pet window follows: the current
// UI pet joins the secondary set and the next pet in order becomes the
// window's pet.
func (m *MultiPet) cmdPetCycle(player types.Spawn, _ string) {
	if player == nil {
		m.host.WriteChat("MultiPet: Not in game.")
		return
	}
	uiPetID := player.PetID()

	var ids []uint32
	if uiPetID > 0 {
		ids = append(ids, uint32(uiPetID))
	}
	for _, pet := range m.pets {
		ids = append(ids, pet.spawnID)
	}
	if len(ids) <= 1 {
		m.host.WriteChat("MultiPet: No other pets to cycle to.")
		return
	}

	cur := -1
	for i, id := range ids {
		if uiPetID > 0 && id == uint32(uiPetID) {
			cur = i
			break
		}
	}
	next := ids[(cur+1)%len(ids)]

	// Demote the old UI pet to a tracked secondary.
	if uiPetID > 0 && !m.isTracked(uint32(uiPetID)) {
		pet := &trackedPet{spawnID: uint32(uiPetID), xtSlot: -1}
		if sp, ok := m.spawnMap[pet.spawnID]; ok {
			pet.spawn = sp
			pet.name = sp.SpawnName()
		}
		m.pets = append(m.pets, pet)
	}

	// Promote the new UI pet out of tracking.
	for i, pet := range m.pets {
		if pet.spawnID == next {
			if pet.xtSlot >= 0 {
				m.clearTargetSlot(pet.xtSlot)
			}
			m.pets = append(m.pets[:i], m.pets[i+1:]...)
			break
		}
	}

	player.SetPetID(int(next))

	name := "Unknown"
	if sp, ok := m.spawnMap[next]; ok {
		name = sp.SpawnName()
	}
	m.host.WriteChat("MultiPet: Pet window now showing '%s' (ID %d)", name, next)
}

func (m *MultiPet) isTracked(id uint32) bool {
	for _, pet := range m.pets {
		if pet.spawnID == id {
			return true
		}
	}
	return false
}

func (m *MultiPet) cmdPetDebug(player types.Spawn, _ string) {
	if player == nil {
		m.host.WriteChat("MultiPet Debug: Not in game.")
		return
	}
	localID := player.ID()
	uiPetID := player.PetID()

	m.host.WriteChat("--- MultiPet Debug ---")
	m.host.WriteChat("  Local player: ID %d, PetID %d", localID, uiPetID)
	m.host.WriteChat("  Spawn map size: %d", len(m.spawnMap))
	m.host.WriteChat("  Tracked secondary pets: %d", len(m.pets))
	m.host.WriteChat("  Needs resolve: %v", m.needsResolve)

	for _, pet := range m.pets {
		name := pet.name
		if name == "" {
			name = "(unresolved)"
		}
		m.host.WriteChat("    Pet '%s' ID %d class %d/%s spawn=%v xtSlot=%d",
			name, pet.spawnID, pet.classID, petClassName(pet.classID),
			pet.spawn != nil, pet.xtSlot)
	}

	targets := m.host.Game().Targets()
	if targets == nil {
		m.host.WriteChat("  XTarget list: NULL")
	} else {
		n := targets.SlotCount()
		m.host.WriteChat("  --- XTarget slots (%d total) ---", n)
		for i := 0; i < n; i++ {
			slot, ok := targets.Slot(i)
			if !ok {
				continue
			}
			if slot.Type == types.XTargetAutoHater && slot.SpawnID == 0 {
				continue
			}
			m.host.WriteChat("    [%d] type=%d status=%d spawnID=%d name='%s'",
				i, slot.Type, slot.Status, slot.SpawnID, slot.Name)
		}
	}

	m.host.WriteChat("  NextID=%d, SpawnMap size=%d", m.host.Game().NextSpawnID(), len(m.spawnMap))
	for id, sp := range m.spawnMap {
		if sp == nil || sp.MasterID() != localID {
			continue
		}
		kind := "(secondary)"
		if int(id) == uiPetID {
			kind = "(UI pet)"
		}
		m.host.WriteChat("    ID=%d '%s' master=%d %s", id, sp.SpawnName(), sp.MasterID(), kind)
	}
	m.host.WriteChat("----------------------")
}

// petClassName maps a stock 1-based class id to its display name.
func petClassName(classID uint32) string {
	if classID >= 1 && classID <= 16 {
		return classNames[classID-1]
	}
	return "Unknown"
}
