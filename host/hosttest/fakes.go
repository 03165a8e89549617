// Package hosttest provides in-memory fakes for the game probe surface so
// mod logic can be tested without a client process.
package hosttest

import (
	"github.com/samber/lo"

	"github.com/thjmod/edgeproxy/host/types"
)

// FakeSpawn is a settable types.Spawn.
type FakeSpawn struct {
	RawAddr uintptr
	SpawnID uint32
	Name    string
	Master  uint32
	Pet     int
}

func (s *FakeSpawn) Raw() uintptr      { return s.RawAddr }
func (s *FakeSpawn) ID() uint32        { return s.SpawnID }
func (s *FakeSpawn) SpawnName() string { return s.Name }
func (s *FakeSpawn) MasterID() uint32  { return s.Master }
func (s *FakeSpawn) PetID() int        { return s.Pet }
func (s *FakeSpawn) SetPetID(id int)   { s.Pet = id }

// FakeTargetList is a fixed-size extended target window.
type FakeTargetList struct {
	Slots []types.TargetSlot
}

func NewFakeTargetList(n int) *FakeTargetList {
	return &FakeTargetList{Slots: make([]types.TargetSlot, n)}
}

func (l *FakeTargetList) SlotCount() int { return len(l.Slots) }

func (l *FakeTargetList) Slot(i int) (types.TargetSlot, bool) {
	if i < 0 || i >= len(l.Slots) {
		return types.TargetSlot{}, false
	}
	return l.Slots[i], true
}

func (l *FakeTargetList) SetSlot(i int, s types.TargetSlot) bool {
	if i < 0 || i >= len(l.Slots) {
		return false
	}
	l.Slots[i] = s
	return true
}

// FakeWindow is a node in a fake UI tree.
type FakeWindow struct {
	Addr       uintptr
	Sidl       string
	Text       string
	Type       string
	L, T, R, B int32
	Children   []*FakeWindow
	sibling    *FakeWindow
}

func (w *FakeWindow) Raw() uintptr       { return w.Addr }
func (w *FakeWindow) SidlName() string   { return w.Sidl }
func (w *FakeWindow) WindowText() string { return w.Text }
func (w *FakeWindow) TypeName() string   { return w.Type }

func (w *FakeWindow) Rect() (int32, int32, int32, int32) { return w.L, w.T, w.R, w.B }

func (w *FakeWindow) FirstChild() types.Window {
	if len(w.Children) == 0 {
		return nil
	}
	for i := 0; i < len(w.Children)-1; i++ {
		w.Children[i].sibling = w.Children[i+1]
	}
	return w.Children[0]
}

func (w *FakeWindow) NextSibling() types.Window {
	if w.sibling == nil {
		return nil
	}
	return w.sibling
}

// FakeProbe is a settable types.GameProbe.
type FakeProbe struct {
	Base    uintptr
	State   int
	Player  *FakeSpawn
	TargetL *FakeTargetList
	Spawns  map[uint32]*FakeSpawn
	Wnds    []*FakeWindow
}

func NewFakeProbe() *FakeProbe {
	return &FakeProbe{
		Base:    0x400000,
		State:   types.GameStateInGame,
		Player:  &FakeSpawn{SpawnID: 1, Name: "Testchar"},
		TargetL: NewFakeTargetList(20),
		Spawns:  map[uint32]*FakeSpawn{},
	}
}

func (p *FakeProbe) BaseAddress() uintptr { return p.Base }
func (p *FakeProbe) GameState() int       { return p.State }

func (p *FakeProbe) LocalPlayer() types.Spawn {
	if p.Player == nil {
		return nil
	}
	return p.Player
}

func (p *FakeProbe) Targets() types.TargetList { return p.TargetL }

func (p *FakeProbe) SpawnByID(id uint32) types.Spawn {
	sp, ok := p.Spawns[id]
	if !ok {
		return nil
	}
	return sp
}

// NextSpawnID hands out an ID above every fake spawn currently present.
func (p *FakeProbe) NextSpawnID() uint32 {
	max := uint32(0)
	for id := range p.Spawns {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func (p *FakeProbe) Windows() []types.Window {
	return lo.Map(p.Wnds, func(w *FakeWindow, _ int) types.Window { return w })
}

// AddSpawn registers a fake spawn under its ID.
func (p *FakeProbe) AddSpawn(sp *FakeSpawn) *FakeSpawn {
	p.Spawns[sp.SpawnID] = sp
	return sp
}
