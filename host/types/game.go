package types

// Game state integers as the client reports them. Values other than these
// are surfaced verbatim; only GameStateInGame carries meaning for the
// framework itself.
const (
	GameStateCharSelect = 1
	GameStateInGame     = 5
)

// Spawn is a non-owning view of a client-owned spawn record. The underlying
// pointer is valid only while the client keeps the record alive; mods must
// drop cached Spawns when the record is signalled removed or the client
// leaves the in-world state.
type Spawn interface {
	// Raw returns the client-side address of the record, 0 for fakes.
	Raw() uintptr

	ID() uint32
	SpawnName() string

	// MasterID is the spawn id of this spawn's owner, 0 when unowned.
	MasterID() uint32

	// PetID is the spawn id shown in the client's pet window, valid on the
	// local player record only.
	PetID() int
	SetPetID(id int)
}

// TargetSlot is one entry of the client's extended-target (XTarget) array.
type TargetSlot struct {
	Type    uint32
	Status  uint32
	SpawnID uint32
	Name    string
}

// XTarget slot type / status values.
const (
	XTargetEmpty       uint32 = 0
	XTargetAutoHater   uint32 = 1
	XTargetSpecificNPC uint32 = 3

	XTStatusEmpty       uint32 = 0
	XTStatusCurrentZone uint32 = 1
)

// TargetList is the local character's extended-target array.
type TargetList interface {
	SlotCount() int
	Slot(i int) (TargetSlot, bool)
	SetSlot(i int, s TargetSlot) bool
}

// Window is a non-owning view of one client UI window (CXWnd). Accessors
// tolerate stale or mid-construction pointers and return zero values on
// unreadable memory.
type Window interface {
	Raw() uintptr
	FirstChild() Window
	NextSibling() Window

	// SidlName is the XML screen-piece name (CSidlScreenWnd), "" for plain
	// widgets.
	SidlName() string
	WindowText() string

	// Rect returns left, top, right, bottom in screen coordinates.
	Rect() (int32, int32, int32, int32)

	// TypeName identifies the widget by vtable ("CGaugeWnd", "CButtonWnd",
	// "CXWnd" or "vt=0x......" when unknown).
	TypeName() string
}

// GameProbe resolves the client singletons mods care about. Accessors never
// block and return nil/zero when the singleton is unresolved; nothing read
// through the probe may be cached across a transition out of the in-world
// state.
type GameProbe interface {
	// BaseAddress is the client module base (0 when unresolved).
	BaseAddress() uintptr

	GameState() int

	// LocalPlayer is the local character's spawn record.
	LocalPlayer() Spawn

	// Targets is the local character's XTarget list, nil when out of world.
	Targets() TargetList

	// SpawnByID resolves a spawn record through the client's spawn manager.
	SpawnByID(id uint32) Spawn

	// NextSpawnID is the upper bound the spawn manager will assign next,
	// 0 when unresolved.
	NextSpawnID() uint32

	// Windows walks the window manager's top-level list.
	Windows() []Window
}
