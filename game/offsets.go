// Package game reads the client's own data structures: the singleton
// instance pointers, spawn records, the extended target list and the UI
// window tree. Everything here goes through guarded reads; the structures
// belong to the client and can be freed or rebuilt between frames.
package game

// The client image prefers this base. Raw addresses below were taken from
// a client loaded at the preferred base; FixAddr rebases them against the
// actual load address.
const PreferredBase uintptr = 0x400000

// Singleton instance pointers.
const (
	rawInstEverQuest    uintptr = 0x809478
	rawInstLocalPC      uintptr = 0x80A3FC
	rawInstLocalPlayer  uintptr = 0x80A404
	rawInstSpawnManager uintptr = 0x80A3F0
	rawInstWndManager   uintptr = 0x80B258
)

// CEverQuest fields.
const offEverQuestGameState uintptr = 0x5C8

// Client functions the framework calls or detours.
const (
	RawGetSpawnByID        uintptr = 0x5996E0
	RawDspChat             uintptr = 0x52A100
	RawIsSpellcaster       uintptr = 0x443F50
	RawIsSpellcaster2      uintptr = 0x4288E0
	RawIsSpellcaster3      uintptr = 0x59FB90
	RawCanStartMemming     uintptr = 0x75BD40
	RawGetSpellLevelNeeded uintptr = 0x4A53A0
	RawCanUseItem          uintptr = 0x4C1D20
	RawMaxMana             uintptr = 0x581E60
	RawCurMana             uintptr = 0x4442E0
	RawMaxEndurance        uintptr = 0x582020
	RawGetGaugeValueFromEQ uintptr = 0x762410
	RawGetLabelFromEQ      uintptr = 0x763640
)

// Client main-loop functions the event bridge detours.
const (
	RawProcessGameEvents  uintptr = 0x5E4E20
	RawSetGameState       uintptr = 0x5DD4B0
	RawAddSpawn           uintptr = 0x59A2D0
	RawRemoveSpawn        uintptr = 0x59A4F0
	RawHandleWorldMessage uintptr = 0x4E1E30
	RawInterpretCmd       uintptr = 0x5DB910
)

// Build stamp strings compiled into the client image.
const (
	RawVersionDate uintptr = 0x7F8DD8
	RawVersionTime uintptr = 0x7F8DE4
)

// CombatAbilities gate: JE that skips the window open for non-melee.
const (
	RawCombatAbilitiesJE uintptr = 0x65A087 // PreferredBase + 0x25A087
)

// The client's global exception filter, wrapped around its main loop.
const RawExceptionFilter uintptr = 0x8E3338

// The client's memory integrity checks.
const (
	RawMemChecker0 uintptr = 0x5C2AC0
	RawMemChecker1 uintptr = 0x8A9C10
	RawMemChecker2 uintptr = 0x8A9CF0
	RawMemChecker3 uintptr = 0x8A9E00
)

// UI class vftables, used to classify window tree nodes.
const (
	RawVftableCXWnd      uintptr = 0xA19C74
	RawVftableCGaugeWnd  uintptr = 0x9E87A8
	RawVftableCButtonWnd uintptr = 0xA1B41C
)

// EQWorldData and its zone table.
const (
	rawInstWorldData  uintptr = 0x809DF4
	offWorldZoneArray uintptr = 0x20
	zoneArrayLen              = 1000
)

// CRaces model loader.
const (
	rawInstRaceManager uintptr = 0x80A3E8
	RawAddRaceModel    uintptr = 0x4F2D30
)

// PlayerClient (spawn record) fields.
const (
	offSpawnName     uintptr = 0x0A4 // char[64]
	offSpawnID       uintptr = 0x148
	offSpawnPetID    uintptr = 0x2B4
	offSpawnMasterID uintptr = 0x38C
	offSpawnNext     uintptr = 0x04 // list node link
	spawnNameLen             = 64
)

// PlayerManagerClient fields.
const offMgrNextID uintptr = 0x04

// PcClient and the extended target list.
const (
	offPCXTargetList uintptr = 0x31B8
	offXTLLength     uintptr = 0x04
	offXTLArray      uintptr = 0x08

	xtargetSlotSize uintptr = 0x4C
	offXTSType      uintptr = 0x00
	offXTSStatus    uintptr = 0x04
	offXTSSpawnID   uintptr = 0x08
	offXTSName      uintptr = 0x0C
	xtargetNameLen          = 0x40
)

// CXWnd fields.
const (
	offWndVtable      uintptr = 0x00
	offWndNextSibling uintptr = 0x08
	offWndFirstChild  uintptr = 0x10
	offWndLocation    uintptr = 0x60 // {left, top, right, bottom} int32
	offWndXMLIndex    uintptr = 0xD8
	offWndWindowText  uintptr = 0x1A8 // CXStr
	offWndSidlText    uintptr = 0x1DC // CXStr
)

// CXStr representation block.
const (
	offCXStrRepLen  uintptr = 0x08
	offCXStrRepUTF8 uintptr = 0x14
	cxstrMaxLen             = 256
)

// CXWndManager fields.
const (
	offWndMgrCount uintptr = 0x04
	offWndMgrArray uintptr = 0x08
)

// FixAddr rebases a preferred-base address onto the actual load base.
func FixAddr(base, raw uintptr) uintptr {
	return base + (raw - PreferredBase)
}
