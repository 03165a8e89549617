package host

/*
// Detours over the client's main-loop entry points. Each one forwards to
// an exported Go callback and then (except for suppressed messages) falls
// through to the trampoline, so the client keeps running normally.

typedef int (__fastcall *gameevents_t)(void* self, void* edx);
typedef void (__fastcall *setstate_t)(void* self, void* edx, int state);
typedef void (__fastcall *spawnfn_t)(void* mgr, void* edx, void* spawn);
typedef int (__fastcall *worldmsg_t)(void* conn, void* edx,
	unsigned long opcode, void* buffer, unsigned long size);
typedef void (__fastcall *interpretcmd_t)(void* self, void* edx,
	void* player, const char* line);

gameevents_t   edge_game_events_orig;
setstate_t     edge_set_state_orig;
spawnfn_t      edge_add_spawn_orig;
spawnfn_t      edge_remove_spawn_orig;
worldmsg_t     edge_world_msg_orig;
interpretcmd_t edge_interpret_cmd_orig;

extern void edgeBridgePulse(void);
extern void edgeBridgeGameState(int state);
extern void edgeBridgeAddSpawn(void* spawn);
extern void edgeBridgeRemoveSpawn(void* spawn);
extern int edgeBridgeMessage(unsigned long opcode, void* buffer, unsigned long size);
extern int edgeBridgeCommand(void* player, char* line);

static int __fastcall edge_game_events_detour(void* self, void* edx) {
	int r = edge_game_events_orig(self, edx);
	edgeBridgePulse();
	return r;
}

static void __fastcall edge_set_state_detour(void* self, void* edx, int state) {
	edge_set_state_orig(self, edx, state);
	edgeBridgeGameState(state);
}

static void __fastcall edge_add_spawn_detour(void* mgr, void* edx, void* spawn) {
	edge_add_spawn_orig(mgr, edx, spawn);
	edgeBridgeAddSpawn(spawn);
}

// Removal is announced before the client frees the spawn so mods can still
// read it.
static void __fastcall edge_remove_spawn_detour(void* mgr, void* edx, void* spawn) {
	edgeBridgeRemoveSpawn(spawn);
	edge_remove_spawn_orig(mgr, edx, spawn);
}

static int __fastcall edge_world_msg_detour(void* conn, void* edx,
	unsigned long opcode, void* buffer, unsigned long size) {
	if (!edgeBridgeMessage(opcode, buffer, size))
		return 0;
	return edge_world_msg_orig(conn, edx, opcode, buffer, size);
}

// A line consumed by a registered slash command never reaches the
// client's own dispatcher.
static void __fastcall edge_interpret_cmd_detour(void* self, void* edx,
	void* player, const char* line) {
	if (edgeBridgeCommand(player, (char*)line))
		return;
	edge_interpret_cmd_orig(self, edx, player, line);
}

static void* p_edge_game_events_detour(void)  { return (void*)&edge_game_events_detour; }
static void* p_edge_set_state_detour(void)    { return (void*)&edge_set_state_detour; }
static void* p_edge_add_spawn_detour(void)    { return (void*)&edge_add_spawn_detour; }
static void* p_edge_remove_spawn_detour(void) { return (void*)&edge_remove_spawn_detour; }
static void* p_edge_world_msg_detour(void)    { return (void*)&edge_world_msg_detour; }
static void* p_edge_interpret_cmd_detour(void) { return (void*)&edge_interpret_cmd_detour; }
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/thjmod/edgeproxy/game"
	"github.com/thjmod/edgeproxy/hooks"
)

// bridgeHost routes the C detours back into the fan-out. One client
// process, one host. The exported callbacks live in
// bridge_export_windows.go; cgo does not allow //export next to preamble
// definitions.
var bridgeHost *Host

var bridgeHooks = []string{
	"ProcessGameEvents", "SetGameState", "AddSpawn", "RemoveSpawn",
	"HandleWorldMessage", "InterpretCmd",
}

// InstallBridge detours the client's frame, state, spawn, network and
// command entry points into the host fan-out. A detour that fails to install is logged
// and skipped; the remaining ones still go in.
func InstallBridge(h *Host, mgr *hooks.Manager, base uintptr) {
	bridgeHost = h
	log := zap.S().Named("bridge")
	fix := func(raw uintptr) uintptr { return game.FixAddr(base, raw) }

	install := func(name string, target, detour uintptr, origSlot unsafe.Pointer) {
		tramp, err := mgr.Install(name, target, detour)
		if err != nil {
			log.Warnf("install %s: %v", name, err)
			return
		}
		*(*uintptr)(origSlot) = tramp
	}

	install("ProcessGameEvents", fix(game.RawProcessGameEvents),
		uintptr(C.p_edge_game_events_detour()), unsafe.Pointer(&C.edge_game_events_orig))
	install("SetGameState", fix(game.RawSetGameState),
		uintptr(C.p_edge_set_state_detour()), unsafe.Pointer(&C.edge_set_state_orig))
	install("AddSpawn", fix(game.RawAddSpawn),
		uintptr(C.p_edge_add_spawn_detour()), unsafe.Pointer(&C.edge_add_spawn_orig))
	install("RemoveSpawn", fix(game.RawRemoveSpawn),
		uintptr(C.p_edge_remove_spawn_detour()), unsafe.Pointer(&C.edge_remove_spawn_orig))
	install("HandleWorldMessage", fix(game.RawHandleWorldMessage),
		uintptr(C.p_edge_world_msg_detour()), unsafe.Pointer(&C.edge_world_msg_orig))
	install("InterpretCmd", fix(game.RawInterpretCmd),
		uintptr(C.p_edge_interpret_cmd_detour()), unsafe.Pointer(&C.edge_interpret_cmd_orig))
}

// RemoveBridge pulls the bridge detours and detaches the host. Hooks that
// never installed are skipped quietly.
func RemoveBridge(mgr *hooks.Manager) {
	for _, name := range bridgeHooks {
		_ = mgr.Remove(name)
	}
	bridgeHost = nil
}
