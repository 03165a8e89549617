package mods

/*
// Detours for the stat functions. The original slots are filled with the
// trampoline addresses after install; calls flow client -> detour ->
// trampoline -> original body.

typedef int (__fastcall *statfn_t)(void* self, void* edx, int capAtMax);
typedef int (__cdecl *gaugefn_t)(int gaugeType, void* str, int* enabled, unsigned long* color);
typedef int (__cdecl *labelfn_t)(int labelId, void* str, int* enabled, unsigned long* color);

statfn_t edge_max_mana_orig;
statfn_t edge_cur_mana_orig;
statfn_t edge_max_endur_orig;
gaugefn_t edge_gauge_orig;
labelfn_t edge_label_orig;

extern int edgeResolveStat(int stat, int original);

static int __fastcall edge_max_mana_detour(void* self, void* edx, int cap) {
	return edgeResolveStat(0, edge_max_mana_orig(self, edx, cap));
}
static int __fastcall edge_cur_mana_detour(void* self, void* edx, int cap) {
	return edgeResolveStat(1, edge_cur_mana_orig(self, edx, cap));
}
static int __fastcall edge_max_endur_detour(void* self, void* edx, int cap) {
	return edgeResolveStat(2, edge_max_endur_orig(self, edx, cap));
}

// Gauge ids the client UI asks for.
#define GAUGE_MANA 1
#define GAUGE_STAMINA 2

static int __cdecl edge_gauge_detour(int gaugeType, void* str, int* enabled, unsigned long* color) {
	int original = edge_gauge_orig(gaugeType, str, enabled, color);
	if (gaugeType == GAUGE_MANA)
		return edgeResolveStat(1, original);
	if (gaugeType == GAUGE_STAMINA)
		return edgeResolveStat(3, original);
	return original;
}

// Label overrides are handled by the gauge hook; this detour only keeps
// the label path observable.
static int __cdecl edge_label_detour(int labelId, void* str, int* enabled, unsigned long* color) {
	return edge_label_orig(labelId, str, enabled, color);
}

static void* p_edge_max_mana_detour(void)  { return (void*)&edge_max_mana_detour; }
static void* p_edge_cur_mana_detour(void)  { return (void*)&edge_cur_mana_detour; }
static void* p_edge_max_endur_detour(void) { return (void*)&edge_max_endur_detour; }
static void* p_edge_gauge_detour(void)     { return (void*)&edge_gauge_detour; }
static void* p_edge_label_detour(void)     { return (void*)&edge_label_detour; }
*/
import "C"

import (
	"unsafe"

	"github.com/thjmod/edgeproxy/game"
)

// statsInstance routes the C detours back to the mod. A single client
// process hosts a single StatsOverride. The exported callback lives in
// stats_override_export_windows.go; cgo does not allow //export next to
// preamble definitions.
var statsInstance *StatsOverride

func (m *StatsOverride) install() {
	statsInstance = m
	fix := func(raw uintptr) uintptr { return game.FixAddr(m.base, raw) }

	m.hookWithOrig("Max_Mana", fix(game.RawMaxMana),
		uintptr(C.p_edge_max_mana_detour()), unsafe.Pointer(&C.edge_max_mana_orig))
	m.hookWithOrig("Cur_Mana", fix(game.RawCurMana),
		uintptr(C.p_edge_cur_mana_detour()), unsafe.Pointer(&C.edge_cur_mana_orig))
	m.hookWithOrig("Max_Endurance", fix(game.RawMaxEndurance),
		uintptr(C.p_edge_max_endur_detour()), unsafe.Pointer(&C.edge_max_endur_orig))
	m.hookWithOrig("GetGaugeValueFromEQ", fix(game.RawGetGaugeValueFromEQ),
		uintptr(C.p_edge_gauge_detour()), unsafe.Pointer(&C.edge_gauge_orig))
	m.hookWithOrig("GetLabelFromEQ", fix(game.RawGetLabelFromEQ),
		uintptr(C.p_edge_label_detour()), unsafe.Pointer(&C.edge_label_orig))
}

// hookWithOrig installs a detour and stores the trampoline into the C-side
// original slot the detour calls through.
func (m *StatsOverride) hookWithOrig(name string, target, detour uintptr, origSlot unsafe.Pointer) {
	tramp, err := m.mgr.Install(name, target, detour)
	if err != nil {
		m.log.Warnf("install %s: %v", name, err)
		return
	}
	*(*uintptr)(origSlot) = tramp
	m.installed = append(m.installed, name)
}

func (m *StatsOverride) uninstallGlobal() {
	if statsInstance == m {
		statsInstance = nil
	}
}
