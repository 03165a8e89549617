package mods

/*
// Always-allow replacements for the client's class restriction checks.
// Fastcall with a dummy edx matches the client's thiscall convention.

static int __fastcall always_one_0(void* self, void* edx) {
	return 1;
}
static int __fastcall always_one_1(void* self, void* edx, int a1) {
	return 1;
}
static int __fastcall always_one_4(void* self, void* edx, int a1, int a2, int a3, int a4) {
	return 1;
}
static int __fastcall always_true_item(void* self, void* edx, const void* item, int useReqLvl, int output) {
	return 1;
}

static void* p_always_one_0(void)    { return (void*)&always_one_0; }
static void* p_always_one_1(void)    { return (void*)&always_one_1; }
static void* p_always_one_4(void)    { return (void*)&always_one_4; }
static void* p_always_true_item(void) { return (void*)&always_true_item; }
*/
import "C"

import (
	"github.com/thjmod/edgeproxy/game"
)

func (m *SpellbookUnlock) install() {
	one0 := uintptr(C.p_always_one_0())
	one1 := uintptr(C.p_always_one_1())
	one4 := uintptr(C.p_always_one_4())
	item := uintptr(C.p_always_true_item())

	fix := func(raw uintptr) uintptr { return game.FixAddr(m.base, raw) }

	m.hook("IsSpellcaster", fix(game.RawIsSpellcaster), one0)
	m.hook("IsSpellcaster_2", fix(game.RawIsSpellcaster2), one4)
	m.hook("IsSpellcaster_3", fix(game.RawIsSpellcaster3), one0)
	m.hook("GetSpellLevelNeeded", fix(game.RawGetSpellLevelNeeded), one1)
	m.hook("CanStartMemming", fix(game.RawCanStartMemming), one1)
	m.hook("CanUseItem", fix(game.RawCanUseItem), item)
}
