package mods

/*
typedef void (__fastcall *dspchatfn_t)(void* self, void* edx,
	const char* msg, int color, int allowLog, int doPercentConversion);

dspchatfn_t edge_dspchat_orig;

extern int edgeFilterChatLine(char* msg);
extern void edgeGammaCrash(void);

static void __fastcall edge_dspchat_detour(void* self, void* edx,
	const char* msg, int color, int allowLog, int pct) {
	if (edgeFilterChatLine((char*)msg))
		return;
	edge_dspchat_orig(self, edx, msg, color, allowLog, pct);
}

static long __stdcall edge_gamma_crash_handler(void* exceptionInfo) {
	edgeGammaCrash();
	return 0; // EXCEPTION_CONTINUE_SEARCH
}

static void* p_edge_dspchat_detour(void)      { return (void*)&edge_dspchat_detour; }
static void* p_edge_gamma_crash_handler(void) { return (void*)&edge_gamma_crash_handler; }
*/
import "C"

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/thjmod/edgeproxy/game"
	"github.com/thjmod/edgeproxy/memory"
)

// pyrelightInstance routes the C detour and crash handler back to the mod.
// The exported callbacks live in pyrelight_patches_export_windows.go; cgo
// does not allow //export next to preamble definitions.
var pyrelightInstance *PyrelightPatches

var (
	modgdi32                        = windows.NewLazySystemDLL("gdi32.dll")
	procGetDeviceGammaRamp          = modgdi32.NewProc("GetDeviceGammaRamp")
	procSetDeviceGammaRamp          = modgdi32.NewProc("SetDeviceGammaRamp")
	procGetDC                       = moduser32mods.NewProc("GetDC")
	procReleaseDC                   = moduser32mods.NewProc("ReleaseDC")
	procSetUnhandledExceptionFilter = modkernel32mods.NewProc("SetUnhandledExceptionFilter")
)

// gammaRamp is 3 channels x 256 WORD entries.
var savedGammaRamp [3 * 256]uint16

var gammaRampSaved bool

func (m *PyrelightPatches) saveGammaRamp() bool {
	dc, _, _ := procGetDC.Call(0)
	if dc == 0 {
		return false
	}
	defer procReleaseDC.Call(0, dc)

	r, _, _ := procGetDeviceGammaRamp.Call(dc, uintptr(unsafe.Pointer(&savedGammaRamp[0])))
	if r == 0 {
		m.log.Warnf("failed to save gamma ramp")
		return false
	}
	gammaRampSaved = true
	m.log.Infof("gamma ramp saved")
	return true
}

func (m *PyrelightPatches) restoreGammaRamp() {
	if !gammaRampSaved {
		return
	}
	dc, _, _ := procGetDC.Call(0)
	if dc == 0 {
		return
	}
	defer procReleaseDC.Call(0, dc)
	procSetDeviceGammaRamp.Call(dc, uintptr(unsafe.Pointer(&savedGammaRamp[0])))
	m.log.Infof("gamma ramp restored")
}

func (m *PyrelightPatches) installGammaCrashHandler() {
	pyrelightInstance = m
	procSetUnhandledExceptionFilter.Call(uintptr(C.p_edge_gamma_crash_handler()))
	m.log.Infof("gamma crash handler installed")
}

func (m *PyrelightPatches) installChatFilter() {
	pyrelightInstance = m
	if m.mgr == nil {
		return
	}
	tramp, err := m.mgr.Install("DspChat_FoodFilter",
		game.FixAddr(m.base, game.RawDspChat), uintptr(C.p_edge_dspchat_detour()))
	if err != nil {
		m.log.Warnf("install chat filter: %v", err)
		return
	}
	*(*uintptr)(unsafe.Pointer(&C.edge_dspchat_orig)) = tramp
	m.chatHooked = true
	m.log.Infof("food/drink chat filter installed")
}

func (m *PyrelightPatches) removeChatFilter() {
	if !m.chatHooked {
		return
	}
	if err := m.mgr.Remove("DspChat_FoodFilter"); err != nil {
		m.log.Warnf("remove chat filter: %v", err)
	}
	m.chatHooked = false
	if pyrelightInstance == m {
		pyrelightInstance = nil
	}
}

// patchMemCheckers stubs the integrity checks with xor eax,eax; ret.
// Disabled by default; see memCheckerBypassEnabled.
func (m *PyrelightPatches) patchMemCheckers() {
	retZero := []byte{0x31, 0xC0, 0xC3}
	for _, t := range memCheckerTargets {
		addr := game.FixAddr(m.base, t.Raw)
		if _, err := memory.Patch(addr, retZero); err != nil {
			m.log.Warnf("patch %s at %#x: %v", t.Name, addr, err)
			continue
		}
		m.log.Infof("patched %s at %#x", t.Name, addr)
	}
}
