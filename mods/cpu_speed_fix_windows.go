package mods

/*
#include <cpuid.h>

typedef int (__stdcall *qpcfn_t)(long long* out);

qpcfn_t edge_qpc_orig;
static long long edge_qpc_last;
static int edge_qpc_primed;

// Clamp backward jumps so the client's tick math never sees time move in
// reverse when the CPU changes speed.
static int __stdcall edge_qpc_detour(long long* out) {
	int ok = edge_qpc_orig(out);
	if (ok && out) {
		if (edge_qpc_primed && *out < edge_qpc_last)
			*out = edge_qpc_last + 1;
		edge_qpc_last = *out;
		edge_qpc_primed = 1;
	}
	return ok;
}

static void* p_edge_qpc_detour(void) { return (void*)&edge_qpc_detour; }

// Invariant TSC: CPUID 0x80000007, EDX bit 8.
static int edge_has_invariant_tsc(void) {
	unsigned int a, b, c, d;
	if (!__get_cpuid(0x80000000, &a, &b, &c, &d) || a < 0x80000007)
		return 0;
	if (!__get_cpuid(0x80000007, &a, &b, &c, &d))
		return 0;
	return (d & (1u << 8)) != 0;
}
*/
import "C"

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32mods            = windows.NewLazySystemDLL("kernel32.dll")
	procSetProcessAffinityMask = modkernel32mods.NewProc("SetProcessAffinityMask")
)

// setAffinity opens the process up to every logical core. Windows
// otherwise migrates the client between cores, which breaks RDTSC-based
// timing on older CPUs.
func (m *CpuSpeedFix) setAffinity() {
	cores := runtime.NumCPU()
	var mask uintptr
	if cores >= int(unsafe.Sizeof(mask))*8 {
		mask = ^uintptr(0)
	} else {
		mask = (uintptr(1) << cores) - 1
	}

	m.log.Infof("setting processor affinity to %#x (%d logical cores)", mask, cores)
	h := windows.CurrentProcess()
	if r, _, err := procSetProcessAffinityMask.Call(uintptr(h), mask); r == 0 {
		m.log.Warnf("set affinity failed: %v", err)
	}
}

func (m *CpuSpeedFix) hasInvariantTSC() bool {
	return C.edge_has_invariant_tsc() != 0
}

func (m *CpuSpeedFix) installQpcFix() {
	k32 := windows.NewLazySystemDLL("kernel32.dll")
	qpc := k32.NewProc("QueryPerformanceCounter")
	if err := qpc.Find(); err != nil {
		m.log.Warnf("resolve QueryPerformanceCounter: %v", err)
		return
	}

	tramp, err := m.mgr.Install("QueryPerformanceCounter", qpc.Addr(), uintptr(C.p_edge_qpc_detour()))
	if err != nil {
		m.log.Warnf("install qpc hook: %v", err)
		return
	}
	*(*uintptr)(unsafe.Pointer(&C.edge_qpc_orig)) = tramp
	m.qpcInstalled = true
	m.log.Infof("qpc smoothing hook installed")
}
