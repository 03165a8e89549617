package mods

import (
	"go.uber.org/zap"

	"github.com/thjmod/edgeproxy/hooks"
	"github.com/thjmod/edgeproxy/host/types"
)

// CpuSpeedFix keeps the client's tick math sane on hardware the 2013
// client was never tuned for. It pins the process affinity mask to all
// cores and, when the CPU lacks an invariant TSC, detours
// QueryPerformanceCounter to clamp backward jumps.
type CpuSpeedFix struct {
	types.NopMod

	mgr          *hooks.Manager
	qpcInstalled bool
	log          *zap.SugaredLogger
}

func NewCpuSpeedFix(mgr *hooks.Manager) *CpuSpeedFix {
	return &CpuSpeedFix{mgr: mgr}
}

func (m *CpuSpeedFix) Name() string { return "cpu_speed_fix" }

func (m *CpuSpeedFix) Initialize(types.HostLike) error {
	m.log = zap.S().Named("cpu_speed_fix")

	m.setAffinity()

	if m.hasInvariantTSC() {
		m.log.Infof("cpu has invariant TSC, speed fix not needed")
		return nil
	}
	m.log.Infof("cpu speed fix needed, applying trampoline")
	m.installQpcFix()
	return nil
}

func (m *CpuSpeedFix) Shutdown() {
	if !m.qpcInstalled {
		return
	}
	if err := m.mgr.Remove("QueryPerformanceCounter"); err != nil {
		m.log.Warnf("remove qpc hook: %v", err)
	}
	m.qpcInstalled = false
}

// clampMonotonic keeps a counter reading from moving backwards. A reading
// behind the previous one is replaced with previous+1 so time always
// advances.
func clampMonotonic(prev, cur int64) int64 {
	if cur < prev {
		return prev + 1
	}
	return cur
}
