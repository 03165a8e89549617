//go:build !windows

package mods

func (m *CpuSpeedFix) setAffinity()          {}
func (m *CpuSpeedFix) hasInvariantTSC() bool { return true }
func (m *CpuSpeedFix) installQpcFix()        {}
