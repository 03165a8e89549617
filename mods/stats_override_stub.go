//go:build !windows

package mods

func (m *StatsOverride) install()         {}
func (m *StatsOverride) uninstallGlobal() {}
