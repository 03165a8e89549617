//go:build !windows

package mods

// Off-target builds have no client functions to detour.
func (m *SpellbookUnlock) install() {}
