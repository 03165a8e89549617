//go:build !windows

package mods

// No SEH on non-Windows builds; the mod stays inert.
func liveSEHChain() SEHChain { return nil }
