//go:build !windows

package mods

func defaultZoneLinker(uintptr) ZoneLinker { return nil }
