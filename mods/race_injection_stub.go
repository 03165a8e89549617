//go:build !windows

package mods

func clientAddModel(uintptr) func(raceID, gender int, model string) error { return nil }
